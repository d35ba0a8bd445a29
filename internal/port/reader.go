package port

type FileWalker interface {
	Walk(root string) ([]FileInfo, error)
}

type FileInfo struct {
	Path    string
	ModTime int64
	Size    int64
}

// TextReader extracts scorable text from a file.
type TextReader interface {
	ReadText(path string) (string, error)
}
