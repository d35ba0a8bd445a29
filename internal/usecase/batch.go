package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"trf/internal/domain"
	"trf/internal/port"
)

// BatchUseCase scores every matching file under a directory.
type BatchUseCase struct {
	scorer  *ScoreUseCase
	walker  port.FileWalker
	reader  port.TextReader
	workers int
	logger  *slog.Logger
}

func NewBatchUseCase(scorer *ScoreUseCase, walker port.FileWalker, reader port.TextReader, workers int, logger *slog.Logger) *BatchUseCase {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BatchUseCase{
		scorer:  scorer,
		walker:  walker,
		reader:  reader,
		workers: workers,
		logger:  logger,
	}
}

// FileResult is the outcome for one file. Exactly one of Report and Err is set.
type FileResult struct {
	Path   string         `json:"path"`
	Report *domain.Report `json:"report,omitempty"`
	Err    error          `json:"-"`
	Error  string         `json:"error,omitempty"`
}

// BatchResult contains the results of a batch run, in walk order.
type BatchResult struct {
	Files  []FileResult `json:"files"`
	Scored int          `json:"scored"`
	Failed int          `json:"failed"`
}

// Errors returns the failed files' messages.
func (r *BatchResult) Errors() []string {
	var out []string
	for _, f := range r.Files {
		if f.Err != nil {
			out = append(out, fmt.Sprintf("%s: %v", f.Path, f.Err))
		}
	}
	return out
}

// Walk lists the files a Run over root would score.
func (u *BatchUseCase) Walk(root string) ([]port.FileInfo, error) {
	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	return files, nil
}

// Run scores files concurrently. A failing file does not stop the others;
// only cancellation of ctx ends the run early. progress, when non-nil, is
// called once per finished file.
func (u *BatchUseCase) Run(ctx context.Context, files []port.FileInfo, progress func(done int)) (*BatchResult, error) {
	results := make([]FileResult, len(files))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.workers)

	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = u.scoreFile(gctx, file.Path)
			if progress != nil {
				progress(int(done.Add(1)))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &BatchResult{Files: results}
	for _, r := range results {
		if r.Err != nil {
			res.Failed++
		} else {
			res.Scored++
		}
	}
	u.logger.Info("batch finished", "files", len(files), "scored", res.Scored, "failed", res.Failed)
	return res, nil
}

func (u *BatchUseCase) scoreFile(ctx context.Context, path string) FileResult {
	text, err := u.reader.ReadText(path)
	if err != nil {
		u.logger.Warn("failed to read file", "path", path, "error", err)
		return FileResult{Path: path, Err: err, Error: err.Error()}
	}

	report, err := u.scorer.Score(ctx, text)
	if err != nil {
		u.logger.Warn("failed to score file", "path", path, "error", err)
		return FileResult{Path: path, Err: err, Error: err.Error()}
	}
	return FileResult{Path: path, Report: report}
}
