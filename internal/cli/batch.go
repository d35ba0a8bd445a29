package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"trf/internal/adapter/fs"
	"trf/internal/usecase"
)

var (
	batchJSON    bool
	batchWorkers int
)

var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Score every text file under a directory",
	Long: `Score every file under the directory that matches batch.includes and
none of batch.excludes. A file that fails is reported and the others
continue.

Examples:
  trf batch .                   # Score texts under the current directory
  trf batch ./corpus --json     # Write all reports as JSON`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	addScoreFlags(batchCmd)
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "output all reports as JSON")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "files scored concurrently (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	path := GetRootDir()
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	cfg := GetConfig()
	applyScoreFlags(cmd, cfg)
	if cmd.Flags().Changed("workers") {
		cfg.Batch.Workers = batchWorkers
	}

	scorer, closeStore, err := newScoreUseCase(cfg, path, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	batchUC := usecase.NewBatchUseCase(
		scorer,
		fs.NewWalker(cfg.Batch.Includes, cfg.Batch.Excludes),
		fs.NewReader(),
		cfg.Batch.Workers,
		logger,
	)

	files, err := batchUC.Walk(path)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No matching files under %s\n", path)
		return nil
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Scoring[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)

	var barMu sync.Mutex
	startTime := time.Now()
	progress := func(done int) {
		barMu.Lock()
		defer barMu.Unlock()

		_ = bar.Set(done)
		elapsed := time.Since(startTime)
		rate := float64(done) / elapsed.Seconds()
		if rate > 0 {
			eta := time.Duration(float64(len(files)-done)/rate) * time.Second
			bar.Describe(fmt.Sprintf("[cyan]Scoring[reset] ETA: %s", formatDuration(eta)))
		}
	}

	result, err := batchUC.Run(cmd.Context(), files, progress)
	if err != nil {
		return fmt.Errorf("batch scoring failed: %w", err)
	}

	if batchJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "\nBatch complete:\n")
	fmt.Fprintf(os.Stderr, "  Files scored: %d\n", result.Scored)
	fmt.Fprintf(os.Stderr, "  Files failed: %d\n", result.Failed)
	if errs := result.Errors(); len(errs) > 0 {
		fmt.Fprintf(os.Stderr, "\nErrors:\n")
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  - %s\n", e)
		}
	}
	if result.Failed > 0 && result.Scored == 0 {
		return errors.New("no files could be scored")
	}
	return nil
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
