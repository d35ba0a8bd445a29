package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"trf/config"
	"trf/internal/adapter/cache"
	"trf/internal/adapter/fs"
	"trf/internal/adapter/remote"
	"trf/internal/adapter/rnnlm"
	"trf/internal/adapter/static"
	"trf/internal/adapter/vocab"
	"trf/internal/domain"
	"trf/internal/logging"
	"trf/internal/port"
	"trf/internal/usecase"
)

func main() {
	dir := flag.String("dir", ".", "Directory holding trf.yaml")
	file := flag.String("f", "", "Text file to score")
	runs := flag.Int("n", 3, "Number of runs")
	flag.Parse()

	if *file == "" {
		fmt.Println("Usage: go run cmd/benchmark/main.go -dir . -f essay.txt -n 3")
		fmt.Println("\nMeasures:")
		fmt.Println("  1. External scorer latency (cold, then cached)")
		fmt.Println("  2. Share of sentences the scorer could not score")
		fmt.Println("  3. Distribution of normalized scores")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Logging, os.Stderr)

	v, err := vocab.Load(cfg.Vocabulary.Path, cfg.Vocabulary.Threshold)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading vocabulary: %v\n", err)
		os.Exit(1)
	}

	text, err := fs.NewReader().ReadText(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading text: %v\n", err)
		os.Exit(1)
	}

	model, err := setupScorer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scorer not available: %v\n", err)
		os.Exit(1)
	}
	scoreCache := cache.NewScoreCache(cfg.Cache.MaxEntries, cfg.Cache.TTL)
	uc := usecase.NewScoreUseCase(v, cache.NewCachedLanguageModel(model, scoreCache), usecase.ScoreOptions{
		Delimiter: cfg.Text.Delimiter,
		Timeout:   cfg.Scorer.Timeout,
		Logger:    logger,
	})

	fmt.Println("SCORING BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Scorer:     %s\n", model.Name())
	fmt.Printf("Vocabulary: %d words (%d kept, %d unknown)\n", v.TotalWords(), v.Size(), v.UnknownCount())
	fmt.Println()

	var report *domain.Report
	for i := 0; i < *runs; i++ {
		start := time.Now()
		report, err = uc.Score(context.Background(), text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Scoring error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Run %d: %s\n", i+1, time.Since(start).Round(time.Microsecond))
	}
	hits, misses := scoreCache.Stats()
	fmt.Printf("Cache: %d entries, %d hits, %d misses\n\n", scoreCache.Size(), hits, misses)

	if report == nil || len(report.Sentences) == 0 {
		fmt.Println("No sentences scored.")
		return
	}

	oov := 0
	for _, s := range report.Sentences {
		if s.ExternalScore == nil {
			oov++
		}
	}

	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("QUALITY METRICS (%d sentences):\n", len(report.Sentences))
	fmt.Printf("  Unscorable: %d (%.1f%%)\n", oov, 100*float64(oov)/float64(len(report.Sentences)))
	for _, m := range domain.Methods {
		lo, hi, mean, n := summarize(report.NormalizedScores(m))
		if n == 0 {
			fmt.Printf("  %-4s no values\n", m)
			continue
		}
		fmt.Printf("  %-4s min %9.4f  max %9.4f  mean %9.4f  (n=%d)\n", m, lo, hi, mean, n)
	}
}

func summarize(values []*float64) (lo, hi, mean float64, n int) {
	sum := 0.0
	for _, v := range values {
		if v == nil {
			continue
		}
		if n == 0 || *v < lo {
			lo = *v
		}
		if n == 0 || *v > hi {
			hi = *v
		}
		sum += *v
		n++
	}
	if n > 0 {
		mean = sum / float64(n)
	}
	return lo, hi, mean, n
}

func setupScorer(cfg *config.Config) (port.LanguageModel, error) {
	switch cfg.Scorer.Provider {
	case "rnnlm":
		return rnnlm.NewScorer(cfg.Scorer, logging.Discard())
	case "remote":
		s, err := remote.NewScorer(cfg.Scorer.BaseURL, cfg.Scorer.APIKeyEnv, cfg.Scorer.OOVToken)
		if err != nil {
			return nil, err
		}
		return s.WithClientTimeout(cfg.Scorer.Timeout), nil
	case "static":
		return static.NewScorer(cfg.Scorer.ScoresPath, cfg.Scorer.OOVToken)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Scorer.Provider)
	}
}
