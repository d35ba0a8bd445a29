package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"trf/config"
	"trf/internal/adapter/cache"
	"trf/internal/adapter/memstore"
	"trf/internal/adapter/remote"
	"trf/internal/adapter/rnnlm"
	"trf/internal/adapter/sqlstore"
	"trf/internal/adapter/static"
	"trf/internal/adapter/store"
	"trf/internal/adapter/vocab"
	"trf/internal/port"
	"trf/internal/usecase"
)

func loadVocabulary(cfg *config.Config) (*vocab.Model, error) {
	if cfg.Vocabulary.Path == "" {
		return nil, errors.New("no vocabulary configured (set vocabulary.path or --vocab)")
	}
	return vocab.Load(cfg.Vocabulary.Path, cfg.Vocabulary.Threshold)
}

// newLanguageModel builds the configured scorer, wrapped in the result cache when enabled.
func newLanguageModel(cfg *config.Config, logger *slog.Logger) (port.LanguageModel, error) {
	var (
		model port.LanguageModel
		err   error
	)
	switch cfg.Scorer.Provider {
	case "rnnlm":
		model, err = rnnlm.NewScorer(cfg.Scorer, logger)
	case "remote":
		var rs *remote.Scorer
		rs, err = remote.NewScorer(cfg.Scorer.BaseURL, cfg.Scorer.APIKeyEnv, cfg.Scorer.OOVToken)
		if err == nil {
			model = rs.WithClientTimeout(cfg.Scorer.Timeout)
		}
	case "static":
		model, err = static.NewScorer(cfg.Scorer.ScoresPath, cfg.Scorer.OOVToken)
	default:
		return nil, fmt.Errorf("unsupported scorer provider: %q", cfg.Scorer.Provider)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Cache.Enabled {
		model = cache.NewCachedLanguageModel(model, cache.NewScoreCache(cfg.Cache.MaxEntries, cfg.Cache.TTL))
	}
	return model, nil
}

// openStore opens the configured report store. It returns nil for the "none" backend.
func openStore(cfg *config.Config, dir string, logger *slog.Logger) (port.ReportStore, error) {
	if cfg.Store.Backend == "none" {
		return nil, nil
	}
	if cfg.Store.Backend == "memory" {
		return memstore.NewMemoryStore(), nil
	}

	path := cfg.StoreDBPath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	switch cfg.Store.Backend {
	case "sqlite":
		st, err := sqlstore.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open report store: %w", err)
		}
		return st, nil
	case "bolt":
		st, err := store.NewBoltStore(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open report store: %w", err)
		}
		res, err := st.Prepare(cfg)
		if err != nil {
			st.Close()
			return nil, err
		}
		if res.NeedsRebuild {
			logger.Info("cleared report store", "reason", res.Reason)
		} else if res.NeedsMigration {
			logger.Debug("migrated report store", "reason", res.Reason)
		}
		return st, nil
	}
	return nil, fmt.Errorf("unsupported store backend: %q", cfg.Store.Backend)
}

// newScoreUseCase wires vocabulary, scorer and store from cfg. The returned
// closer releases the store.
func newScoreUseCase(cfg *config.Config, dir string, logger *slog.Logger) (*usecase.ScoreUseCase, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	v, err := loadVocabulary(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("loaded vocabulary",
		"path", cfg.Vocabulary.Path,
		"total_words", v.TotalWords(),
		"kept", v.Size(),
		"unknown", v.UnknownCount(),
	)

	model, err := newLanguageModel(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	st, err := openStore(cfg, dir, logger)
	if err != nil {
		return nil, nil, err
	}
	closer := func() {}
	if st != nil {
		closer = func() { st.Close() }
	}

	uc := usecase.NewScoreUseCase(v, model, usecase.ScoreOptions{
		Delimiter: cfg.Text.Delimiter,
		Timeout:   cfg.Scorer.Timeout,
		Store:     st,
		Logger:    logger,
	})
	return uc, closer, nil
}
