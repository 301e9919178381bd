package commands

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/stmtimport/internal/banks"
	"github.com/cleared-dev/stmtimport/internal/classify"
	"github.com/cleared-dev/stmtimport/internal/config"
	"github.com/cleared-dev/stmtimport/internal/importer"
	"github.com/cleared-dev/stmtimport/internal/logger"
)

// workspace is a loaded project directory with the registry and
// classifier built from its rule files.
type workspace struct {
	root       string
	cfg        *config.Config
	log        zerolog.Logger
	classifier *classify.Classifier
	registry   *importer.Registry
}

func loadWorkspace(dir, logLevel string) (*workspace, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.LoadOrDefault(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	classifier := classify.Default()
	if cfg.CategoriesFile != "" {
		classifier, err = classify.LoadFile(config.Resolve(root, cfg.CategoriesFile))
		if err != nil {
			return nil, err
		}
	}

	var extra banks.File
	if cfg.BanksFile != "" {
		extra, err = banks.LoadFile(config.Resolve(root, cfg.BanksFile))
		if err != nil {
			return nil, err
		}
		applyDefaultCurrency(&extra, cfg.DefaultCurrency)
	}

	registry, err := importer.BuildRegistry(extra, classifier)
	if err != nil {
		return nil, fmt.Errorf("building bank registry: %w", err)
	}
	log.Debug().Strs("handlers", registry.Names()).Str("root", root).Msg("workspace loaded")

	return &workspace{root: root, cfg: cfg, log: log, classifier: classifier, registry: registry}, nil
}

// applyDefaultCurrency fills the currency of user profiles that name none.
func applyDefaultCurrency(f *banks.File, currency string) {
	for i := range f.Text {
		if f.Text[i].Parse.Currency == "" {
			f.Text[i].Parse.Currency = currency
		}
	}
	for i := range f.Table {
		if f.Table[i].Config.DefaultCurrency == "" {
			f.Table[i].Config.DefaultCurrency = currency
		}
	}
}

func (w *workspace) importDir() string {
	return config.Resolve(w.root, w.cfg.ImportDir)
}
