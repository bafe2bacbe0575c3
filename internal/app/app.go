// Package app assembles the archivist components from loaded configuration.
// Commands pull the App out of the cobra command context rather than
// constructing services themselves.
package app

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"archivist/internal/config"
	"archivist/internal/oracle"
	"archivist/internal/processor"
	"archivist/internal/reader"
	"archivist/internal/rules"
)

type App struct {
	Config    *config.Config
	Rules     *rules.Catalog
	Oracle    oracle.Oracle
	Readers   *reader.Registry
	Processor *processor.Processor
}

// NewApp loads the rule catalog, builds the oracle client and wires the
// processing pipeline. A missing rules file falls back to the built-in
// defaults; a malformed one is an error.
func NewApp(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	ruleCatalog, err := rules.Load(cfg.Rules.Path)
	if err != nil {
		return nil, fmt.Errorf("load classification rules: %w", err)
	}
	app.Rules = ruleCatalog

	orc, err := oracle.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init oracle: %w", err)
	}
	app.Oracle = orc
	app.Readers = reader.DefaultRegistry()
	app.Processor = processor.New(cfg, ruleCatalog, app.Readers, app.Oracle)

	log.Debugf("application initialized (root %s, %d categories)",
		cfg.KnowledgeBase.RootPath, len(ruleCatalog.Categories))
	return app, nil
}
