package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/ovor/internal/api"
	"github.com/sadopc/ovor/internal/config"
	"github.com/sadopc/ovor/internal/logging"
	"github.com/sadopc/ovor/internal/tui"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening log: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.String("api", cfg.APIBaseURL),
		zap.Duration("timeout", cfg.RequestTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
	)

	client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout,
		api.WithLogger(logger),
		api.WithCacheTTL(cfg.CacheTTL),
	)

	app := tui.NewApp(client, tui.Options{
		Locator:   cfg.Locator(),
		Logger:    logger,
		Locale:    cfg.Language(),
		ExportDir: cfg.ExportDir,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		logger.Error("program exited", zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
