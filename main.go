package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dmorgan81/dallestudio/internal/config"
	"github.com/dmorgan81/dallestudio/internal/inject"
	"github.com/dmorgan81/dallestudio/internal/log"
	"github.com/dmorgan81/dallestudio/internal/studio"
	"github.com/samber/do"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	logger := log.New(logFile, cfg.LogFormat, log.ParseLevel(cfg.LogLevel))
	ctx, cancel := context.WithCancel(log.NewContext(context.Background(), logger))
	defer cancel()

	injector := inject.Setup(ctx, cfg)
	defer func() {
		_ = injector.Shutdown()
	}()

	model, err := do.Invoke[*studio.Model](injector)
	if err != nil {
		logger.Error("wiring failed", "error", err)
		return err
	}

	logger.Info("starting studio")
	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		logger.Error("studio exited", "error", err)
		return err
	}
	logger.Info("studio closed")
	return nil
}
