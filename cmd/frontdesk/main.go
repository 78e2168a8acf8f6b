// Package main is the entry point for the frontdesk voice assistant CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voicelane/frontdesk/config"
	"github.com/voicelane/frontdesk/store"
	"github.com/voicelane/frontdesk/store/memory"
	"github.com/voicelane/frontdesk/store/postgres"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "frontdesk",
		Short:         "Voice-driven appointment scheduling assistant",
		Long:          "frontdesk runs the multi-agent scheduling assistant: a greeter routes callers\nbetween identification, registration, information and booking agents while a\nwrite-behind store persists transcripts, metrics and state snapshots.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (YAML)")

	root.AddCommand(newRunCmd(), newReportCmd())
	return root
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// openStore builds the write-behind store over postgres when a database URL
// is configured, otherwise over the in-memory backend.
func openStore(ctx context.Context, cfg *config.Config) (*store.WriteBehind, error) {
	var backend store.Backend
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		backend = pg
	} else {
		backend = memory.New()
	}

	wb := store.New(backend,
		store.WithBatchSize(cfg.BatchSize),
		store.WithFlushInterval(cfg.FlushInterval))
	if err := wb.Init(ctx); err != nil {
		backend.Close()
		return nil, fmt.Errorf("init store: %w", err)
	}
	return wb, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
