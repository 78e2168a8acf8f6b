package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/voicelane/frontdesk"
	"github.com/voicelane/frontdesk/config"
	"github.com/voicelane/frontdesk/logging"
	"github.com/voicelane/frontdesk/model"
	"github.com/voicelane/frontdesk/model/anthropic"
	"github.com/voicelane/frontdesk/model/openai"
)

func newRunCmd() *cobra.Command {
	var roomID, participantID string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an interactive session on stdin/stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runInteractive(cmd.Context(), cfg, roomID, participantID)
		},
	}

	cmd.Flags().StringVar(&roomID, "room", "local", "Room identifier recorded on the session")
	cmd.Flags().StringVar(&participantID, "participant", "caller", "Participant identifier recorded on the session")
	return cmd
}

func buildModel(cfg *config.Config) (model.Model, error) {
	switch cfg.Provider {
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		}), nil
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
		}), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

func runInteractive(ctx context.Context, cfg *config.Config, roomID, participantID string) error {
	logger := logging.New(&logging.Config{
		Level:     slog.LevelInfo,
		Format:    "text",
		Output:    os.Stderr,
		Component: "frontdesk",
	})

	m, err := buildModel(cfg)
	if err != nil {
		return err
	}

	app, err := frontdesk.New(ctx, cfg, m, func(o *frontdesk.Options) {
		o.Logger = logger
	})
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			logger.Error("store.close.failed", "error", err)
		}
	}()

	call, err := app.StartCall(ctx, roomID, participantID)
	if err != nil {
		return err
	}

	fmt.Printf("session %s started with agent %s (type 'quit' to hang up)\n", call.ID(), call.ActiveAgent().Name())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		reply, err := call.Reply(ctx, line)
		if err != nil {
			fmt.Fprintln(os.Stderr, "turn failed:", err)
			continue
		}
		fmt.Printf("[%s] %s\n", call.ActiveAgent().Name(), reply)
	}

	if err := call.End(ctx); err != nil {
		return err
	}
	fmt.Printf("session %s ended\n", call.ID())
	return scanner.Err()
}
