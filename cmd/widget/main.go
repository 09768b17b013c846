package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mahtabthestranger/Mdilink/internal/client/assistant"
	"github.com/mahtabthestranger/Mdilink/internal/config"
	"github.com/mahtabthestranger/Mdilink/internal/logging"
	"github.com/mahtabthestranger/Mdilink/internal/widget"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		assistantURL string
		timeout      time.Duration
		logLevel     string
	)

	cmd := &cobra.Command{
		Use:   "widget",
		Short: "Chat with the Medilink assistant from the terminal",
		Long: `Mounts a chat widget in the terminal. Type a message and press Enter to send it.
Commands: /open, /close, /toggle, /quit.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("assistant-url") {
				assistantURL = cfg.Assistant.URL
			}
			if !cmd.Flags().Changed("timeout") {
				timeout = cfg.Assistant.Timeout
			}
			logging.Setup(logLevel, true)

			client := assistant.NewClient(assistantURL, timeout)
			w := widget.New(client, widget.WithLogger(log.With().Str("component", "widget").Logger()))
			log.Debug().Str("assistant_url", assistantURL).Msg("widget mounted")

			return runTerminal(cmd.Context(), w, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&assistantURL, "assistant-url", "", "assistant endpoint (defaults to ASSISTANT_URL)")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout (defaults to ASSISTANT_TIMEOUT)")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level")

	return cmd
}
