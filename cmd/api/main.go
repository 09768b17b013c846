package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/mahtabthestranger/Mdilink/internal/client/assistant"
	"github.com/mahtabthestranger/Mdilink/internal/config"
	"github.com/mahtabthestranger/Mdilink/internal/handler"
	"github.com/mahtabthestranger/Mdilink/internal/logging"
	assistantService "github.com/mahtabthestranger/Mdilink/internal/service/assistant"
	"github.com/mahtabthestranger/Mdilink/internal/store/chatlog"
	"github.com/mahtabthestranger/Mdilink/internal/widget"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Pretty)
	if envErr != nil {
		log.Debug().Err(envErr).Msg("no .env file, using system environment only")
	}

	return serve(ctx, cfg, openChatLog(cfg.ChatLog))
}

// serve wires the backend around store and blocks until ctx is done or the
// listener fails. store is closed before serve returns.
func serve(ctx context.Context, cfg *config.Config, store chatlog.Store) error {
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close chat log")
		}
	}()

	var responder assistantService.Responder = assistantService.RuleResponder{}
	if cfg.AI.Enabled() {
		if llm, err := newLLMResponder(ctx, cfg.AI); err != nil {
			log.Warn().Err(err).Msg("failed to initialize chat model, continuing with keyword replies")
		} else {
			responder = llm
			log.Info().Str("model", cfg.AI.Model).Msg("chat model initialized")
		}
	} else {
		log.Info().Msg("ark credentials not configured, using keyword replies")
	}

	svc := assistantService.NewService(responder, store, log.With().Str("component", "assistant").Logger())

	client := assistant.NewClient(cfg.Assistant.URL, cfg.Assistant.Timeout)
	newWidget := func() *widget.Widget {
		return widget.New(client)
	}
	log.Info().Str("assistant_url", client.URL()).Msg("widget sessions will call assistant")

	router := handler.NewRouter(svc, newWidget, log.Logger)

	return startServer(ctx, cfg.Server, router)
}

func openChatLog(cfg config.ChatLogConfig) chatlog.Store {
	if cfg.DSN == "" {
		return chatlog.NewMemoryStore()
	}
	store, err := chatlog.NewSQLiteStore(cfg.DSN)
	if err != nil {
		log.Warn().Err(err).Msg("failed to open chat log, keeping it in memory")
		return chatlog.NewMemoryStore()
	}
	log.Info().Str("dsn", cfg.DSN).Msg("chat log opened")
	return store
}

func newLLMResponder(ctx context.Context, cfg config.AIConfig) (*assistantService.LLMResponder, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, err
	}
	return assistantService.NewLLMResponder(ctx, chatModel, assistantService.RuleResponder{}, log.With().Str("component", "llm").Logger())
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) error {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("Medilink chat backend listening")
	return runServer(ctx, srv)
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
