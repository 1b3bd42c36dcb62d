package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/paperdesk/arxiv-assistant/backend/internal/config"
	"github.com/paperdesk/arxiv-assistant/backend/internal/handler"
	"github.com/paperdesk/arxiv-assistant/backend/internal/model/topic"
	"github.com/paperdesk/arxiv-assistant/backend/internal/service/assistant"
	"github.com/paperdesk/arxiv-assistant/backend/internal/service/chat"
	"github.com/paperdesk/arxiv-assistant/backend/internal/service/relay"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	topicStore := topic.NewMemoryStore(topic.Seed())
	chatService := chat.NewService()

	// The relay needs the Langflow endpoint and token; without them the
	// service still starts, but turn endpoints answer 503.
	var assistantService *assistant.Service
	if cfg.Relay.Enabled() {
		relayClient := relay.NewClient(cfg.Relay)
		assistantService = assistant.NewService(relayClient, chatService, topicStore)
		log.Println("relay configured, turn endpoints enabled")
	} else {
		log.Println("LANGFLOW_RUN_URL / LANGFLOW_TOKEN not set, turn endpoints disabled")
	}

	router := handler.NewRouter(topicStore, chatService, assistantService)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("arXiv assistant backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
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
