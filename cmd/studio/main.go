package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"folio/internal/app"
	"folio/internal/config"
	"folio/internal/persist"
	"folio/internal/session"
)

func main() {
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	passHash := cfg.EditorPassKey
	if passHash == "" {
		// Development fallback: a well-known passphrase, never for real use.
		passHash, err = session.HashPassphrase("folio-dev")
		if err != nil {
			log.Fatal().Err(err).Msg("hash fallback passphrase")
		}
		log.Warn().Msg("FOLIO_EDITOR_PASS_HASH not set, using development passphrase")
	}
	gate := session.NewGate(passHash, []byte(cfg.TokenSecret))
	if cfg.SessionTTL > 0 {
		gate.TTL = cfg.SessionTTL
	}

	var slots *persist.Store
	if strings.TrimSpace(cfg.RedisURL) != "" {
		slots, err = persist.NewStore(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer slots.Close()
	} else {
		log.Warn().Msg("REDIS_URL not set, state will not survive restarts")
	}

	service := app.New(cfg, slots, gate, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := service.Bootstrap(ctx); err != nil {
		log.Fatal().Err(err).Msg("bootstrap failed")
	}

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin, log)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("folio studio listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
