package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/questline/relay/config"
	"github.com/questline/relay/providers"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

func main() {
	cfg := config.FromEnv()
	logger := newLogger(cfg.LogLevel)

	p := providers.NewRelayProvider(cfg, logger)
	if err := p.Activate(); err != nil {
		logger.Fatal().Err(err).Msg("activate relay")
	}

	srv := &fasthttp.Server{
		Handler:         p.Handler(),
		Name:            "relay",
		ReadBufferSize:  cfg.ReadBufferSize * 4,
		WriteBufferSize: cfg.WriteBufferSize * 4,
		Logger:          fasthttpLogger{logger},
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("path", cfg.Path).Msg("relay listening")
		if err := srv.ListenAndServe(cfg.Addr); err != nil {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logger.Info().Msg("shutting down")

	// Sockets are hijacked and not tracked by the server, so close them first.
	if err := p.Deactivate(); err != nil {
		logger.Error().Err(err).Msg("deactivate relay")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Str("service", "relay").
		Logger()
}

// fasthttpLogger routes fasthttp's internal messages through zerolog.
type fasthttpLogger struct {
	logger zerolog.Logger
}

func (l fasthttpLogger) Printf(format string, args ...any) {
	l.logger.Warn().Msgf(format, args...)
}
