package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/jaminalder/tictactoe-history/internal/app"
	"github.com/jaminalder/tictactoe-history/internal/config"
	"github.com/jaminalder/tictactoe-history/internal/logging"
	"github.com/jaminalder/tictactoe-history/internal/web"
)

func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to a YAML config file")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	logger := logging.New(conf.LogLevel, conf.LogFormat, os.Stdout)

	if err := run(logger, conf); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}

// run serves the game UI until SIGINT or SIGTERM.
func run(logger zerolog.Logger, conf *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", conf.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", conf.HTTPAddr, err)
	}
	return serve(ctx, logger, conf, ln)
}

// serve runs the HTTP server on ln until ctx is done. Request contexts derive
// from ctx, so open event streams end as soon as shutdown starts.
func serve(ctx context.Context, logger zerolog.Logger, conf *config.Config, ln net.Listener) error {
	svc := app.NewService(logger)
	go svc.RunJanitor(ctx, conf.JanitorInterval, conf.SessionTTL)

	srv := &http.Server{
		Handler:     web.NewServer(svc, logger, conf.HeartbeatInterval),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", ln.Addr().String()).Msg("starting HTTP server")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		logger.Info().Msg("received signal, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
