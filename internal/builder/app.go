package builder

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

const shutdownTimeout = 30 * time.Second

type App struct {
	server *http.Server
	logger zerolog.Logger
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then shuts
// the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return err
	}
	return a.serve(ctx, ln)
}

func (a *App) serve(ctx context.Context, ln net.Listener) error {
	errChan := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", ln.Addr().String()).Msg("Starting HTTP server")
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err, ok := <-errChan:
		if ok {
			a.logger.Error().Err(err).Msg("Server error")
			return err
		}
		return nil
	case <-ctx.Done():
		a.logger.Info().Msg("Received shutdown signal")
	}

	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.logger.Info().Msg("Shutting down server gracefully")
	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Server shutdown error")
		return err
	}
	a.logger.Info().Msg("Application stopped gracefully")
	return nil
}
