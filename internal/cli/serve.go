package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Serve runs the webhook server until ctx is cancelled, then stops accepting requests,
// drains queued conversation steps and closes the app.
func Serve(ctx context.Context, app *App) error {
	srv := &http.Server{
		Addr:              app.Config.Server.Addr,
		Handler:           app.Handler().Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		app.Logger.Info("Starting intake server", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		closeErr := app.Close(context.Background())
		if errors.Is(err, http.ErrServerClosed) {
			return closeErr
		}
		return errors.Join(fmt.Errorf("server error: %w", err), closeErr)

	case <-ctx.Done():
		timeout := app.Config.Server.ShutdownTimeout
		app.Logger.Info("Shutting down", "timeout", timeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var errs []error
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("graceful shutdown did not complete in %v: %w", timeout, err))
			if err := srv.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		// Webhooks are acknowledged before their step runs; wait for those steps.
		if err := app.Close(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if len(errs) == 0 {
			app.Logger.Info("Intake server stopped gracefully")
		}
		return errors.Join(errs...)
	}
}
