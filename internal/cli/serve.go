package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"recolector/internal/api"
)

func newServeCommand(rt *cmdState) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Args:  cobra.NoArgs,
		Short: "Servir las pantallas del recolector como JSON por HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = rt.app.Config.Shell.Addr
			}
			return Serve(cmd.Context(), rt.app, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides shell.addr")
	return cmd
}

// Serve runs the shell until ctx is cancelled.
func Serve(ctx context.Context, app *App, addr string) error {
	shell := api.NewShell(app.Store, app.Service, app.Queue, app.Theme, app.Log)
	srv := &http.Server{
		Addr:              addr,
		Handler:           shell.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		app.Log.WithField("addr", addr).Info("shell listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		app.Log.Info("shell shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
