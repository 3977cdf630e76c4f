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

	"github.com/spf13/cobra"

	"github.com/jkcapital/autoanalyst/internal/app"
	"github.com/jkcapital/autoanalyst/internal/common"
	"github.com/jkcapital/autoanalyst/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.NewApp(root.configPath)
			if err != nil {
				return err
			}
			if port > 0 {
				a.Config.Server.Port = port
			}

			common.PrintBanner(os.Stdout, a.Config, a.Logger)

			srv := server.NewServer(a)
			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			a.Logger.Info().
				Str("url", fmt.Sprintf("http://%s", srv.Addr())).
				Msg("Server ready")

			// Wait for interrupt signal or server failure
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			select {
			case <-sigChan:
				a.Logger.Info().Msg("Shutdown signal received")
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("HTTP server failed: %w", err)
				}
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				a.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
			}

			common.PrintShutdownBanner(os.Stdout, a.Logger)
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	return cmd
}
