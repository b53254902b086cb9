package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/instant-hdr/autoenhance-go/internal/apitest"
)

const shutdownTimeout = 5 * time.Second

func newMockServerCommand() *cobra.Command {
	mockCmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve an in-memory fake of the Autoenhance API for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync()

			fake := apitest.New(
				apitest.WithAPIKey(cfg.MockServer.APIKey),
				apitest.WithProcessAfter(cfg.MockServer.ProcessAfter),
				apitest.WithLogger(logger.Named("mock")),
			)

			lis, err := net.Listen("tcp", cfg.MockServer.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen: %w", err)
			}

			srv := &http.Server{
				Handler:           fake.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Serve(lis)
			}()
			logger.Info("mock server listening",
				zap.String("base_url", "http://"+lis.Addr().String()+"/v2/"),
				zap.String("api_key", cfg.MockServer.APIKey),
			)

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("failed to serve: %w", err)
			case <-cmd.Context().Done():
			}

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("failed to shut down: %w", err)
			}
			logger.Info("mock server stopped")
			return nil
		},
	}

	mockCmd.Flags().String("addr", "", "Listen address (default 127.0.0.1:8080)")
	mockCmd.Flags().Int("process-after", 0, "Status reads before an upload is reported processed (default 2)")
	return mockCmd
}
