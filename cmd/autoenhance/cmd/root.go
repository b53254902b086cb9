package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/instant-hdr/autoenhance-go/autoenhance"
	"github.com/instant-hdr/autoenhance-go/internal/config"
	"github.com/instant-hdr/autoenhance-go/internal/logging"
)

// NewRootCommand builds the autoenhance command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "autoenhance",
		Short:         "Upload, enhance and download real estate photos with the Autoenhance API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to a YAML config file (default ./autoenhance.yaml if present)")
	flags.String("api-key", "", "Autoenhance API key (env AUTOENHANCE_API_KEY)")
	flags.String("base-url", "", "API root (env AUTOENHANCE_BASE_URL)")
	flags.String("log-level", "", "Log level: debug, info, warn or error (env AUTOENHANCE_LOG_LEVEL)")

	rootCmd.AddCommand(
		newUploadCommand(),
		newStatusCommand(),
		newOrderCommand(),
		newDownloadCommand(),
		newEditCommand(),
		newReportCommand(),
		newMockServerCommand(),
	)
	return rootCmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

// session is what a command needs to talk to the API.
type session struct {
	cfg    *config.Config
	logger *zap.Logger
	client *autoenhance.Client
}

func loadConfig(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config: %w", err)
	}

	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	client, err := autoenhance.NewClient(cfg.ClientConfig(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &session{cfg: cfg, logger: logger, client: client}, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
