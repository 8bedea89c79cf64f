package cmd

import (
	"context"
	"fmt"

	"github.com/JustJay7/court-records-ingest/internal/config"
	"github.com/JustJay7/court-records-ingest/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "court-ingest",
	Short: "Fetch court case records into local CSV and JSON stores",
	Long: `court-ingest fetches case pages from a session-authenticated court records
site, extracts the case panels and the register of actions, downloads linked
attachments and merges everything into keyed CSV stores.

Settings come from the environment (or a .env file) and can be overridden
with flags. COURT_BASE_URL, COURT_USERNAME and COURT_PASSWORD are required
for fetching.`,
	SilenceUsage: true,
}

// Execute runs the root command; ctx is cancelled on interrupt
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("output-dir", "", "Directory for case files, stores and markers (OUTPUT_DIR)")
	flags.String("database", "", "SQLite fetch log path (DATABASE_PATH)")
	flags.String("log-level", "", "Log level: debug, info, warn, error (LOG_LEVEL)")
	flags.String("log-format", "", "Log format: json or text (LOG_FORMAT)")

	// flags win over the environment only when set
	viper.BindPFlag("output_dir", flags.Lookup("output-dir"))
	viper.BindPFlag("database_path", flags.Lookup("database"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
}

// setup loads configuration and builds the logger every command uses
func setup() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, log, nil
}
