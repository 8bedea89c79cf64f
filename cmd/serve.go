package cmd

import (
	"time"

	"github.com/JustJay7/court-records-ingest/internal/cache"
	"github.com/JustJay7/court-records-ingest/internal/database"
	"github.com/JustJay7/court-records-ingest/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ingested records over a read-only HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "Address to listen on (HOST)")
	serveCmd.Flags().String("port", "", "Port to listen on (PORT)")
	viper.BindPFlag("host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		log.Error("Failed to initialize database", "error", err)
		return err
	}
	defer database.Close(db)

	// read-only snapshot of the cache a fetch run left behind
	cacheService := cache.NewCache(cfg.CacheSize, 10*time.Minute)
	if err := cacheService.Load(cfg.CachePath); err != nil {
		log.Warn("Failed to load response cache", "path", cfg.CachePath, "error", err)
	}

	log.Info("Starting court records API",
		"host", cfg.Host,
		"port", cfg.Port,
		"output_dir", cfg.OutputDir,
	)

	return server.New(cfg, db, cacheService, log).Run(cmd.Context())
}
