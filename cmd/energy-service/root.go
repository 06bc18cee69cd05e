package main

import (
	"fmt"
	"os"
	"path/filepath"

	"energy-service/internal/config"
	"energy-service/internal/logging"
	"energy-service/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	dbPath  string
)

var rootCmd = &cobra.Command{
	Use:   "energy-service",
	Short: "Household energy billing analytics",
	Long: `energy-service stores monthly billing records and appliance readings,
forecasts the next bill and derives advisory metrics for every submission.
It runs as an HTTP service or analyses payloads directly against the local database.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (overrides database.path)")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// loadConfig loads and validates the configuration, applying --db
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return logger, nil
}

// openDB opens the database connection
func openDB(cfg *config.Config) (*store.SQLite, error) {
	path := cfg.Database.Path

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	return store.NewSQLite(path)
}
