package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codyseavey/tcg-inventory-sync/internal/config"
	"github.com/codyseavey/tcg-inventory-sync/internal/database"
	"github.com/codyseavey/tcg-inventory-sync/internal/logger"
	"github.com/codyseavey/tcg-inventory-sync/internal/progress"
	"github.com/codyseavey/tcg-inventory-sync/internal/services"
	"github.com/codyseavey/tcg-inventory-sync/internal/store"
)

var (
	configDir   string
	userID      string
	syncService *services.SyncService
	log         *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "inventoryctl",
	Short: "Import seller inventory exports and inspect value history",
	Long: `inventoryctl runs the inventory sync pipeline against the configured
database without going through the HTTP server.

Configuration is read the same way as the server: configs/config.yaml
plus TCG_-prefixed environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		if userID == "" {
			return fmt.Errorf("--user is required")
		}

		var paths []string
		if configDir != "" {
			paths = append(paths, configDir)
		}
		cfg, err := config.Load(paths...)
		if err != nil {
			return err
		}

		log, err = logger.New(cfg.Log.Level, cfg.Log.Development)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}

		db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.LogLevel, log)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}

		st := store.NewLimited(store.NewGormStore(db), cfg.Sync.PoolSize)
		syncService = services.NewSyncService(st, progress.NewTracker(cfg.Progress.Capacity, cfg.Progress.TTL), log)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", os.Getenv("TCG_USER"), "user whose inventory to operate on")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "directory containing config.yaml")
}
