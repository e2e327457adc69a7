package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shopkit-io/catalogd/internal/catalog"
	"github.com/shopkit-io/catalogd/internal/core/api"
	"github.com/shopkit-io/catalogd/internal/core/config"
	"github.com/shopkit-io/catalogd/internal/core/logger"
	"github.com/shopkit-io/catalogd/internal/core/server"
	"github.com/shopkit-io/catalogd/internal/recommend"
	"github.com/shopkit-io/catalogd/internal/store"
)

const Version = "0.1.0"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the catalog HTTP API service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "0.0.0.0", "HTTP server host")
	serveCmd.Flags().Int("port", 8080, "HTTP server port")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	log, err := logger.New(logFormat, logLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("host") {
		cfg.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetInt("port")
	}

	if dbURL == "" {
		return fmt.Errorf("--db-url required")
	}
	database, err := store.Open(dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	// Refuse to serve against an unmigrated database
	var migrationID string
	checkQuery := `SELECT migration_id FROM migrations WHERE migration_id = '001_catalog_schema.sql'`
	if err := database.Get(&migrationID, database.Rebind(checkQuery)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("schema migrations not applied - run 'catalogd migrate' first")
		}
		return fmt.Errorf("failed to check migrations: %w", err)
	}

	st, err := store.New(database)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	engine := recommend.NewEngine(st, log)
	syncer := catalog.NewSyncer(st, log)
	handler := api.NewHandler(engine, syncer, cfg, log)

	httpServer, err := server.NewHTTPServer(cfg, handler.Routes(), log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	log.Info("starting catalogd API",
		zap.String("version", Version),
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port))

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		log.Info("shutting down gracefully")
		return httpServer.Shutdown(ctx)
	}
}
