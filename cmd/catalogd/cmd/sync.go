package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shopkit-io/catalogd/internal/catalog"
	"github.com/shopkit-io/catalogd/internal/core/logger"
	"github.com/shopkit-io/catalogd/internal/store"
	"github.com/shopkit-io/catalogd/internal/types"
)

var syncCmd = &cobra.Command{
	Use:   "sync [collection-id]",
	Short: "Sync smart-collection membership (one collection, or all)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	log, err := logger.New(logFormat, logLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	if dbURL == "" {
		return fmt.Errorf("--db-url required")
	}
	database, err := store.Open(dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	st, err := store.New(database)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	syncer := catalog.NewSyncer(st, log)

	if len(args) == 1 {
		id, err := types.ParseCollectionID(args[0])
		if err != nil {
			return fmt.Errorf("invalid collection id %q: %w", args[0], err)
		}
		count, err := syncer.SyncCollection(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("collection %s synced: %d members\n", id, count)
		return nil
	}

	count, err := syncer.SyncAll(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("all smart collections synced: %d members\n", count)
	return nil
}
