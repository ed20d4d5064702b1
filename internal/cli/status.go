package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/dormancy-watcher/internal/core/config"
	"github.com/vietddude/dormancy-watcher/internal/infra/storage/postgres"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the scan position of every chain",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	ctx := context.Background()

	db := openDB(ctx, cfg)
	defer func() {
		_ = db.Close()
	}()

	cursors, err := postgres.NewCursorRepo(db).List(ctx)
	if err != nil {
		slog.Error("Failed to query cursors", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "CHAIN\tBLOCK\tHASH\tUPDATED")
	for _, c := range cursors {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", c.ChainID, c.BlockNumber, c.BlockHash, c.UpdatedAt.Format(time.RFC3339))
	}
	_ = w.Flush()
}

// openDB connects to the configured database or exits; these commands only
// make sense against persisted cursors.
func openDB(ctx context.Context, cfg *config.AppConfig) *postgres.DB {
	if cfg.Database.URL == "" {
		slog.Error("No database configured, cursors are kept in memory only")
		os.Exit(1)
	}
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		slog.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}
	return db
}
