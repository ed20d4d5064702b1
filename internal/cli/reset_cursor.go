package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/dormancy-watcher/internal/core/domain"
	"github.com/vietddude/dormancy-watcher/internal/infra/storage/postgres"
)

var resetCursorCmd = &cobra.Command{
	Use:   "reset-cursor [chain_id] [block_height]",
	Short: "Move a chain's cursor so scanning resumes after block_height",
	Args:  cobra.ExactArgs(2),
	Run:   runResetCursor,
}

func init() {
	rootCmd.AddCommand(resetCursorCmd)
}

func runResetCursor(cmd *cobra.Command, args []string) {
	chainID := domain.ChainID(args[0])
	height, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		fmt.Printf("Invalid block height: %v\n", err)
		os.Exit(1)
	}

	cfg := loadConfig()
	ctx := context.Background()

	db := openDB(ctx, cfg)
	defer func() {
		_ = db.Close()
	}()

	// No hash: the next scanned block is accepted without a parent check.
	err = postgres.NewCursorRepo(db).Save(ctx, &domain.Cursor{
		ChainID:     chainID,
		BlockNumber: height,
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		slog.Error("Failed to reset cursor", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully reset cursor for %s to block %d\n", chainID, height)
}
