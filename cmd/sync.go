package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"stockledger/internal/logger"
	"stockledger/internal/store"
	"stockledger/pkg/models"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull the remote database and merge it into local data",
	Long: `Fetch every document from the PostgreSQL database at DATABASE_URL and merge
it into the local data. Documents only known remotely are added and local-only
documents are kept. For documents present on both sides the remote version
wins unless the local payment status is further along (paid over partial over
unpaid).

Every other command also syncs when it starts. Remote failures are logged and
the local data is left as it was.

With --migrate the documents table is created or updated first.`,
	Example: `  stockledger sync
  stockledger sync --migrate`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().Bool("migrate", false, "Create or update the remote documents table before syncing")
}

func runSync(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("sync")

	migrate, _ := cmd.Flags().GetBool("migrate")

	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.DatabaseURL == "" {
		fmt.Println("No remote store configured (DATABASE_URL is empty). Working with local data only.")
		return nil
	}

	ctx, cancel := createCommandContext(cmd, log)
	defer cancel()

	if migrate {
		pg, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to connect to remote store")
			return fmt.Errorf("failed to connect to DATABASE_URL: %w", err)
		}
		err = pg.Migrate(ctx)
		if closeErr := pg.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close remote store")
		}
		if err != nil {
			return fmt.Errorf("failed to migrate remote schema: %w", err)
		}
		fmt.Println("Remote schema is up to date.")
	}

	svc, release, err := openWarehouse(ctx, cfg, false, log)
	if err != nil {
		return err
	}
	defer release()

	for _, t := range models.AllTypes {
		fmt.Printf("%-14s %d\n", t, len(svc.Documents(t)))
	}
	return nil
}
