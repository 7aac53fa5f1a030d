package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"stockledger/internal/logger"
)

var warehouseCmd = &cobra.Command{
	Use:   "warehouse",
	Short: "Warehouse maintenance",
}

var warehouseResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete invoices and delivery notes",
	Long: `Delete every invoice and delivery note, or only those dated in --year.

Physical counts and review invoices are kept. Documents are removed locally
first and then from the remote store one by one; remote failures are logged.`,
	Example: `  # Clear the whole ledger
  stockledger warehouse reset --yes

  # Clear only 2023
  stockledger warehouse reset --year 2023 --yes`,
	Args: cobra.NoArgs,
	RunE: runWarehouseReset,
}

func init() {
	rootCmd.AddCommand(warehouseCmd)
	warehouseCmd.AddCommand(warehouseResetCmd)

	warehouseResetCmd.Flags().Int("year", 0, "Only delete documents dated in this year")
	warehouseResetCmd.Flags().Bool("yes", false, "Confirm the deletion")
}

func runWarehouseReset(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("warehouse-reset")

	confirmed, _ := cmd.Flags().GetBool("yes")
	if !confirmed {
		return fmt.Errorf("reset deletes documents permanently. Re-run with --yes to confirm")
	}

	var year *int
	if cmd.Flags().Changed("year") {
		y, _ := cmd.Flags().GetInt("year")
		if y < 1900 || y > 9999 {
			return fmt.Errorf("invalid year %d", y)
		}
		year = &y
	}

	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := createCommandContext(cmd, log)
	defer cancel()

	svc, release, err := openWarehouse(ctx, cfg, false, log)
	if err != nil {
		return err
	}
	defer release()

	removed, err := svc.ResetWarehouse(ctx, year)
	if err != nil {
		return handleWarehouseError(err, log)
	}

	if year != nil {
		fmt.Printf("Removed %d documents dated %d\n", removed, *year)
	} else {
		fmt.Printf("Removed %d documents\n", removed)
	}
	return nil
}
