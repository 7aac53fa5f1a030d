package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"stockledger/internal/ledger"
	"stockledger/internal/logger"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Show and export the consolidated inventory",
	Long: `The inventory is built from every invoice and delivery note. Products are
identified by SKU, or by name and unit of measure when no SKU is known.
Credit notes reduce quantities and value.`,
}

var inventoryShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the inventory, optionally filtered and grouped",
	Example: `  # Group by category
  stockledger inventory show --group category

  # Search by name, supplier, SKU, document number or category
  stockledger inventory show --search pomodori --group none`,
	Args: cobra.NoArgs,
	RunE: runInventoryShow,
}

var inventoryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the inventory to Excel or Google Sheets",
	Long: `Write one row per inventory entry with localized headers and numbers.

Use --xlsx to write a workbook, or --sheet to write a tab of the spreadsheet
at GOOGLE_SHEET_URL.

Required environment variables for --sheet:
  GOOGLE_APPLICATION_CREDENTIALS - Path to service account JSON file, OR
  GOOGLE_CREDENTIALS - Inline JSON credentials string
  GOOGLE_SHEET_URL - Target Google Sheets URL`,
	Example: `  stockledger inventory export --xlsx giacenze.xlsx
  stockledger inventory export --sheet Giacenze --lang en`,
	Args: cobra.NoArgs,
	RunE: runInventoryExport,
}

var inventoryYearsCmd = &cobra.Command{
	Use:   "years",
	Short: "List the years covered by invoices and delivery notes",
	Args:  cobra.NoArgs,
	RunE:  runInventoryYears,
}

func init() {
	rootCmd.AddCommand(inventoryCmd)
	inventoryCmd.AddCommand(inventoryShowCmd, inventoryExportCmd, inventoryYearsCmd)

	inventoryShowCmd.Flags().String("group", string(ledger.GroupByMonth), "Grouping: month, category, supplier or none")
	inventoryShowCmd.Flags().String("search", "", "Filter entries by a search term")
	addOutputFlags(inventoryShowCmd)

	inventoryExportCmd.Flags().String("xlsx", "", "Write the inventory to this Excel file")
	inventoryExportCmd.Flags().String("sheet", "", "Sheet or tab name (with GOOGLE_SHEET_URL when --xlsx is not set)")
}

func runInventoryShow(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("inventory")

	groupStr, _ := cmd.Flags().GetString("group")
	term, _ := cmd.Flags().GetString("search")

	grouping, err := ledger.ParseGrouping(groupStr)
	if err != nil {
		return err
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

	groups := svc.InventoryView(term, grouping)

	if asJSON, outputPath := wantsJSON(cmd); asJSON {
		return outputJSON(groups, outputPath, log)
	}

	if len(groups) == 0 {
		fmt.Println("No products in stock.")
		return nil
	}

	lang := svc.Lang()
	entries := 0
	for _, g := range groups {
		if grouping != ledger.GroupNone {
			fmt.Printf("\n=== %s ===\n", g.Label)
		}
		fmt.Printf("%-14s %-32s %-14s %12s %-4s %12s %14s %-10s\n",
			lang.Label("skuCol"), lang.Label("description"), lang.Label("categories"),
			lang.Label("stock"), "U.M.", lang.Label("avgPrice"), lang.Label("totalValue"), lang.Label("lastLoad"))
		for _, item := range g.Items {
			sku := item.SKU
			if sku == "" {
				sku = "N/D"
			}
			fmt.Printf("%-14s %-32s %-14s %12s %-4s %12s %14s %-10s\n",
				truncate(sku, 14), truncate(item.Name, 32), truncate(ledger.NormalizeCategory(item.Category), 14),
				lang.Number(item.Quantity), item.UnitOfMeasure, lang.Currency(item.UnitPrice),
				lang.Currency(item.TotalPrice), item.LastDate)
			entries++
		}
	}
	fmt.Printf("\n%d entries\n", entries)
	return nil
}

func runInventoryExport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("inventory")

	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := createCommandContext(cmd, log)
	defer cancel()

	writer, err := createTableWriter(ctx, cmd, cfg, log)
	if err != nil {
		return err
	}
	if writer == nil {
		return fmt.Errorf("choose a destination with --xlsx <file> or --sheet <name>")
	}

	svc, release, err := openWarehouse(ctx, cfg, false, log)
	if err != nil {
		return err
	}
	defer release()

	if err := svc.ExportInventory(ctx, writer); err != nil {
		return handleWarehouseError(err, log)
	}

	fmt.Printf("Exported %d inventory entries\n", len(svc.Inventory()))
	return nil
}

func runInventoryYears(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("inventory")

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

	for _, y := range svc.AvailableYears() {
		fmt.Println(y)
	}
	return nil
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the headline warehouse figures",
	Args:  cobra.NoArgs,
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	addOutputFlags(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("dashboard")

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

	d := svc.Dashboard()

	if asJSON, outputPath := wantsJSON(cmd); asJSON {
		return outputJSON(d, outputPath, log)
	}

	lang := svc.Lang()
	fmt.Printf("%s: %s\n", lang.Label("totalValue"), lang.Currency(d.TotalValue))
	fmt.Printf("%s: %d\n", lang.Label("products"), d.UniqueProducts)
	fmt.Printf("%s: %d\n", lang.Label("suppliers"), d.Suppliers)

	units := make([]string, 0, len(d.QuantityByUnit))
	for u := range d.QuantityByUnit {
		units = append(units, u)
	}
	sort.Strings(units)
	for _, u := range units {
		fmt.Printf("  %-4s %s\n", u, lang.Number(d.QuantityByUnit[u]))
	}

	if len(d.Monthly) > 0 {
		fmt.Println()
		for _, m := range d.Monthly {
			fmt.Printf("  %s  %14s\n", m.Month, lang.Currency(m.Total))
		}
	}
	return nil
}
