package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"stockledger/internal/extraction"
	"stockledger/internal/logger"
	"stockledger/internal/reconciliation"
	"stockledger/internal/sheets"
	"stockledger/pkg/models"
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Import physical counts and reconcile them with the inventory",
}

var countImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a physical count from Excel, PDF, an image or Google Sheets",
	Long: `Import a physical stock count as a new document.

Excel workbooks are read directly: the first sheet must have a header row with
columns for product name and quantity, plus optional code and unit columns.
Common Italian and English header names are recognized. PDFs and images go
through the extraction backend.

With --sheet-tab the count is read from a tab of the spreadsheet at
GOOGLE_SHEET_URL instead of a file.

Unit prices and categories are taken from the matching inventory products.`,
	Example: `  # Import an Excel count
  stockledger count import conta-giugno.xlsx

  # Import a scanned count sheet
  stockledger count import conta.pdf

  # Import the "Conta" tab of GOOGLE_SHEET_URL
  stockledger count import --sheet-tab Conta`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCountImport,
}

var countReportCmd = &cobra.Command{
	Use:   "report <id>",
	Short: "Compare a physical count with the inventory",
	Long: `Match every counted product to the inventory by SKU, then by exact name,
then by partial name, and report the quantity and value differences.

Without --xlsx or --sheet the report is printed to the terminal.`,
	Example: `  # Print the comparison
  stockledger count report PC-1A2B3C4D

  # Export only the discrepancies to Excel
  stockledger count report PC-1A2B3C4D --xlsx riconciliazione.xlsx --only-discrepancies

  # Full result as JSON
  stockledger count report PC-1A2B3C4D --json`,
	Args: cobra.ExactArgs(1),
	RunE: runCountReport,
}

func init() {
	rootCmd.AddCommand(countCmd)
	countCmd.AddCommand(countImportCmd, countReportCmd)

	countImportCmd.Flags().String("sheet-tab", "", "Read the count from this tab of GOOGLE_SHEET_URL")

	countReportCmd.Flags().String("xlsx", "", "Write the report to this Excel file")
	countReportCmd.Flags().String("sheet", "", "Sheet or tab name (with GOOGLE_SHEET_URL when --xlsx is not set)")
	countReportCmd.Flags().Bool("only-discrepancies", false, "Only include lines that differ from the inventory")
	addOutputFlags(countReportCmd)
}

func runCountImport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("count")

	tab, _ := cmd.Flags().GetString("sheet-tab")
	if (tab == "") == (len(args) == 0) {
		return fmt.Errorf("give either a file or --sheet-tab")
	}

	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	var filePath string
	if len(args) == 1 {
		filePath = args[0]
	}
	withExtractor := filePath != "" && !extraction.IsSpreadsheet(filePath)

	ctx, cancel := createCommandContext(cmd, log)
	defer cancel()

	svc, release, err := openWarehouse(ctx, cfg, withExtractor, log)
	if err != nil {
		return err
	}
	defer release()

	var doc models.Document
	if filePath != "" {
		f, err := readDocumentFile(filePath, log)
		if err != nil {
			return err
		}
		doc, err = svc.ImportCount(ctx, f)
		if err != nil {
			return handleWarehouseError(err, log)
		}
	} else {
		if cfg.GoogleSheetURL == "" {
			return fmt.Errorf("GOOGLE_SHEET_URL environment variable is required for --sheet-tab")
		}
		sheetsService, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create Google Sheets service")
			return fmt.Errorf("failed to connect to Google Sheets: %w", err)
		}
		doc, err = svc.ImportCountFromSheet(ctx, reconciliation.NewCountReader(sheetsService), tab)
		if err != nil {
			return handleWarehouseError(err, log)
		}
	}

	fmt.Printf("✅ Physical count %s imported: %d products, %s\n",
		doc.ID, len(doc.ExtractedProducts), svc.Lang().Currency(doc.TotalAmount))
	fmt.Printf("Run 'stockledger count report %s' to compare it with the inventory.\n", doc.ID)
	return nil
}

func runCountReport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("count")

	onlyDiscrepancies, _ := cmd.Flags().GetBool("only-discrepancies")

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

	svc, release, err := openWarehouse(ctx, cfg, false, log)
	if err != nil {
		return err
	}
	defer release()

	var result reconciliation.Result
	if writer != nil {
		result, err = svc.ExportReconciliation(ctx, args[0], writer, onlyDiscrepancies)
	} else {
		result, err = svc.Reconcile(args[0])
	}
	if err != nil {
		return handleWarehouseError(err, log)
	}

	log.Info().
		Str("document_id", result.DocumentID).
		Int("lines", result.Summary.LineCount).
		Int("discrepancies", result.Summary.DiscrepanciesCount).
		Float64("net_value", result.Summary.NetValue).
		Msg("Reconciliation completed")

	if asJSON, outputPath := wantsJSON(cmd); asJSON {
		return outputJSON(result, outputPath, log)
	}

	printReconciliation(result, onlyDiscrepancies, svc.Lang().Currency, func(s reconciliation.Status) string {
		return reconciliation.StatusLabel(s, svc.Lang())
	})
	return nil
}

func printReconciliation(res reconciliation.Result, onlyDiscrepancies bool, money func(float64) string, status func(reconciliation.Status) string) {
	fmt.Printf("=== %s  %s  %s ===\n\n", res.DocumentID, res.DocumentNumber, res.Date)

	lines := res.Lines
	if onlyDiscrepancies {
		lines = res.Discrepancies()
	}

	for _, l := range lines {
		system := "-"
		if l.Matched {
			system = l.System.Name
			if l.NameDiffers {
				system += " *"
			}
		}
		fmt.Printf("%-30s %-30s %-4s %10.2f %10.2f %+10.2f %14s  %s\n",
			truncate(l.Counted.Name, 30), truncate(system, 30), l.Counted.UnitOfMeasure,
			l.Counted.Quantity, l.SystemQuantity, l.Diff, money(l.ValueDiff), status(l.Status))
	}

	s := res.Summary
	fmt.Println()
	fmt.Printf("Lines: %d  Matched: %d  Discrepancies: %d\n", s.LineCount, s.MatchedCount, s.DiscrepanciesCount)
	fmt.Printf("Surplus: %s  Deficit: %s  Net: %s\n", money(s.SurplusValue), money(s.DeficitValue), money(s.NetValue))
}
