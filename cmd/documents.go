package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stockledger/internal/extraction"
	"stockledger/internal/logger"
	"stockledger/pkg/models"
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"docs"},
	Short:   "Add, list and edit supplier documents",
	Long: `Manage the documents the warehouse ledger is built from.

Document types:
  invoice        supplier invoice (INV-), folds into the inventory
  deliveryNote   delivery note (DDT-), folds into the inventory
  physicalCount  physical stock count (PC-), reconciled against the inventory
  reviewInvoice  invoice kept for payment tracking (REV-), not folded`,
}

var documentsAddCmd = &cobra.Command{
	Use:   "add <type> <file-or-folder>...",
	Short: "Extract documents from files and add them to the warehouse",
	Long: `Send each file to the extraction backend and add the documents it contains.

Files are processed one at a time in the given order. Folders are expanded
into the PDF, image and Excel files they contain. Processing stops at the
first failure; documents read from earlier files stay added.

Physical counts in Excel format are read directly and need no extraction
backend.

Required environment variables (depending on EXTRACTOR):
  GEMINI_API_KEY - for EXTRACTOR=gemini (default)
  OPENAI_API_KEY - for EXTRACTOR=openai (OCR via Google Vision)
  GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION, DOCUMENT_AI_PROCESSOR_ID - for EXTRACTOR=documentai`,
	Example: `  # Add a supplier invoice
  stockledger documents add invoice fattura-1024.pdf

  # Add every delivery note in a folder
  stockledger documents add deliveryNote ./bolle/

  # Add an invoice to the payment review list and print it as JSON
  stockledger documents add reviewInvoice fattura.pdf --json`,
	Args: cobra.MinimumNArgs(2),
	RunE: runDocumentsAdd,
}

var documentsListCmd = &cobra.Command{
	Use:   "list [type]",
	Short: "List stored documents",
	Example: `  # List all invoices
  stockledger documents list invoice

  # Export every document as JSON
  stockledger documents list --json -o documents.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDocumentsList,
}

var documentsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one document with its products as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsShow,
}

var documentsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a document locally and from the remote store",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsDelete,
}

var documentsEditSupplierCmd = &cobra.Command{
	Use:     "edit-supplier <id> <supplier>",
	Short:   "Change the supplier of a document and its products",
	Example: `  stockledger documents edit-supplier INV-3F2A91C0 "Ortofrutta Rossi"`,
	Args:    cobra.ExactArgs(2),
	RunE:    runDocumentsEditSupplier,
}

func init() {
	rootCmd.AddCommand(documentsCmd)
	documentsCmd.AddCommand(documentsAddCmd, documentsListCmd, documentsShowCmd,
		documentsDeleteCmd, documentsEditSupplierCmd)

	addOutputFlags(documentsAddCmd)
	addOutputFlags(documentsListCmd)
	documentsShowCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
}

// parseDocumentType accepts the canonical type names and a few short forms.
func parseDocumentType(s string) (models.DocumentType, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "-", "")) {
	case "invoice", "inv":
		return models.TypeInvoice, nil
	case "deliverynote", "ddt":
		return models.TypeDeliveryNote, nil
	case "physicalcount", "count", "pc":
		return models.TypePhysicalCount, nil
	case "reviewinvoice", "review", "rev":
		return models.TypeReviewInvoice, nil
	}
	return "", fmt.Errorf("unknown document type %q (want invoice, deliveryNote, physicalCount or reviewInvoice)", s)
}

func runDocumentsAdd(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("documents")

	docType, err := parseDocumentType(args[0])
	if err != nil {
		return err
	}

	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	files, err := readDocumentFiles(args[1:], log)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported documents found")
	}

	withExtractor := docType != models.TypePhysicalCount
	for _, f := range files {
		if !extraction.IsSpreadsheet(f.Name) {
			withExtractor = true
		}
	}

	log.Info().
		Str("type", string(docType)).
		Int("files", len(files)).
		Bool("extraction", withExtractor).
		Msg("Starting document intake")

	ctx, cancel := createCommandContext(cmd, log)
	defer cancel()

	svc, release, err := openWarehouse(ctx, cfg, withExtractor, log)
	if err != nil {
		return err
	}
	defer release()

	startTime := time.Now()
	added, ingestErr := svc.IngestFiles(ctx, docType, files)

	log.Info().
		Int("added", len(added)).
		Dur("duration", time.Since(startTime)).
		Msg("Document intake finished")

	if asJSON, outputPath := wantsJSON(cmd); asJSON {
		if err := outputJSON(added, outputPath, log); err != nil {
			return err
		}
	} else {
		for _, doc := range added {
			fmt.Printf("✅ %s  %s  %s  %s  %d products  %s\n",
				doc.ID, doc.Date, doc.DocumentNumber, doc.Supplier,
				len(doc.ExtractedProducts), svc.Lang().Currency(doc.TotalAmount))
		}
		fmt.Printf("\n%d of %d files processed, %d documents added\n",
			processedFiles(added, len(files), ingestErr), len(files), len(added))
	}

	if ingestErr != nil {
		return handleWarehouseError(ingestErr, log)
	}
	return nil
}

// processedFiles counts the files completed before a failure.
func processedFiles(added []models.Document, total int, err error) int {
	if err == nil {
		return total
	}
	seen := make(map[string]bool)
	for _, d := range added {
		seen[d.FileName] = true
	}
	return len(seen)
}

func runDocumentsList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("documents")

	types := []models.DocumentType{
		models.TypeInvoice, models.TypeDeliveryNote, models.TypePhysicalCount, models.TypeReviewInvoice,
	}
	if len(args) == 1 {
		t, err := parseDocumentType(args[0])
		if err != nil {
			return err
		}
		types = []models.DocumentType{t}
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

	var docs []models.Document
	for _, t := range types {
		docs = append(docs, svc.Documents(t)...)
	}

	if asJSON, outputPath := wantsJSON(cmd); asJSON {
		return outputJSON(docs, outputPath, log)
	}

	if len(docs) == 0 {
		fmt.Println("No documents found.")
		return nil
	}

	lang := svc.Lang()
	fmt.Printf("%-14s %-14s %-10s %-18s %-30s %8s %14s\n",
		"ID", "TYPE", "DATE", "NUMBER", "SUPPLIER", "PRODUCTS", "TOTAL")
	for _, d := range docs {
		fmt.Printf("%-14s %-14s %-10s %-18s %-30s %8d %14s\n",
			d.ID, d.Type, d.Date, truncate(d.DocumentNumber, 18), truncate(d.Supplier, 30),
			len(d.ExtractedProducts), lang.Currency(d.TotalAmount))
	}
	fmt.Printf("\n%d documents\n", len(docs))
	return nil
}

func runDocumentsShow(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("documents")

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

	doc, err := svc.Find(args[0])
	if err != nil {
		return handleWarehouseError(err, log)
	}

	outputPath, _ := cmd.Flags().GetString("output")
	return outputJSON(doc, outputPath, log)
}

func runDocumentsDelete(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("documents")

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

	if err := svc.DeleteDocument(ctx, args[0]); err != nil {
		return handleWarehouseError(err, log)
	}

	fmt.Printf("Deleted %s\n", args[0])
	return nil
}

func runDocumentsEditSupplier(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("documents")

	supplier := strings.TrimSpace(args[1])
	if supplier == "" {
		return fmt.Errorf("supplier must not be empty")
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

	doc, err := svc.EditSupplier(ctx, args[0], supplier)
	if err != nil {
		return handleWarehouseError(err, log)
	}

	fmt.Printf("%s supplier set to %q (%d products updated)\n", doc.ID, doc.Supplier, len(doc.ExtractedProducts))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
