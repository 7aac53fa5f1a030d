package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"stockledger/internal/config"
	"stockledger/internal/extraction"
	"stockledger/internal/sheets"
	"stockledger/internal/spreadsheet"
	"stockledger/internal/store"
	"stockledger/internal/warehouse"
	"stockledger/pkg/services"
)

// commandConfig returns the startup configuration with command-line overrides.
func commandConfig(cmd *cobra.Command) (*config.Config, error) {
	if appConfigErr != nil {
		return nil, fmt.Errorf("invalid configuration. Please check your .env file: %w", appConfigErr)
	}
	if appConfig == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	cfg := *appConfig
	if lang, _ := cmd.Flags().GetString("lang"); lang != "" {
		cfg.Language = lang
	}
	return &cfg, nil
}

// createCommandContext creates a context with the --timeout deadline and
// signal handling
func createCommandContext(cmd *cobra.Command, log zerolog.Logger) (context.Context, context.CancelFunc) {
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling command")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// openWarehouse wires the stores and, when needed, the extraction backend,
// then loads the document state. The returned function releases everything.
func openWarehouse(ctx context.Context, cfg *config.Config, withExtractor bool, log zerolog.Logger) (*warehouse.Service, func(), error) {
	var closers []func() error
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn().Err(err).Msg("Failed to release resource")
			}
		}
	}

	storeCfg := cfg.GetStoreConfig()

	local, err := store.OpenLocal(ctx, storeCfg)
	if err != nil {
		log.Error().
			Err(err).
			Str("backend", storeCfg.Local).
			Msg("Failed to open local store")
		return nil, release, fmt.Errorf("failed to open local store: %w", err)
	}
	closers = append(closers, local.Close)

	remote, closeRemote, err := store.OpenRemote(ctx, storeCfg)
	if err != nil {
		log.Warn().
			Err(err).
			Msg("Remote store unavailable, continuing with local data only")
		remote = nil
	} else {
		closers = append(closers, closeRemote)
	}

	var extractor extraction.Extractor
	if withExtractor {
		e, closeExtractor, err := createExtractor(ctx, cfg, log)
		if err != nil {
			release()
			return nil, func() {}, err
		}
		extractor = e
		closers = append(closers, closeExtractor)
	}

	svc := warehouse.New(warehouse.Options{
		Local:     local,
		Remote:    remote,
		Extractor: extractor,
		Lang:      cfg.Lang(),
	})

	if err := svc.Load(ctx); err != nil {
		release()
		return nil, func() {}, handleWarehouseError(err, log)
	}

	return svc, release, nil
}

// createExtractor creates the configured extraction backend
func createExtractor(ctx context.Context, cfg *config.Config, log zerolog.Logger) (extraction.Extractor, func() error, error) {
	if err := cfg.ValidateExtraction(); err != nil {
		log.Error().
			Err(err).
			Str("extractor", cfg.Extractor).
			Msg("Extraction backend not configured")
		return nil, nil, fmt.Errorf("extraction backend %q is not configured. Please check your .env file:\n"+
			"  EXTRACTOR=gemini     needs GEMINI_API_KEY\n"+
			"  EXTRACTOR=openai     needs OPENAI_API_KEY and Google Cloud credentials for OCR\n"+
			"  EXTRACTOR=documentai needs GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION and DOCUMENT_AI_PROCESSOR_ID\n"+
			"Original error: %w", cfg.Extractor, err)
	}

	e, closeFn, err := extraction.New(ctx, cfg.GetExtractionConfig())
	if err != nil {
		log.Error().
			Err(err).
			Str("extractor", cfg.Extractor).
			Msg("Failed to create extraction backend")
		return nil, nil, handleWarehouseError(err, log)
	}

	log.Debug().Str("extractor", cfg.Extractor).Msg("Extraction backend created")
	return e, closeFn, nil
}

// handleWarehouseError provides user-friendly error messages for command failures
func handleWarehouseError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Operation failed")

	errStr := err.Error()

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, extraction.ErrTimeout):
		return fmt.Errorf("operation timed out. Try increasing --timeout or EXTRACTION_TIMEOUT: %w", err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("operation was canceled")
	case errors.Is(err, warehouse.ErrNotFound):
		return fmt.Errorf("document not found. Use 'stockledger documents list' to see document ids: %w", err)
	case errors.Is(err, warehouse.ErrWrongType):
		return fmt.Errorf("this operation is not available for the selected document: %w", err)
	case errors.Is(err, warehouse.ErrNoExtractor):
		return fmt.Errorf("no extraction backend configured for this file. Set EXTRACTOR and its credentials")
	case errors.Is(err, warehouse.ErrUnsupportedStatus):
		return fmt.Errorf("payment status must be paid, unpaid or partial")
	case errors.Is(err, extraction.ErrUnsupportedFormat):
		return fmt.Errorf("unsupported file format. Use PDF, an image or an Excel workbook: %w", err)
	case errors.Is(err, extraction.ErrDocumentTooLarge):
		return fmt.Errorf("file is too large (maximum 20MB). Try compressing or splitting it")
	case errors.Is(err, extraction.ErrEmpty):
		return fmt.Errorf("no documents could be read from the file. It may not be an invoice or delivery note: %w", err)
	case errors.Is(err, extraction.ErrInvalidResponse):
		return fmt.Errorf("the extraction backend returned an unreadable answer. Try again or switch EXTRACTOR: %w", err)
	case errors.Is(err, extraction.ErrQuotaExceeded) || strings.Contains(errStr, "QUOTA_EXCEEDED"):
		return fmt.Errorf("extraction API quota exceeded. Check your plan or project quotas")
	case errors.Is(err, extraction.ErrInvalidCredentials) ||
		strings.Contains(errStr, "Unauthenticated") ||
		strings.Contains(errStr, "invalid_grant"):
		return fmt.Errorf("extraction backend authentication failed. Please check your credentials:\n\n"+
			"1. GEMINI_API_KEY or OPENAI_API_KEY for the selected EXTRACTOR\n"+
			"2. GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS for Document AI and Vision\n\n"+
			"Original error: %v", err)
	case errors.Is(err, store.ErrCorrupt):
		return fmt.Errorf("local data is corrupt. Check the files in DATA_DIR: %w", err)
	case errors.Is(err, extraction.ErrTransient):
		return fmt.Errorf("extraction failed because of network issues or service unavailability: %w", err)
	default:
		return err
	}
}

// readDocumentFiles loads every file, expanding directories into the
// supported files they contain.
func readDocumentFiles(paths []string, log zerolog.Logger) ([]warehouse.File, error) {
	var files []warehouse.File
	for _, p := range paths {
		info, err := os.Stat(p)
		if err == nil && info.IsDir() {
			found, err := findDocumentFiles(p)
			if err != nil {
				return nil, fmt.Errorf("failed to scan folder %s: %w", p, err)
			}
			if len(found) == 0 {
				log.Warn().Str("folder", p).Msg("No supported documents found in folder")
			}
			for _, f := range found {
				file, err := readDocumentFile(f, log)
				if err != nil {
					return nil, err
				}
				files = append(files, file)
			}
			continue
		}

		file, err := readDocumentFile(p, log)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

// findDocumentFiles finds all supported documents in the folder, in name order
func findDocumentFiles(folderPath string) ([]string, error) {
	var found []string

	err := filepath.Walk(folderPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && extraction.IsSupportedFile(info.Name()) {
			found = append(found, path)
		}
		return nil
	})

	sort.Strings(found)
	return found, err
}

func readDocumentFile(path string, log zerolog.Logger) (warehouse.File, error) {
	if _, err := validateDocumentFile(path, log); err != nil {
		return warehouse.File{}, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("Failed to read file")
		return warehouse.File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return warehouse.File{Name: filepath.Base(path), Content: content}, nil
}

// validateDocumentFile validates a file before it is sent for extraction
func validateDocumentFile(path string, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().Str("file", path).Msg("File not found")
			return nil, fmt.Errorf("file not found: %s", path)
		}
		if os.IsPermission(err) {
			log.Error().Str("file", path).Msg("Permission denied accessing file")
			return nil, fmt.Errorf("permission denied accessing file: %s", path)
		}
		return nil, fmt.Errorf("error accessing file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		log.Error().Str("file", path).Msg("Path is not a regular file")
		return nil, fmt.Errorf("path is not a regular file: %s", path)
	}

	if !extraction.IsSupportedFile(path) {
		log.Warn().
			Str("file", path).
			Msg("File extension not recognized, the type will be detected from its content")
	}

	if fileInfo.Size() == 0 {
		log.Error().Str("file", path).Msg("File is empty")
		return nil, fmt.Errorf("file is empty: %s", path)
	}

	if fileInfo.Size() > extraction.MaxDocumentSizeBytes {
		log.Error().
			Str("file", path).
			Int64("size", fileInfo.Size()).
			Int64("max_size", extraction.MaxDocumentSizeBytes).
			Msg("File exceeds maximum size limit")
		return nil, fmt.Errorf("file too large (%d bytes). Maximum size is %d bytes (20MB)",
			fileInfo.Size(), extraction.MaxDocumentSizeBytes)
	}

	return fileInfo, nil
}

// namedTable writes tables under a caller-chosen sheet name.
type namedTable struct {
	services.TableWriter
	name string
}

func (n namedTable) WriteTable(ctx context.Context, table services.Table) error {
	if n.name != "" {
		table.Name = n.name
	}
	return n.TableWriter.WriteTable(ctx, table)
}

// createTableWriter picks the export destination from the --xlsx and --sheet
// flags. --sheet writes to the spreadsheet at GOOGLE_SHEET_URL.
func createTableWriter(ctx context.Context, cmd *cobra.Command, cfg *config.Config, log zerolog.Logger) (services.TableWriter, error) {
	xlsxPath, _ := cmd.Flags().GetString("xlsx")
	sheetName, _ := cmd.Flags().GetString("sheet")

	switch {
	case xlsxPath != "":
		log.Debug().Str("file", xlsxPath).Msg("Exporting to Excel workbook")
		return namedTable{TableWriter: spreadsheet.NewXLSXWriter(xlsxPath), name: sheetName}, nil
	case sheetName != "":
		if cfg.GoogleSheetURL == "" {
			return nil, fmt.Errorf("GOOGLE_SHEET_URL environment variable is required for --sheet")
		}
		svc, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create Google Sheets service")
			return nil, fmt.Errorf("failed to connect to Google Sheets: %w", err)
		}
		log.Debug().Str("sheet", sheetName).Msg("Exporting to Google Sheets")
		return namedTable{TableWriter: svc, name: sheetName}, nil
	default:
		return nil, nil
	}
}

// outputJSON writes v as indented JSON to outputPath, or stdout when empty
func outputJSON(v interface{}, outputPath string, log zerolog.Logger) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal output to JSON")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0o644); err != nil {
			log.Error().
				Err(err).
				Str("output_file", outputPath).
				Msg("Failed to write output file")
			return fmt.Errorf("failed to write output file: %w", err)
		}

		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(jsonData)).
			Msg("Output written to file")
		return nil
	}

	if _, err := os.Stdout.Write(jsonData); err != nil {
		log.Error().Err(err).Msg("Failed to write to stdout")
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Println()
	return nil
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Output as JSON format")
	cmd.Flags().StringP("output", "o", "", "JSON output file path (default: stdout)")
}

func wantsJSON(cmd *cobra.Command) (bool, string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	outputPath, _ := cmd.Flags().GetString("output")
	return jsonOutput || outputPath != "", outputPath
}
