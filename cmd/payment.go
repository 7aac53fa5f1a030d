package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"stockledger/internal/logger"
	"stockledger/internal/payment"
	"stockledger/internal/warehouse"
	"stockledger/pkg/models"
)

var paymentCmd = &cobra.Command{
	Use:   "payment",
	Short: "Track payments of review invoices",
	Long: `Review invoices (added with 'documents add reviewInvoice') start unpaid.
Their payment status can be set directly or advanced with installments;
an installment that covers the remaining balance marks the invoice paid.`,
}

var paymentStatusCmd = &cobra.Command{
	Use:   "status <id> <paid|unpaid|partial>",
	Short: "Set the payment status of a review invoice",
	Long: `Set the payment status directly.

  paid     the paid amount becomes the invoice total
  unpaid   the paid amount is reset to zero
  partial  the paid amount is kept`,
	Example: `  stockledger payment status REV-9C1D22AF paid`,
	Args:    cobra.ExactArgs(2),
	RunE:    runPaymentStatus,
}

var paymentInstallmentCmd = &cobra.Command{
	Use:   "installment <id> <amount>",
	Short: "Record a partial payment on a review invoice",
	Example: `  stockledger payment installment REV-9C1D22AF 150.50
  stockledger payment installment REV-9C1D22AF 150,50`,
	Args: cobra.ExactArgs(2),
	RunE: runPaymentInstallment,
}

var paymentStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize paid and outstanding balances",
	Args:  cobra.NoArgs,
	RunE:  runPaymentStats,
}

var paymentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List review invoices with filters, sorting and grouping",
	Example: `  # Outstanding invoices by supplier
  stockledger payment list --status unpaid --group supplier

  # Credit notes, oldest due date first
  stockledger payment list --kind credit --sort dueDate --order asc`,
	Args: cobra.NoArgs,
	RunE: runPaymentList,
}

func init() {
	rootCmd.AddCommand(paymentCmd)
	paymentCmd.AddCommand(paymentStatusCmd, paymentInstallmentCmd, paymentStatsCmd, paymentListCmd)

	for _, c := range []*cobra.Command{paymentStatsCmd, paymentListCmd} {
		c.Flags().String("kind", "all", "Document kind: all, invoice or credit")
		c.Flags().String("supplier", "", "Only documents from this supplier")
		c.Flags().String("status", "", "Payment status: paid, unpaid (includes partial) or partial")
		addOutputFlags(c)
	}

	paymentListCmd.Flags().String("sort", string(payment.SortByDate), "Sort by date, dueDate or supplier")
	paymentListCmd.Flags().String("order", "", "Sort order asc or desc (default: newest first, suppliers A-Z)")
	paymentListCmd.Flags().String("group", string(payment.GroupNone), "Grouping: none, supplier, day, week, month or year")
}

// paymentFilter reads the --kind, --supplier and --status flags.
func paymentFilter(cmd *cobra.Command) (payment.Filter, error) {
	kindStr, _ := cmd.Flags().GetString("kind")
	supplier, _ := cmd.Flags().GetString("supplier")
	statusStr, _ := cmd.Flags().GetString("status")

	f := payment.Filter{Supplier: supplier}

	switch strings.ToLower(kindStr) {
	case "", "all":
		f.Kind = payment.KindAll
	case "invoice":
		f.Kind = payment.KindInvoice
	case "credit", "creditnote":
		f.Kind = payment.KindCreditNote
	default:
		return f, fmt.Errorf("unknown kind %q (want all, invoice or credit)", kindStr)
	}

	if statusStr != "" {
		status, ok := models.ParsePaymentStatus(statusStr)
		if !ok {
			return f, fmt.Errorf("unknown payment status %q (want paid, unpaid or partial)", statusStr)
		}
		f.Status = status
	}
	return f, nil
}

// parseAmount accepts both 150.50 and 150,50.
func parseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

func runPaymentStatus(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("payment")

	status, ok := models.ParsePaymentStatus(args[1])
	if !ok {
		return fmt.Errorf("unknown payment status %q (want paid, unpaid or partial)", args[1])
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

	doc, err := svc.SetPaymentStatus(ctx, args[0], status)
	if err != nil {
		return handleWarehouseError(err, log)
	}

	printPaymentState(doc, svc.Lang().Currency)
	return nil
}

func runPaymentInstallment(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("payment")

	amount, err := parseAmount(args[1])
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

	doc, err := svc.AddInstallment(ctx, args[0], amount)
	if err != nil {
		return handleWarehouseError(err, log)
	}

	printPaymentState(doc, svc.Lang().Currency)
	return nil
}

func printPaymentState(doc models.Document, money func(float64) string) {
	fmt.Printf("%s  %s  %s\n", doc.ID, doc.DocumentNumber, doc.Supplier)
	fmt.Printf("Status: %s  Paid: %s of %s  Remaining: %s\n",
		doc.PaymentStatus, money(doc.PaidAmount), money(doc.TotalAmount), money(payment.Remaining(doc)))
}

func runPaymentStats(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("payment")

	filter, err := paymentFilter(cmd)
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

	stats := svc.PaymentStats(filter)

	if asJSON, outputPath := wantsJSON(cmd); asJSON {
		return outputJSON(stats, outputPath, log)
	}

	money := svc.Lang().Currency
	fmt.Printf("Paid:             %14s\n", money(stats.Paid))
	fmt.Printf("Unpaid:           %14s\n", money(stats.Unpaid))
	fmt.Printf("Credits received: %14s\n", money(stats.ReceivedCredits))
	fmt.Printf("Credits pending:  %14s\n", money(stats.PendingCredits))
	fmt.Printf("Partial residue:  %14s\n", money(stats.PartialResidue))
	return nil
}

func runPaymentList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("payment")

	filter, err := paymentFilter(cmd)
	if err != nil {
		return err
	}

	sortStr, _ := cmd.Flags().GetString("sort")
	orderStr, _ := cmd.Flags().GetString("order")
	groupStr, _ := cmd.Flags().GetString("group")

	sortBy, order, err := payment.ParseSort(sortStr, orderStr)
	if err != nil {
		return err
	}
	groupBy, err := payment.ParseGroupBy(groupStr)
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

	groups := svc.BrowsePayments(warehouse.BrowseQuery{
		Filter:  filter,
		SortBy:  sortBy,
		Order:   order,
		GroupBy: groupBy,
	})

	if asJSON, outputPath := wantsJSON(cmd); asJSON {
		return outputJSON(groups, outputPath, log)
	}

	money := svc.Lang().Currency
	for _, g := range groups {
		fmt.Printf("\n=== %s (%d) ===\n", g.Label, len(g.Documents))
		for _, d := range g.Documents {
			kind := ""
			if d.IsCreditNote {
				kind = "NC"
			}
			fmt.Printf("%-14s %-2s %-10s %-10s %-18s %-28s %12s %12s  %s\n",
				d.ID, kind, d.Date, d.EffectiveDueDate(), truncate(d.DocumentNumber, 18),
				truncate(d.Supplier, 28), money(d.TotalAmount), money(d.PaidAmount), d.PaymentStatus)
		}
	}
	return nil
}
