package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/patron-tools/patronctl/filter"
	"github.com/patron-tools/patronctl/paia"
)

// holdsCmd represents the holds command
var holdsCmd = &cobra.Command{
	Use:   "holds",
	Short: "List the patron's reservations and pickups",
	RunE:  runHolds,
}

// loansCmd represents the loans command
var loansCmd = &cobra.Command{
	Use:   "loans",
	Short: "List the patron's current loans",
	RunE:  runLoans,
}

// requestsCmd represents the requests command
var requestsCmd = &cobra.Command{
	Use:   "requests",
	Short: "List the patron's storage requests",
	RunE:  runRequests,
}

// feesCmd represents the fees command
var feesCmd = &cobra.Command{
	Use:   "fees",
	Short: "List the patron's fees",
	RunE:  runFees,
}

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a one-page account summary",
	Long:  `Fetch loans, holds and fees and print a compact account overview.`,
	RunE:  runSummary,
}

func init() {
	for _, c := range []*cobra.Command{holdsCmd, loansCmd, requestsCmd} {
		c.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression applied to the raw item documents")
	}
	rootCmd.AddCommand(holdsCmd)
	rootCmd.AddCommand(loansCmd)
	rootCmd.AddCommand(requestsCmd)
	rootCmd.AddCommand(feesCmd)
	rootCmd.AddCommand(summaryCmd)
}

// fetchFilteredItems retrieves the raw item documents, applying the --filter
// expression when one is given.
func fetchFilteredItems(ctx context.Context) ([]paia.ItemDocument, error) {
	docs, err := client.GetItems(ctx)
	if err != nil {
		return nil, err
	}
	if filterExpr == "" {
		return docs, nil
	}

	itemFilter, err := filter.Compile(filterExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return itemFilter.Apply(docs), nil
}

func runHolds(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	docs, err := fetchFilteredItems(ctx)
	if err != nil {
		return err
	}

	holds := client.ProjectHolds(docs)
	if len(holds) == 0 {
		fmt.Println("No reservations or pickups.")
		return nil
	}

	fmt.Printf("\n%d reservations/pickups:\n", len(holds))
	fmt.Println(strings.Repeat("-", 80))
	for _, hold := range holds {
		fmt.Printf("• %s\n", titleOrID(hold.Title, hold.ID))
		fmt.Printf("  Status: %s\n", hold.Status)
		if hold.Available {
			fmt.Printf("  Ready for pickup until: %s\n", hold.Expire)
		} else if hold.Create != "" {
			fmt.Printf("  Requested: %s\n", hold.Create)
		}
		if hold.Location != "" {
			fmt.Printf("  Location: %s\n", hold.Location)
		}
		if hold.Queue > 0 {
			fmt.Printf("  Queue position: %d\n", hold.Queue)
		}
		if hold.CancelToken != "" {
			fmt.Printf("  Cancellable: %s\n", hold.CancelToken)
		}
	}
	return nil
}

func runLoans(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	docs, err := fetchFilteredItems(ctx)
	if err != nil {
		return err
	}

	loans := client.ProjectLoans(docs)
	if len(loans) == 0 {
		fmt.Println("No current loans.")
		return nil
	}

	fmt.Printf("\n%d loans:\n", len(loans))
	fmt.Println(strings.Repeat("-", 80))
	for _, loan := range loans {
		fmt.Printf("• %s\n", titleOrID(loan.Title, loan.ID))
		if loan.DueDate != "" {
			fmt.Printf("  Due: %s\n", loan.DueDate)
		}
		fmt.Printf("  Renewable: %t", loan.Renewable)
		if loan.Renewals > 0 {
			fmt.Printf(" (renewed %d times)", loan.Renewals)
		}
		fmt.Println()
		if loan.Location != "" {
			fmt.Printf("  Location: %s\n", loan.Location)
		}
		if loan.Message != "" {
			fmt.Printf("  Note: %s\n", loan.Message)
		}
	}
	return nil
}

func runRequests(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	docs, err := fetchFilteredItems(ctx)
	if err != nil {
		return err
	}

	requests := client.ProjectStorageRequests(docs)
	if len(requests) == 0 {
		fmt.Println("No storage requests.")
		return nil
	}

	fmt.Printf("\n%d storage requests:\n", len(requests))
	fmt.Println(strings.Repeat("-", 80))
	for _, request := range requests {
		fmt.Printf("• %s\n", titleOrID(request.Title, request.ID))
		if request.Create != "" {
			fmt.Printf("  Requested: %s\n", request.Create)
		}
		if request.Location != "" {
			fmt.Printf("  Location: %s\n", request.Location)
		}
		if request.Queue > 0 {
			fmt.Printf("  Queue position: %d\n", request.Queue)
		}
	}
	return nil
}

func runFees(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	fees, err := client.GetFees(ctx)
	if err != nil {
		return err
	}

	if len(fees) == 0 {
		fmt.Println("No outstanding fees.")
		return nil
	}

	fmt.Printf("\n%d fees:\n", len(fees))
	fmt.Println(strings.Repeat("-", 80))
	var total paia.Money
	for _, fee := range fees {
		label := fee.Title
		if label == "" {
			label = fee.FeeType
		}
		fmt.Printf("• %-50s %12s\n", label, fee.Amount)
		if fee.FeeType != "" && fee.Title != "" {
			fmt.Printf("  Type: %s\n", fee.FeeType)
		}
		if fee.Date != "" {
			fmt.Printf("  Date: %s\n", fee.Date)
		}
		if fee.DueDate != "" {
			fmt.Printf("  Originally due: %s\n", fee.DueDate)
		}
		if fee.Amount.Valid && (total.Currency == "" || total.Currency == fee.Amount.Currency) {
			total.Minor += fee.Amount.Minor
			total.Currency = fee.Amount.Currency
			total.Valid = true
		}
	}
	if total.Valid {
		fmt.Println(strings.Repeat("-", 80))
		fmt.Printf("  Total: %s\n", total)
	}
	return nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// One up-front login so the parallel reads reuse the session.
	if _, err := client.Login(ctx); err != nil {
		return err
	}

	var (
		loans []paia.LoanRecord
		holds []paia.HoldRecord
		fees  []paia.FeeRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		loans, err = client.GetLoans(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		holds, err = client.GetHolds(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		fees, err = client.GetFees(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("\nAccount summary for %s\n", cfg.PAIA.Username)
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Loans: %d", len(loans))
	if due := soonestDue(loans); due != "" {
		fmt.Printf(" (next due %s)", due)
	}
	fmt.Println()

	available := 0
	for _, hold := range holds {
		if hold.Available {
			available++
		}
	}
	fmt.Printf("Reservations: %d (%d ready for pickup)\n", len(holds), available)

	var total paia.Money
	for _, fee := range fees {
		if fee.Amount.Valid && (total.Currency == "" || total.Currency == fee.Amount.Currency) {
			total.Minor += fee.Amount.Minor
			total.Currency = fee.Amount.Currency
			total.Valid = true
		}
	}
	if total.Valid {
		fmt.Printf("Outstanding fees: %s\n", total)
	} else {
		fmt.Printf("Outstanding fees: %d\n", len(fees))
	}
	return nil
}

func soonestDue(loans []paia.LoanRecord) string {
	due := ""
	for _, loan := range loans {
		if loan.DueDate != "" && (due == "" || loan.DueDate < due) {
			due = loan.DueDate
		}
	}
	return due
}

func titleOrID(title, id string) string {
	if title != "" {
		return title
	}
	return id
}
