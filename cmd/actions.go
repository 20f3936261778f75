package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patron-tools/patronctl/paia"
)

var (
	oldPassword string
	newPassword string
)

// renewCmd represents the renew command
var renewCmd = &cobra.Command{
	Use:   "renew ITEM...",
	Short: "Renew one or more loans",
	Long: `Renew the loans identified by the given item tokens. Tokens are printed
by the loans command for every renewable loan.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRenew,
}

// cancelCmd represents the cancel command
var cancelCmd = &cobra.Command{
	Use:   "cancel ITEM...",
	Short: "Cancel one or more reservations or storage requests",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCancel,
}

// requestCmd represents the request command
var requestCmd = &cobra.Command{
	Use:   "request ITEM...",
	Short: "Place a hold or storage request for one or more items",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRequest,
}

// passwdCmd represents the passwd command
var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the account password",
	RunE:  runPasswd,
}

func init() {
	passwdCmd.Flags().StringVar(&oldPassword, "old", "", "current password")
	passwdCmd.Flags().StringVar(&newPassword, "new", "", "new password")

	rootCmd.AddCommand(renewCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(requestCmd)
	rootCmd.AddCommand(passwdCmd)
}

func runRenew(cmd *cobra.Command, args []string) error {
	report, err := client.Renew(context.Background(), args)
	if err != nil {
		return err
	}
	return printReport("renewed", report)
}

func runCancel(cmd *cobra.Command, args []string) error {
	report, err := client.Cancel(context.Background(), args)
	if err != nil {
		return err
	}
	return printReport("cancelled", report)
}

func runRequest(cmd *cobra.Command, args []string) error {
	report, err := client.PlaceRequest(context.Background(), args)
	if err != nil {
		return err
	}
	return printReport("requested", report)
}

func runPasswd(cmd *cobra.Command, args []string) error {
	if oldPassword == "" || newPassword == "" {
		return fmt.Errorf("both --old and --new are required")
	}

	if err := client.ChangePassword(context.Background(), oldPassword, newPassword); err != nil {
		return err
	}
	fmt.Println("✓ Password changed.")
	return nil
}

// printReport renders a per-item result table. The command fails only when
// every requested item failed, so bulk operations can report partial
// success.
func printReport(verb string, report *paia.ActionReport) error {
	fmt.Println(strings.Repeat("-", 80))
	for _, result := range report.Items {
		if result.Success {
			fmt.Printf("✓ %s: %s\n", result.Item, verb)
			continue
		}
		message := result.Message
		if message == "" {
			message = "failed"
		}
		fmt.Printf("✗ %s: %s\n", result.Item, message)
	}
	fmt.Println(strings.Repeat("-", 80))
	fmt.Printf("%d of %d items %s\n", report.SuccessCount, len(report.Items), verb)

	if report.AllFailed() {
		return fmt.Errorf("no items could be %s", verb)
	}
	return nil
}
