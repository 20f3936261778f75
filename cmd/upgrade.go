package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

const githubRepo = "patron-tools/patronctl"

var checkOnly bool

// upgradeCmd represents the upgrade command
var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade patronctl to the latest version",
	Long:  `Check GitHub for a newer release and replace the running binary with it.`,
	RunE:  runUpgrade,
	// The upgrade command needs no configuration or PAIA connection.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

func init() {
	upgradeCmd.Flags().BoolVar(&checkOnly, "check", false, "only check for a newer version")
	rootCmd.AddCommand(upgradeCmd)
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(githubRepo))
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s", githubRepo)
	}

	if current, err := semver.ParseTolerant(appVersion); err == nil {
		if latest.LessOrEqual(current.String()) {
			fmt.Printf("patronctl %s is up to date (built %s)\n", appVersion, appBuildTime)
			return nil
		}
	}

	fmt.Printf("New version available: %s (current: %s)\n", latest.Version(), appVersion)
	if checkOnly {
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}

	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	fmt.Printf("✓ Updated to %s\n", latest.Version())
	return nil
}
