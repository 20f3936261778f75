package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/patron-tools/patronctl/config"
	"github.com/patron-tools/patronctl/paia"
	"github.com/patron-tools/patronctl/sessionstore"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	client  *paia.Client

	appVersion   = "dev"
	appBuildTime = "unknown"

	// Command flags
	filterExpr string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "patronctl",
	Short: "A client for PAIA patron accounts",
	Long: `patronctl talks to a PAIA (Patrons Account Information API) server and
presents a patron's account: current loans, reservations, storage requests
and fees. It can also renew loans, cancel requests, place new requests and
change the account password.`,
	PersistentPreRunE: initializeApp,
}

// SetVersion stores the build information injected by the linker.
func SetVersion(version, buildTime string) {
	appVersion = version
	appBuildTime = buildTime
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}

// initializeApp initializes the configuration and the PAIA client
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	// Assemble client options from the deployment policy
	opts := []paia.Option{
		paia.WithTimeout(time.Duration(cfg.PAIA.TimeoutSeconds) * time.Second),
		paia.WithRenewableDefault(cfg.Policy.RenewableDefault),
	}
	if !cfg.Policy.HoldsIncludeOrdered {
		opts = append(opts, paia.WithHoldStatuses(paia.StatusReserved, paia.StatusProvided))
	}
	for _, feeType := range cfg.Fees.BracketFeeTypes {
		opts = append(opts, paia.WithFeeExtractor(feeType, paia.BracketAboutExtractor))
	}

	store, err := sessionstore.NewMemDB()
	if err != nil {
		return fmt.Errorf("failed to create session store: %w", err)
	}
	opts = append(opts, paia.WithSessionStore(store))

	client, err = paia.NewClient(cfg.PAIA.URL, cfg.PAIA.Username, cfg.PAIA.Password, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create PAIA client: %w", err)
	}

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format; color only when requested and stderr is a terminal
	color := cfg.Color && isatty.IsTerminal(os.Stderr.Fd())
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !color,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test login against the PAIA server",
	Long:  `Log in with the configured credentials and display the patron account.`,
	RunE:  runTest,
}

func init() {
	rootCmd.AddCommand(testCmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	fmt.Printf("Testing connection to %s...\n", cfg.PAIA.URL)

	ctx := context.Background()
	ses, err := client.Login(ctx)
	if err != nil {
		return err
	}
	fmt.Println("✓ Login successful!")
	fmt.Printf("  Patron: %s\n", ses.PatronID)
	fmt.Printf("  Scopes: %s\n", strings.Join(ses.Scope, ", "))
	fmt.Printf("  Token expires: %s\n", ses.ExpiresAt.Format(time.RFC3339))

	patron, err := client.GetPatron(ctx)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(patron.Firstname + " " + patron.Lastname)
	if name == "" {
		name = patron.Name
	}
	if name != "" {
		fmt.Printf("  Name: %s\n", name)
	}
	if patron.Email != "" {
		fmt.Printf("  Email: %s\n", patron.Email)
	}
	fmt.Printf("  Status: %s\n", patron.Status.Label())
	if patron.Expires != "" {
		fmt.Printf("  Account expires: %s\n", patron.Expires)
	}

	return nil
}
