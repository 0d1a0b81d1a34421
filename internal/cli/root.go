// Package cli is the nainai operator command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"nainai/backend/internal/app"
	"nainai/backend/internal/config"
	"nainai/backend/internal/domain"
	"nainai/backend/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
)

// Opener builds the backend a command runs against.
type Opener func(ctx context.Context) (*app.App, error)

func newRootCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "nainai",
		Short:         "Tea shop stock, recipes and sales",
		Long:          "nainai manages ingredient stock, drink recipes and sales for a tea shop, and serves the same operations to assistants over MCP.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newIngredientCmd(open))
	cmd.AddCommand(newProductCmd(open))
	cmd.AddCommand(newRecipeCmd(open))
	cmd.AddCommand(newSellCmd(open))
	cmd.AddCommand(newOrderCmd(open))
	cmd.AddCommand(newReportCmd(open))
	cmd.AddCommand(newRecommendCmd(open))
	cmd.AddCommand(newSeedCmd(open))
	cmd.AddCommand(newMCPCmd(open))
	return cmd
}

// NewRootCmdForTest returns the root command wired to open.
func NewRootCmdForTest(open Opener) *cobra.Command {
	return newRootCmd(open)
}

// Execute runs the command line, cancelling the command context on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd(openFromEnv).ExecuteContext(ctx)
}

func openFromEnv(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	closeLog, err := logging.Install(logging.Options{
		Level:      cfg.LogLevel,
		File:       cfg.LogFile,
		Production: cfg.IsProduction(),
	})
	if err != nil {
		return nil, err
	}
	a, err := app.Open(ctx, cfg)
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	a.OnClose(closeLog)
	return a, nil
}

// withApp opens the backend for one command run and closes it afterwards.
func withApp(cmd *cobra.Command, open Opener, run func(a *app.App) error) (err error) {
	a, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.Close())
	}()
	return run(a)
}

// outcome prints a mutation result and turns a refusal into the command error.
func outcome(w io.Writer, res domain.Result, err error) error {
	if err != nil {
		fmt.Fprintln(w, failStyle.Render("✗ "+res.Message))
		return errors.New(res.Message)
	}
	fmt.Fprintln(w, okStyle.Render("✓ "+res.Message))
	return nil
}

func parseDecimal(name string, raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s %q is not a number", name, raw)
	}
	return value, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "nainai %s (%s)\n", version, commit)
		},
	}
}
