// Package cmd provides the CLI commands for dealcalc.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/dealcost/internal/logging"
)

// Version is stamped at build time.
var Version = "0.1.0"

type rootOptions struct {
	verbose  bool
	logger   *zap.Logger
	closeLog func()
}

// NewRootCmd builds the dealcalc command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{logger: zap.NewNop(), closeLog: func() {}}

	root := &cobra.Command{
		Use:   "dealcalc",
		Short: "Price sales deals and settle existing rentals",
		Long: `dealcalc runs the deal costing engine over pricing and deal files.

Examples:
  dealcalc deal --deal deal.yaml
  dealcalc deal --pricing pricing.yaml --deal deal.json --format json
  dealcalc settlement --start 2022-03-01 --amount 1500 --type starting --escalation 10 --term 60`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := logging.DefaultConfig()
			if opts.verbose {
				cfg.Level = "debug"
			} else {
				cfg.Level = "warn"
			}
			logger, closeLog, err := logging.New(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			opts.logger, opts.closeLog = logger, closeLog
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.closeLog()
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(newDealCmd(opts))
	root.AddCommand(newSettlementCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the CLI
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dealcalc version %s\n", Version)
		},
	}
}
