package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/dealcost/internal/pricing"
	"github.com/Simplici0/dealcost/internal/report"
)

const dateLayout = "2006-01-02"

type settlementOptions struct {
	start      string
	amount     float64
	rentalType string
	escalation int
	term       int
	asOf       string
	format     string
	currency   string
}

func newSettlementCmd(root *rootOptions) *cobra.Command {
	opts := &settlementOptions{}

	cmd := &cobra.Command{
		Use:   "settlement",
		Short: "Project the payoff of an existing rental",
		Long: `Project the year-by-year payoff of an existing rental contract.

Examples:
  dealcalc settlement --start 2022-03-01 --amount 1500 --type starting --escalation 10 --term 60
  dealcalc settlement --start 2022-03-01 --amount 1815 --type current --escalation 10 --term 60 --as-of 2024-06-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettlement(cmd, root.logger, opts, time.Now())
		},
	}

	cmd.Flags().StringVar(&opts.start, "start", "", "contract start date (YYYY-MM-DD)")
	cmd.Flags().Float64Var(&opts.amount, "amount", 0, "monthly rental amount")
	cmd.Flags().StringVar(&opts.rentalType, "type", string(pricing.RentalStarting), "rental type (starting, current)")
	cmd.Flags().IntVar(&opts.escalation, "escalation", 0, "annual escalation percent (0, 5, 10, 15)")
	cmd.Flags().IntVar(&opts.term, "term", 0, "rental term in months")
	cmd.Flags().StringVar(&opts.asOf, "as-of", "", "evaluation date (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format (text, json)")
	cmd.Flags().StringVar(&opts.currency, "currency", "ZAR", "currency label for text output")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("term")
	return cmd
}

func runSettlement(cmd *cobra.Command, logger *zap.Logger, opts *settlementOptions, now time.Time) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unsupported format %q", opts.format)
	}

	start, err := time.Parse(dateLayout, opts.start)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	asOf := now
	if opts.asOf != "" {
		if asOf, err = time.Parse(dateLayout, opts.asOf); err != nil {
			return fmt.Errorf("invalid --as-of: %w", err)
		}
	}

	in := pricing.SettlementInput{
		StartDate:      start,
		RentalAmount:   opts.amount,
		RentalType:     pricing.RentalType(opts.rentalType),
		EscalationRate: opts.escalation,
		RentalTerm:     opts.term,
	}
	if err := in.Validate(); err != nil {
		return fmt.Errorf("invalid settlement: %w", err)
	}

	settlement := pricing.ProjectSettlement(in, asOf)
	logger.Debug("settlement projected",
		zap.Time("as_of", asOf),
		zap.Int("years", len(settlement.Years)),
		zap.Float64("remaining", settlement.RemainingSettlement),
	)

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(settlement)
	}
	return report.WriteSettlement(cmd.OutOrStdout(), settlement, opts.currency)
}
