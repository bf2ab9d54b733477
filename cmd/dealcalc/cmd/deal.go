package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Simplici0/dealcost/internal/db"
	"github.com/Simplici0/dealcost/internal/migrations"
	"github.com/Simplici0/dealcost/internal/pricing"
	"github.com/Simplici0/dealcost/internal/pricingconfig"
	"github.com/Simplici0/dealcost/internal/report"
	"github.com/Simplici0/dealcost/internal/store"
)

// dealFile is the on-disk shape of a deal. JSON files decode too, since
// JSON is valid YAML.
type dealFile struct {
	Role              string             `yaml:"role"`
	Term              int                `yaml:"term"`
	Escalation        int                `yaml:"escalation"`
	Distance          float64            `yaml:"distance"`
	Hardware          []pricing.LineItem `yaml:"hardware"`
	Connectivity      []pricing.LineItem `yaml:"connectivity"`
	Licensing         []pricing.LineItem `yaml:"licensing"`
	CustomGrossProfit *float64           `yaml:"custom_gross_profit"`
}

type dealOptions struct {
	pricingFile string
	dbPath      string
	dealFile    string
	format      string
	currency    string
}

func newDealCmd(root *rootOptions) *cobra.Command {
	opts := &dealOptions{}

	cmd := &cobra.Command{
		Use:   "deal",
		Short: "Price a deal",
		Long: `Price a deal described in a YAML or JSON file.

Pricing comes from the built-in defaults, optionally overridden by --pricing,
or from a server database with --db.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeal(cmd, root.logger, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.pricingFile, "pricing", "p", "", "pricing config override file")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "read pricing config from this SQLite database")
	cmd.Flags().StringVarP(&opts.dealFile, "deal", "d", "", "deal file (YAML or JSON)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "output format (text, json)")
	cmd.Flags().StringVar(&opts.currency, "currency", "ZAR", "currency label for text output")
	_ = cmd.MarkFlagRequired("deal")
	cmd.MarkFlagsMutuallyExclusive("pricing", "db")
	return cmd
}

func runDeal(cmd *cobra.Command, logger *zap.Logger, opts *dealOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unsupported format %q", opts.format)
	}

	in, err := readDeal(opts.dealFile)
	if err != nil {
		return err
	}

	scales, factors, err := loadPricing(cmd, logger, opts)
	if err != nil {
		return err
	}

	totals, err := pricing.CalculateAllTotals(in, scales, factors)
	if err != nil {
		return fmt.Errorf("calculate deal: %w", err)
	}
	logger.Debug("deal priced",
		zap.String("role", string(in.Role)),
		zap.Float64("total_mrc", totals.TotalMRC),
		zap.Int("finance_fee_iterations", totals.FinanceFeeIterations),
	)
	if !totals.FinanceFeeConverged() {
		logger.Warn("finance fee did not converge", zap.Float64("actual_settlement", totals.ActualSettlement))
	}

	if opts.format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(totals)
	}
	return report.WriteDeal(cmd.OutOrStdout(), totals, opts.currency)
}

func readDeal(path string) (pricing.DealInput, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return pricing.DealInput{}, fmt.Errorf("read deal file: %w", err)
	}

	var f dealFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return pricing.DealInput{}, fmt.Errorf("parse %s: %w", path, err)
	}

	role, err := pricing.ParseRole(f.Role)
	if err != nil {
		return pricing.DealInput{}, err
	}
	in := pricing.DealInput{
		Hardware:          f.Hardware,
		Connectivity:      f.Connectivity,
		Licensing:         f.Licensing,
		Term:              f.Term,
		Escalation:        f.Escalation,
		Distance:          f.Distance,
		Role:              role,
		CustomGrossProfit: f.CustomGrossProfit,
	}
	if err := in.Validate(); err != nil {
		return pricing.DealInput{}, fmt.Errorf("invalid deal: %w", err)
	}
	return in, nil
}

func loadPricing(cmd *cobra.Command, logger *zap.Logger, opts *dealOptions) (pricing.Scales, pricing.FactorSheet, error) {
	if opts.dbPath == "" {
		doc, err := pricingconfig.Load(opts.pricingFile)
		if err != nil {
			return pricing.Scales{}, pricing.FactorSheet{}, fmt.Errorf("load pricing config: %w", err)
		}
		logger.Debug("pricing config loaded", zap.String("version", doc.Version), zap.String("override", opts.pricingFile))
		return pricingconfig.Compile(doc)
	}

	ctx := cmd.Context()
	database, err := db.Open(ctx, opts.dbPath)
	if err != nil {
		return pricing.Scales{}, pricing.FactorSheet{}, err
	}
	defer database.Close()

	if err := migrations.Up(ctx, database, logger); err != nil {
		return pricing.Scales{}, pricing.FactorSheet{}, fmt.Errorf("run migrations: %w", err)
	}
	logger.Debug("pricing config loaded", zap.String("db", opts.dbPath))
	return store.New(database).Compiled(ctx)
}
