package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veriflowhq/veriflow/internal/domain/risk"
)

type riskOptions struct {
	customerType         string
	occupation           string
	sector               string
	pep                  bool
	nationality          string
	residence            string
	transactionCountries []string
	turnover             int64
	cashIntensity        string
	productType          string
}

func newRiskCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Risk scoring utilities",
	}
	cmd.AddCommand(newRiskScoreCommand(root))
	return cmd
}

func newRiskScoreCommand(root *rootOptions) *cobra.Command {
	opts := &riskOptions{}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a customer profile on the 1-30 scale",
		Long:  "Score a customer profile with the default regulatory tables and print the full calculation sheet.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine := risk.NewEngine(risk.DefaultTables())
			verdict := engine.CalculateRisk(risk.Factors{
				CustomerType:            risk.CustomerType(strings.ToUpper(opts.customerType)),
				Occupation:              opts.occupation,
				IndustrySector:          opts.sector,
				IsPEP:                   opts.pep,
				Nationality:             opts.nationality,
				ResidenceCountry:        opts.residence,
				TransactionCountries:    opts.transactionCountries,
				ProductType:             opts.productType,
				ExpectedMonthlyTurnover: opts.turnover,
				CashIntensity:           risk.CashIntensity(strings.ToUpper(opts.cashIntensity)),
			})

			if root.output == "json" {
				return printJSON(cmd.OutOrStdout(), verdict)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, strings.Join(verdict.CalculationSheet, "\n"))
			fmt.Fprintf(out, "Category: %s\n", verdict.Category)
			for _, driver := range verdict.RiskDrivers {
				fmt.Fprintf(out, "  driver: %s\n", driver)
			}
			for _, action := range verdict.RequiredActions {
				fmt.Fprintf(out, "  action: %s\n", action)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.customerType, "type", "INDIVIDUAL", "customer type: INDIVIDUAL, CORPORATE, NGO, GOVERNMENT")
	cmd.Flags().StringVar(&opts.occupation, "occupation", "", "occupation or business sector key, e.g. SALARY_EARNER")
	cmd.Flags().StringVar(&opts.sector, "sector", "", "industry sector for corporate customers")
	cmd.Flags().BoolVar(&opts.pep, "pep", false, "politically exposed person")
	cmd.Flags().StringVar(&opts.nationality, "nationality", "", "customer nationality")
	cmd.Flags().StringVar(&opts.residence, "residence", "", "country of residence")
	cmd.Flags().StringSliceVar(&opts.transactionCountries, "transaction-countries", nil, "countries the customer transacts with")
	cmd.Flags().Int64Var(&opts.turnover, "turnover", 0, "expected monthly turnover in NGN")
	cmd.Flags().StringVar(&opts.cashIntensity, "cash-intensity", "", "expected cash intensity: LOW, MEDIUM, HIGH")
	cmd.Flags().StringVar(&opts.productType, "product", "", "product type being onboarded")
	return cmd
}
