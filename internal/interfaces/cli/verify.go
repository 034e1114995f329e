package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	app "github.com/veriflowhq/veriflow/internal/application/verification"
	"github.com/veriflowhq/veriflow/internal/domain/risk"
	"github.com/veriflowhq/veriflow/internal/domain/verification"
	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
	"github.com/veriflowhq/veriflow/internal/infrastructure/providers"
	"github.com/veriflowhq/veriflow/pkg/errors"
)

// memoryRepository lets the CLI run the full orchestrator without a
// database; each invocation starts empty.
type memoryRepository struct {
	mu      sync.Mutex
	records map[uuid.UUID]*verification.Record
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: make(map[uuid.UUID]*verification.Record)}
}

func (m *memoryRepository) Create(_ context.Context, rec *verification.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
	return nil
}

func (m *memoryRepository) Update(_ context.Context, rec *verification.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.ID]; !ok {
		return errors.Newf(errors.CodeVerificationNotFound, "verification %s not found", rec.ID)
	}
	m.records[rec.ID] = rec
	return nil
}

func (m *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*verification.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, errors.Newf(errors.CodeVerificationNotFound, "verification %s not found", id)
	}
	return rec, nil
}

func (m *memoryRepository) ListByCustomer(_ context.Context, customerID string, limit int) ([]*verification.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*verification.Record
	for _, rec := range m.records {
		if rec.CustomerID == customerID {
			out = append(out, rec)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

type verifyOptions struct {
	customerID string
	bankID     string
	nationalID string
	registryID string
	pep        bool
}

func newVerifyCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Run a verification flow against the built-in fixtures",
	}
	cmd.AddCommand(newVerifyIndividualCommand(root))
	cmd.AddCommand(newVerifyCorporateCommand(root))
	cmd.AddCommand(newVerifyCompleteCommand(root))
	return cmd
}

func newOrchestrator() *app.Orchestrator {
	log := logging.NewNop()
	return app.NewOrchestrator(
		providers.NewMockProvider(log),
		newMemoryRepository(),
		risk.NewEngine(risk.DefaultTables()),
		log,
	)
}

func newVerifyIndividualCommand(root *rootOptions) *cobra.Command {
	opts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "individual",
		Short: "Cross-validate a bank ID against a national ID",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := newOrchestrator().VerifyIndividual(cmd.Context(), app.Subject{
				CustomerID: opts.customerID,
				BankID:     opts.bankID,
				NationalID: opts.nationalID,
				IsPEP:      opts.pep,
			})
			if err != nil {
				return err
			}
			return printRecord(cmd, root, rec)
		},
	}

	cmd.Flags().StringVar(&opts.customerID, "customer", "cli", "customer reference")
	cmd.Flags().StringVar(&opts.bankID, "bank-id", "", "11-digit bank verification number")
	cmd.Flags().StringVar(&opts.nationalID, "national-id", "", "11-digit national identity number")
	cmd.Flags().BoolVar(&opts.pep, "pep", false, "treat the customer as politically exposed")
	_ = cmd.MarkFlagRequired("bank-id")
	_ = cmd.MarkFlagRequired("national-id")
	return cmd
}

func newVerifyCorporateCommand(root *rootOptions) *cobra.Command {
	opts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "corporate",
		Short: "Trace beneficial ownership for a registered company",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := newOrchestrator().VerifyCorporate(cmd.Context(), app.Subject{
				CustomerID:   opts.customerID,
				RegistryID:   opts.registryID,
				CustomerType: risk.CustomerCorporate,
			})
			if err != nil {
				return err
			}
			return printRecord(cmd, root, rec)
		},
	}

	cmd.Flags().StringVar(&opts.customerID, "customer", "cli", "customer reference")
	cmd.Flags().StringVar(&opts.registryID, "registry-id", "", "company registry number, e.g. RC123456")
	_ = cmd.MarkFlagRequired("registry-id")
	return cmd
}

func newVerifyCompleteCommand(root *rootOptions) *cobra.Command {
	opts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Run identity cross-validation plus optional ownership tracing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec, err := newOrchestrator().VerifyComplete(cmd.Context(), app.Subject{
				CustomerID: opts.customerID,
				BankID:     opts.bankID,
				NationalID: opts.nationalID,
				RegistryID: opts.registryID,
				IsPEP:      opts.pep,
			})
			if err != nil {
				return err
			}
			return printRecord(cmd, root, rec)
		},
	}

	cmd.Flags().StringVar(&opts.customerID, "customer", "cli", "customer reference")
	cmd.Flags().StringVar(&opts.bankID, "bank-id", "", "11-digit bank verification number")
	cmd.Flags().StringVar(&opts.nationalID, "national-id", "", "11-digit national identity number")
	cmd.Flags().StringVar(&opts.registryID, "registry-id", "", "optional company registry number")
	cmd.Flags().BoolVar(&opts.pep, "pep", false, "treat the customer as politically exposed")
	_ = cmd.MarkFlagRequired("bank-id")
	_ = cmd.MarkFlagRequired("national-id")
	return cmd
}

func printRecord(cmd *cobra.Command, root *rootOptions, rec *verification.Record) error {
	if root.output == "json" {
		return printJSON(cmd.OutOrStdout(), rec)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Verification %s\n", rec.ID)
	fmt.Fprintf(out, "Status: %s\n", rec.Status)
	if rec.Status == verification.StatusFailed {
		fmt.Fprintf(out, "Failure: [%s] %s\n", rec.ErrorCode, rec.ErrorMessage)
	}

	if cv := rec.CrossValidation; cv != nil {
		fmt.Fprintf(out, "\nIdentity cross-validation\n")
		fmt.Fprintf(out, "  Match: %t (confidence %d)\n", cv.OverallMatch, cv.Confidence)
		fmt.Fprintf(out, "  %s\n", cv.Explanation)
		for _, issue := range cv.Issues {
			fmt.Fprintf(out, "  issue: %s\n", issue)
		}
	}

	if own := rec.Ownership; own != nil {
		fmt.Fprintf(out, "\nBeneficial ownership (%s traced %.1f%%)\n", rec.CompanyName, own.TotalPercentage)
		for _, owner := range own.Owners {
			fmt.Fprintf(out, "  %-40s %6.2f%%  %s (depth %d)\n", owner.Name, owner.Percentage, owner.Type, owner.TraceDepth)
		}
		for _, issue := range own.Issues {
			fmt.Fprintf(out, "  issue: %s\n", issue)
		}
	}

	if rv := rec.Risk; rv != nil {
		fmt.Fprintf(out, "\nRisk: %d/30 (%s)\n", rv.TotalScore, rv.Category)
		fmt.Fprintf(out, "%s\n", strings.Join(rv.CalculationSheet, "\n"))
		for _, action := range rv.RequiredActions {
			fmt.Fprintf(out, "  action: %s\n", action)
		}
	}
	return nil
}
