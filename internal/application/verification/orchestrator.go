package verification

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/veriflowhq/veriflow/internal/domain/identity"
	"github.com/veriflowhq/veriflow/internal/domain/ownership"
	"github.com/veriflowhq/veriflow/internal/domain/risk"
	domain "github.com/veriflowhq/veriflow/internal/domain/verification"
	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
	"github.com/veriflowhq/veriflow/internal/infrastructure/providers"
	"github.com/veriflowhq/veriflow/pkg/errors"
)

// Subject is the customer-supplied input to a verification run.
type Subject struct {
	CustomerID string
	ClientID   string

	BankID     string
	NationalID string
	RegistryID string

	CustomerType            risk.CustomerType
	Occupation              string
	IndustrySector          string
	IsPEP                   bool
	Nationality             string
	ResidenceCountry        string
	TransactionCountries    []string
	ProductType             string
	ExpectedMonthlyTurnover int64
	CashIntensity           risk.CashIntensity
	OnboardingChannel       string
}

// Orchestrator runs the verification flows. The engines it drives are pure;
// all I/O (provider calls, persistence, side channels) happens here.
type Orchestrator struct {
	provider  providers.Provider
	validator *identity.Validator
	analyzer  *ownership.Analyzer
	engine    *risk.Engine
	repo      domain.Repository

	audit    AuditPublisher
	graph    GraphWriter
	evidence EvidenceArchiver
	index    VerdictIndexer

	logger logging.Logger
}

// Option wires an optional side channel into the orchestrator.
type Option func(*Orchestrator)

func WithAuditPublisher(p AuditPublisher) Option {
	return func(o *Orchestrator) { o.audit = p }
}

func WithGraphWriter(w GraphWriter) Option {
	return func(o *Orchestrator) { o.graph = w }
}

func WithEvidenceArchiver(a EvidenceArchiver) Option {
	return func(o *Orchestrator) { o.evidence = a }
}

func WithVerdictIndexer(i VerdictIndexer) Option {
	return func(o *Orchestrator) { o.index = i }
}

func NewOrchestrator(
	provider providers.Provider,
	repo domain.Repository,
	engine *risk.Engine,
	log logging.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		provider:  provider,
		validator: identity.NewValidator(),
		analyzer:  ownership.NewAnalyzer(),
		engine:    engine,
		repo:      repo,
		logger:    log,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// VerifyIndividual cross-validates the subject's bank and national identity
// records and scores the customer. Provider business failures (bad format,
// record not found) terminate the record as FAILED without a Go error;
// transport failures return the error as well.
func (o *Orchestrator) VerifyIndividual(ctx context.Context, sub Subject) (*domain.Record, error) {
	start := time.Now()
	rec := domain.NewRecord(sub.CustomerID, sub.ClientID, domain.TypeIndividual, o.provider.Name())
	rec.Start()
	if err := o.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	o.logger.Info("individual verification started",
		logging.String("verification_id", rec.ID.String()),
		logging.String("customer_id", sub.CustomerID))

	var (
		bank     providers.BankIDResult
		national providers.NationalIDResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bank, err = o.provider.VerifyBankID(gctx, sub.BankID)
		return err
	})
	g.Go(func() error {
		var err error
		national, err = o.provider.VerifyNationalID(gctx, sub.NationalID)
		return err
	})
	if err := g.Wait(); err != nil {
		o.failRecord(ctx, rec, errors.GetCode(err), err.Error())
		return rec, err
	}

	if !bank.Success || !national.Success {
		code, msg := identityFailure(bank, national)
		o.failRecord(ctx, rec, code, msg)
		return rec, nil
	}

	o.applyIdentity(rec, bank, national)

	verdict := o.engine.CalculateRisk(o.baseFactors(sub))
	rec.Risk = &verdict

	o.archive(ctx, rec.ID, "bank_id.json", bank.Raw)
	o.archive(ctx, rec.ID, "national_id.json", national.Raw)

	rec.Complete(time.Since(start))
	if err := o.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	o.afterCompletion(ctx, rec)
	return rec, nil
}

// VerifyCorporate looks up the subject's registry record, traces beneficial
// ownership through corporate shareholders up to the depth limit, and scores
// the entity.
func (o *Orchestrator) VerifyCorporate(ctx context.Context, sub Subject) (*domain.Record, error) {
	start := time.Now()
	rec := domain.NewRecord(sub.CustomerID, sub.ClientID, domain.TypeCorporate, o.provider.Name())
	rec.Start()
	if err := o.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	o.logger.Info("corporate verification started",
		logging.String("verification_id", rec.ID.String()),
		logging.String("registry_id", sub.RegistryID))

	registry, err := o.provider.LookupRegistry(ctx, sub.RegistryID)
	if err != nil {
		o.failRecord(ctx, rec, errors.GetCode(err), err.Error())
		return rec, err
	}
	if !registry.Success {
		o.failRecord(ctx, rec, registry.ErrorCode, registry.ErrorMessage)
		return rec, nil
	}

	analysis, traced := o.traceOwnership(ctx, registry)
	o.applyRegistry(rec, registry, analysis)

	verdict := o.engine.CalculateRisk(o.corporateFactors(sub, registry, analysis))
	rec.Risk = &verdict

	o.archive(ctx, rec.ID, "registry.json", registry.Raw)
	for _, extra := range traced {
		o.archive(ctx, rec.ID, "registry_"+extra.RegistryID+".json", extra.Raw)
	}
	o.saveGraph(ctx, rec.ID, registry.Record, analysis)

	rec.Complete(time.Since(start))
	if err := o.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	o.afterCompletion(ctx, rec)
	return rec, nil
}

// VerifyComplete runs the individual and corporate checks in one pass. The
// registry lookup is skipped when the subject has no registry identifier.
// Unsuccessful lookups leave their section unverified rather than failing
// the record, matching how onboarding reviews treat partially available
// evidence.
func (o *Orchestrator) VerifyComplete(ctx context.Context, sub Subject) (*domain.Record, error) {
	start := time.Now()
	rec := domain.NewRecord(sub.CustomerID, sub.ClientID, domain.TypeComplete, o.provider.Name())
	rec.Start()
	if err := o.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	var (
		bank     providers.BankIDResult
		national providers.NationalIDResult
		registry providers.RegistryResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bank, err = o.provider.VerifyBankID(gctx, sub.BankID)
		return err
	})
	g.Go(func() error {
		var err error
		national, err = o.provider.VerifyNationalID(gctx, sub.NationalID)
		return err
	})
	if sub.RegistryID != "" {
		g.Go(func() error {
			var err error
			registry, err = o.provider.LookupRegistry(gctx, sub.RegistryID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		o.failRecord(ctx, rec, errors.GetCode(err), err.Error())
		return rec, err
	}

	if bank.Success && national.Success {
		o.applyIdentity(rec, bank, national)
		o.archive(ctx, rec.ID, "bank_id.json", bank.Raw)
		o.archive(ctx, rec.ID, "national_id.json", national.Raw)
	}

	factors := o.baseFactors(sub)
	if registry.Success {
		analysis, traced := o.traceOwnership(ctx, registry)
		o.applyRegistry(rec, registry, analysis)
		factors = o.corporateFactors(sub, registry, analysis)

		o.archive(ctx, rec.ID, "registry.json", registry.Raw)
		for _, extra := range traced {
			o.archive(ctx, rec.ID, "registry_"+extra.RegistryID+".json", extra.Raw)
		}
		o.saveGraph(ctx, rec.ID, registry.Record, analysis)
	}

	verdict := o.engine.CalculateRisk(factors)
	rec.Risk = &verdict

	rec.Complete(time.Since(start))
	if err := o.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	o.afterCompletion(ctx, rec)
	return rec, nil
}

// GetVerification loads a stored verification record.
func (o *Orchestrator) GetVerification(ctx context.Context, id uuid.UUID) (*domain.Record, error) {
	return o.repo.GetByID(ctx, id)
}

// ListVerifications returns a customer's verification history, newest first.
func (o *Orchestrator) ListVerifications(ctx context.Context, customerID string, limit int) ([]*domain.Record, error) {
	return o.repo.ListByCustomer(ctx, customerID, limit)
}

// traceOwnership analyzes the root registry record, then resolves each
// corporate shareholder flagged for tracing by fetching its registry record
// and re-running the analyzer one layer deeper with the root on the visited
// path. Traced owners are merged with their effective percentage (parent
// share x sub share); fetch failures keep the tracing issue in place for
// manual review.
func (o *Orchestrator) traceOwnership(ctx context.Context, registry providers.RegistryResult) (ownership.Analysis, []providers.RegistryResult) {
	merged := o.analyzer.Analyze(registry.Record, 1, nil)
	visited := ownership.NewVisited(registry.Record.RegistryID)

	var fetched []providers.RegistryResult
	for _, party := range registry.Record.Parties {
		if !party.IsCorporate || party.RegistryID == "" {
			continue
		}
		issue := "corporate_shareholder_requires_tracing:" + party.Name
		if !containsString(merged.Issues, issue) {
			continue
		}

		sub, err := o.provider.LookupRegistry(ctx, party.RegistryID)
		if err != nil || !sub.Success {
			o.logger.Warn("corporate shareholder trace failed",
				logging.String("registry_id", party.RegistryID),
				logging.Err(err))
			continue
		}
		fetched = append(fetched, sub)

		subAnalysis := o.analyzer.Analyze(sub.Record, 2, visited)
		merged = mergeTrace(merged, party, subAnalysis)
	}

	total := 0.0
	for _, owner := range merged.Owners {
		total += owner.Percentage
	}
	merged.TotalPercentage = total
	merged.Identified = total >= ownership.ControlThreshold && len(merged.Owners) > 0
	return merged, fetched
}

// mergeTrace folds a second-layer analysis into the root one. The traced
// party's pending issue is removed, its sub-owners join with an effective
// share of parent% x sub%, and sub-layer issues are carried up so nothing
// the trace found is hidden from review.
func mergeTrace(root ownership.Analysis, party ownership.Party, sub ownership.Analysis) ownership.Analysis {
	parentShare := 0.0
	if party.Percentage != nil {
		parentShare = *party.Percentage
	}

	issues := make([]string, 0, len(root.Issues)+len(sub.Issues))
	pending := "corporate_shareholder_requires_tracing:" + party.Name
	for _, issue := range root.Issues {
		if issue != pending {
			issues = append(issues, issue)
		}
	}
	for _, issue := range sub.Issues {
		if !strings.HasPrefix(issue, "incomplete_ownership_structure:") {
			issues = append(issues, issue)
		}
	}

	owners := append([]ownership.BeneficialOwner{}, root.Owners...)
	for _, owner := range sub.Owners {
		owner.Percentage = parentShare * owner.Percentage / 100
		owners = append(owners, owner)
	}

	merged := root
	merged.Owners = owners
	merged.Issues = issues
	if sub.TraceDepth > merged.TraceDepth {
		merged.TraceDepth = sub.TraceDepth
	}
	return merged
}

func (o *Orchestrator) applyIdentity(rec *domain.Record, bank providers.BankIDResult, national providers.NationalIDResult) {
	rec.BankIDVerified = true
	rec.BankName = bank.FullName
	rec.BankDOB = bank.DateOfBirth
	rec.BankPhone = bank.Phone
	rec.NationalIDVerified = true
	rec.NationalName = national.FullName
	rec.NationalDOB = national.DateOfBirth
	rec.NationalAddress = national.Address

	verdict := o.validator.Validate(bank.IdentityRecord(), national.IdentityRecord())
	rec.CrossValidation = &verdict
}

func (o *Orchestrator) applyRegistry(rec *domain.Record, registry providers.RegistryResult, analysis ownership.Analysis) {
	rec.RegistryVerified = true
	rec.CompanyName = registry.Record.Name
	rec.RegistryStatus = registry.Record.Status
	rec.IncorporationDate = registry.Record.IncorporationDate
	rec.Ownership = &analysis
}

// baseFactors maps subject facts common to every flow.
func (o *Orchestrator) baseFactors(sub Subject) risk.Factors {
	return risk.Factors{
		CustomerType:            sub.CustomerType,
		Occupation:              sub.Occupation,
		IndustrySector:          sub.IndustrySector,
		IsPEP:                   sub.IsPEP,
		Nationality:             sub.Nationality,
		ResidenceCountry:        sub.ResidenceCountry,
		TransactionCountries:    sub.TransactionCountries,
		ProductType:             sub.ProductType,
		ExpectedMonthlyTurnover: sub.ExpectedMonthlyTurnover,
		CashIntensity:           sub.CashIntensity,
		OnboardingChannel:       sub.OnboardingChannel,
	}
}

// corporateFactors extends the base factors with the registry structure and
// the ownership analysis outcome.
func (o *Orchestrator) corporateFactors(sub Subject, registry providers.RegistryResult, analysis ownership.Analysis) risk.Factors {
	f := o.baseFactors(sub)
	f.RegisteredEntityKind = registry.Record.Kind.String()
	f.DirectorsCount = len(registry.Directors)
	f.ShareholdersCount = len(registry.Record.Parties)
	f.UBOCount = len(analysis.Owners)

	for _, d := range registry.Directors {
		switch strings.ToUpper(d.Status) {
		case "RESIGNED", "REMOVED":
			f.InactiveDirectorsCount++
		}
		if d.Email == "" && d.Phone == "" {
			f.DirectorsMissingContacts++
		}
	}
	for _, party := range registry.Record.Parties {
		if party.IsCorporate {
			f.CorporateShareholdersCount++
		}
		if party.Percentage != nil && *party.Percentage > f.OwnershipConcentration {
			f.OwnershipConcentration = *party.Percentage
		}
	}
	for _, issue := range analysis.Issues {
		if strings.HasPrefix(issue, "incomplete_ownership_structure:") {
			f.HasIncompleteOwnership = true
		}
	}
	return f
}

func (o *Orchestrator) failRecord(ctx context.Context, rec *domain.Record, code errors.ErrorCode, message string) {
	rec.Fail(code, message)
	if err := o.repo.Update(ctx, rec); err != nil {
		o.logger.Error("failed to persist failed verification",
			logging.String("verification_id", rec.ID.String()),
			logging.Err(err))
	}
}

// afterCompletion runs the best-effort side channels. None of them may fail
// the verification itself.
func (o *Orchestrator) afterCompletion(ctx context.Context, rec *domain.Record) {
	if o.audit != nil {
		if err := o.audit.PublishVerificationCompleted(ctx, rec); err != nil {
			o.logger.Warn("audit publish failed",
				logging.String("verification_id", rec.ID.String()),
				logging.Err(err))
		}
	}
	if o.index != nil {
		if err := o.index.Index(ctx, rec); err != nil {
			o.logger.Warn("verdict indexing failed",
				logging.String("verification_id", rec.ID.String()),
				logging.Err(err))
		}
	}
}

func (o *Orchestrator) archive(ctx context.Context, id uuid.UUID, name string, payload any) {
	if o.evidence == nil || payload == nil {
		return
	}
	if err := o.evidence.Archive(ctx, id, name, payload); err != nil {
		o.logger.Warn("evidence archive failed",
			logging.String("verification_id", id.String()),
			logging.String("artifact", name),
			logging.Err(err))
	}
}

func (o *Orchestrator) saveGraph(ctx context.Context, id uuid.UUID, rec ownership.RegistryRecord, analysis ownership.Analysis) {
	if o.graph == nil {
		return
	}
	if err := o.graph.SaveOwnership(ctx, id, rec, analysis); err != nil {
		o.logger.Warn("ownership graph persist failed",
			logging.String("verification_id", id.String()),
			logging.Err(err))
	}
}

// identityFailure picks the error to surface when one side of the identity
// pair failed; the bank result wins ties.
func identityFailure(bank providers.BankIDResult, national providers.NationalIDResult) (errors.ErrorCode, string) {
	if !bank.Success && bank.ErrorCode != "" {
		return bank.ErrorCode, bank.ErrorMessage
	}
	return national.ErrorCode, national.ErrorMessage
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
