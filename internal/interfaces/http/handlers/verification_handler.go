package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	app "github.com/veriflowhq/veriflow/internal/application/verification"
	"github.com/veriflowhq/veriflow/internal/domain/risk"
	"github.com/veriflowhq/veriflow/internal/domain/verification"
	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
	"github.com/veriflowhq/veriflow/internal/interfaces/http/middleware"
)

// VerificationService is the application surface the handler depends on.
type VerificationService interface {
	VerifyIndividual(ctx context.Context, sub app.Subject) (*verification.Record, error)
	VerifyCorporate(ctx context.Context, sub app.Subject) (*verification.Record, error)
	VerifyComplete(ctx context.Context, sub app.Subject) (*verification.Record, error)
	GetVerification(ctx context.Context, id uuid.UUID) (*verification.Record, error)
	ListVerifications(ctx context.Context, customerID string, limit int) ([]*verification.Record, error)
}

// VerificationHandler serves the /verifications resource.
type VerificationHandler struct {
	service VerificationService
	logger  logging.Logger
}

// NewVerificationHandler creates the handler.
func NewVerificationHandler(service VerificationService, log logging.Logger) *VerificationHandler {
	return &VerificationHandler{service: service, logger: log}
}

// riskProfileRequest is the optional risk context sent with any flow.
type riskProfileRequest struct {
	CustomerType            string   `json:"customer_type"`
	Occupation              string   `json:"occupation"`
	IndustrySector          string   `json:"industry_sector"`
	IsPEP                   bool     `json:"is_pep"`
	Nationality             string   `json:"nationality"`
	ResidenceCountry        string   `json:"residence_country"`
	TransactionCountries    []string `json:"transaction_countries"`
	ProductType             string   `json:"product_type"`
	ExpectedMonthlyTurnover int64    `json:"expected_monthly_turnover"`
	CashIntensity           string   `json:"cash_intensity"`
	OnboardingChannel       string   `json:"onboarding_channel"`
}

type verifyRequest struct {
	CustomerID string              `json:"customer_id" binding:"required"`
	BankID     string              `json:"bank_id"`
	NationalID string              `json:"national_id"`
	RegistryID string              `json:"registry_id"`
	Risk       *riskProfileRequest `json:"risk_profile"`
}

func (r verifyRequest) subject(clientID string) app.Subject {
	sub := app.Subject{
		CustomerID: r.CustomerID,
		ClientID:   clientID,
		BankID:     r.BankID,
		NationalID: r.NationalID,
		RegistryID: r.RegistryID,
	}
	if r.Risk != nil {
		sub.CustomerType = risk.CustomerType(r.Risk.CustomerType)
		sub.Occupation = r.Risk.Occupation
		sub.IndustrySector = r.Risk.IndustrySector
		sub.IsPEP = r.Risk.IsPEP
		sub.Nationality = r.Risk.Nationality
		sub.ResidenceCountry = r.Risk.ResidenceCountry
		sub.TransactionCountries = r.Risk.TransactionCountries
		sub.ProductType = r.Risk.ProductType
		sub.ExpectedMonthlyTurnover = r.Risk.ExpectedMonthlyTurnover
		sub.CashIntensity = risk.CashIntensity(r.Risk.CashIntensity)
		sub.OnboardingChannel = r.Risk.OnboardingChannel
	}
	return sub
}

// recordResponse is the JSON projection of a verification record.
type recordResponse struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	Type       string `json:"type"`
	Status     string `json:"status"`
	Provider   string `json:"provider"`

	BankIDVerified     bool   `json:"bank_id_verified"`
	NationalIDVerified bool   `json:"national_id_verified"`
	RegistryVerified   bool   `json:"registry_verified"`
	CompanyName        string `json:"company_name,omitempty"`

	CrossValidation *crossValidationResponse `json:"cross_validation,omitempty"`
	Ownership       *ownershipResponse       `json:"ownership,omitempty"`
	Risk            *riskResponse            `json:"risk,omitempty"`

	ErrorCode    string    `json:"error_code,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	ProcessingMS int64     `json:"processing_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

type crossValidationResponse struct {
	OverallMatch   bool     `json:"overall_match"`
	Confidence     int      `json:"confidence"`
	NameMatch      bool     `json:"name_match"`
	DOBMatch       bool     `json:"dob_match"`
	Issues         []string `json:"issues"`
	NormalizedName string   `json:"normalized_name,omitempty"`
	Explanation    string   `json:"explanation"`
}

type beneficialOwnerResponse struct {
	Name       string  `json:"name"`
	Percentage float64 `json:"percentage"`
	Type       string  `json:"type"`
	TraceDepth int     `json:"trace_depth"`
}

type ownershipResponse struct {
	Identified      bool                      `json:"ubo_identified"`
	Owners          []beneficialOwnerResponse `json:"beneficial_owners"`
	TotalPercentage float64                   `json:"total_percentage"`
	TraceDepth      int                       `json:"trace_depth"`
	Issues          []string                  `json:"issues"`
}

type riskResponse struct {
	TotalScore       int            `json:"total_score"`
	Category         string         `json:"category"`
	Breakdown        map[string]int `json:"breakdown"`
	RiskDrivers      []string       `json:"risk_drivers"`
	RequiredActions  []string       `json:"required_actions"`
	CalculationSheet []string       `json:"calculation_sheet"`
}

func toRecordResponse(rec *verification.Record) recordResponse {
	resp := recordResponse{
		ID:                 rec.ID.String(),
		CustomerID:         rec.CustomerID,
		Type:               string(rec.Type),
		Status:             string(rec.Status),
		Provider:           rec.Provider,
		BankIDVerified:     rec.BankIDVerified,
		NationalIDVerified: rec.NationalIDVerified,
		RegistryVerified:   rec.RegistryVerified,
		CompanyName:        rec.CompanyName,
		ErrorCode:          string(rec.ErrorCode),
		ErrorMessage:       rec.ErrorMessage,
		ProcessingMS:       rec.ProcessingTime.Milliseconds(),
		CreatedAt:          rec.CreatedAt,
	}

	if cv := rec.CrossValidation; cv != nil {
		resp.CrossValidation = &crossValidationResponse{
			OverallMatch:   cv.OverallMatch,
			Confidence:     cv.Confidence,
			NameMatch:      cv.NameMatch,
			DOBMatch:       cv.DOBMatch,
			Issues:         cv.Issues,
			NormalizedName: cv.NormalizedName,
			Explanation:    cv.Explanation,
		}
	}
	if own := rec.Ownership; own != nil {
		owners := make([]beneficialOwnerResponse, 0, len(own.Owners))
		for _, o := range own.Owners {
			owners = append(owners, beneficialOwnerResponse{
				Name:       o.Name,
				Percentage: o.Percentage,
				Type:       string(o.Type),
				TraceDepth: o.TraceDepth,
			})
		}
		resp.Ownership = &ownershipResponse{
			Identified:      own.Identified,
			Owners:          owners,
			TotalPercentage: own.TotalPercentage,
			TraceDepth:      own.TraceDepth,
			Issues:          own.Issues,
		}
	}
	if rv := rec.Risk; rv != nil {
		resp.Risk = &riskResponse{
			TotalScore: rv.TotalScore,
			Category:   string(rv.Category),
			Breakdown: map[string]int{
				"customer_profile":     rv.Breakdown.CustomerProfile,
				"geographic_exposure":  rv.Breakdown.GeographicExposure,
				"business_sector":      rv.Breakdown.BusinessSector,
				"pep_influence":        rv.Breakdown.PEPInfluence,
				"product_relationship": rv.Breakdown.ProductRelationship,
				"adverse_media":        rv.Breakdown.AdverseMedia,
			},
			RiskDrivers:      rv.RiskDrivers,
			RequiredActions:  rv.RequiredActions,
			CalculationSheet: rv.CalculationSheet,
		}
	}
	return resp
}

// VerifyIndividual handles POST /api/v1/verifications/individual.
func (h *VerificationHandler) VerifyIndividual(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.BankID == "" || req.NationalID == "" {
		respondBadRequest(c, "bank_id and national_id are required")
		return
	}
	h.run(c, req, h.service.VerifyIndividual)
}

// VerifyCorporate handles POST /api/v1/verifications/corporate.
func (h *VerificationHandler) VerifyCorporate(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.RegistryID == "" {
		respondBadRequest(c, "registry_id is required")
		return
	}
	h.run(c, req, h.service.VerifyCorporate)
}

// VerifyComplete handles POST /api/v1/verifications/complete.
func (h *VerificationHandler) VerifyComplete(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.BankID == "" || req.NationalID == "" {
		respondBadRequest(c, "bank_id and national_id are required")
		return
	}
	h.run(c, req, h.service.VerifyComplete)
}

func (h *VerificationHandler) run(c *gin.Context, req verifyRequest, flow func(context.Context, app.Subject) (*verification.Record, error)) {
	sub := req.subject(middleware.ClientID(c))

	rec, err := flow(c.Request.Context(), sub)
	if err != nil {
		h.logger.Error("verification failed",
			logging.String("customer_id", req.CustomerID),
			logging.Err(err),
		)
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if rec.Status == verification.StatusFailed {
		// The run finished but the subject failed verification; the record
		// carries the reason.
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, toRecordResponse(rec))
}

// Get handles GET /api/v1/verifications/:id.
func (h *VerificationHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid verification id")
		return
	}

	rec, err := h.service.GetVerification(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecordResponse(rec))
}

// List handles GET /api/v1/verifications?customer_id=…&limit=….
func (h *VerificationHandler) List(c *gin.Context) {
	customerID := c.Query("customer_id")
	if customerID == "" {
		respondBadRequest(c, "customer_id query parameter is required")
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			respondBadRequest(c, "limit must be an integer in 1-100")
			return
		}
		limit = parsed
	}

	records, err := h.service.ListVerifications(c.Request.Context(), customerID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordResponse(rec))
	}
	c.JSON(http.StatusOK, gin.H{"verifications": out, "count": len(out)})
}
