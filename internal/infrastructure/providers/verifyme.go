package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/veriflowhq/veriflow/internal/domain/ownership"
	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
	"github.com/veriflowhq/veriflow/pkg/errors"
)

// VerifyMeProvider calls the VerifyMe.ng verification API using the
// Authorization: Bearer <secret> scheme. Validation rejections from the API
// (4xx) are returned as unsuccessful results; transport failures and 5xx
// responses are returned as errors for the caller to handle.
type VerifyMeProvider struct {
	baseURL string
	secret  string
	client  *http.Client
	logger  logging.Logger
}

// VerifyMeConfig configures the live provider client.
type VerifyMeConfig struct {
	BaseURL string
	Secret  string
	Timeout time.Duration
}

func NewVerifyMeProvider(cfg VerifyMeConfig, log logging.Logger) *VerifyMeProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &VerifyMeProvider{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		secret:  cfg.Secret,
		client:  &http.Client{Timeout: timeout},
		logger:  log,
	}
}

func (p *VerifyMeProvider) Name() string { return "verifyme" }

// envelope is the standard VerifyMe.ng response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (p *VerifyMeProvider) VerifyBankID(ctx context.Context, bankID string) (BankIDResult, error) {
	if !validIDFormat(bankID) {
		return BankIDResult{
			BankID:       bankID,
			ErrorCode:    errors.CodeInvalidBankID,
			ErrorMessage: "bank verification number must be exactly 11 digits",
		}, nil
	}

	data, callErr := p.post(ctx, "/verifications/identity/bvn", map[string]string{"bvn": bankID})
	if callErr != nil {
		if errors.IsCode(callErr, errors.CodeBankIDNotFound) {
			return BankIDResult{
				BankID:       bankID,
				ErrorCode:    errors.CodeBankIDNotFound,
				ErrorMessage: callErr.Error(),
			}, nil
		}
		return BankIDResult{}, callErr
	}

	var body struct {
		FullName    string `json:"fullName"`
		FirstName   string `json:"firstName"`
		MiddleName  string `json:"middleName"`
		LastName    string `json:"lastName"`
		DateOfBirth string `json:"dateOfBirth"`
		PhoneNumber string `json:"phoneNumber"`
		Gender      string `json:"gender"`
	}
	raw, err := decodePayload(data, &body)
	if err != nil {
		return BankIDResult{}, err
	}

	return BankIDResult{
		Success:     true,
		BankID:      bankID,
		FullName:    body.FullName,
		FirstName:   body.FirstName,
		MiddleName:  body.MiddleName,
		LastName:    body.LastName,
		DateOfBirth: body.DateOfBirth,
		Phone:       body.PhoneNumber,
		Gender:      body.Gender,
		Raw:         raw,
	}, nil
}

func (p *VerifyMeProvider) VerifyNationalID(ctx context.Context, nationalID string) (NationalIDResult, error) {
	if !validIDFormat(nationalID) {
		return NationalIDResult{
			NationalID:   nationalID,
			ErrorCode:    errors.CodeInvalidNationalID,
			ErrorMessage: "national identification number must be exactly 11 digits",
		}, nil
	}

	data, callErr := p.post(ctx, "/verifications/identity/nin", map[string]string{"nin": nationalID})
	if callErr != nil {
		if errors.IsCode(callErr, errors.CodeNationalIDNotFound) {
			return NationalIDResult{
				NationalID:   nationalID,
				ErrorCode:    errors.CodeNationalIDNotFound,
				ErrorMessage: callErr.Error(),
			}, nil
		}
		return NationalIDResult{}, callErr
	}

	var body struct {
		FullName      string `json:"fullName"`
		FirstName     string `json:"firstName"`
		MiddleName    string `json:"middleName"`
		LastName      string `json:"lastName"`
		DateOfBirth   string `json:"dateOfBirth"`
		Gender        string `json:"gender"`
		Address       string `json:"address"`
		StateOfOrigin string `json:"stateOfOrigin"`
		LGA           string `json:"lga"`
	}
	raw, err := decodePayload(data, &body)
	if err != nil {
		return NationalIDResult{}, err
	}

	return NationalIDResult{
		Success:       true,
		NationalID:    nationalID,
		FullName:      body.FullName,
		FirstName:     body.FirstName,
		MiddleName:    body.MiddleName,
		LastName:      body.LastName,
		DateOfBirth:   body.DateOfBirth,
		Gender:        body.Gender,
		Address:       body.Address,
		StateOfOrigin: body.StateOfOrigin,
		LGA:           body.LGA,
		Raw:           raw,
	}, nil
}

func (p *VerifyMeProvider) LookupRegistry(ctx context.Context, registryID string) (RegistryResult, error) {
	if len(registryID) < 5 {
		return RegistryResult{
			RegistryID:   registryID,
			ErrorCode:    errors.CodeRegistryNotFound,
			ErrorMessage: "invalid registry number format",
		}, nil
	}

	data, callErr := p.post(ctx, "/verifications/business/cac", map[string]string{"rc_number": registryID})
	if callErr != nil {
		if errors.IsCode(callErr, errors.CodeRegistryNotFound) {
			return RegistryResult{
				RegistryID:   registryID,
				ErrorCode:    errors.CodeRegistryNotFound,
				ErrorMessage: callErr.Error(),
			}, nil
		}
		return RegistryResult{}, callErr
	}

	var body struct {
		CompanyName       string  `json:"companyName"`
		CompanyType       string  `json:"companyType"`
		Status            string  `json:"status"`
		IncorporationDate string  `json:"incorporationDate"`
		RegisteredAddress string  `json:"registeredAddress"`
		ShareCapital      float64 `json:"shareCapital"`
		Directors         []struct {
			Name            string `json:"name"`
			Position        string `json:"position"`
			AppointmentDate string `json:"appointmentDate"`
			Status          string `json:"status"`
			Email           string `json:"email"`
			Phone           string `json:"phone"`
		} `json:"directors"`
		Shareholders []struct {
			Name       string  `json:"name"`
			Percentage float64 `json:"percentage"`
			Type       string  `json:"type"`
			RCNumber   string  `json:"rc_number"`
		} `json:"shareholders"`
	}
	raw, err := decodePayload(data, &body)
	if err != nil {
		return RegistryResult{}, err
	}

	kind := entityKindOf(body.CompanyType)
	parties := make([]ownership.Party, 0, len(body.Shareholders))
	for _, s := range body.Shareholders {
		pct := s.Percentage
		parties = append(parties, ownership.Party{
			Name:        s.Name,
			Kind:        partyKindOf(kind),
			Percentage:  &pct,
			IsCorporate: strings.EqualFold(s.Type, "CORPORATE"),
			RegistryID:  s.RCNumber,
		})
	}

	directors := make([]Director, 0, len(body.Directors))
	for _, d := range body.Directors {
		position := d.Position
		if position == "" {
			position = "Director"
		}
		directors = append(directors, Director{
			Name:            d.Name,
			Position:        position,
			AppointmentDate: d.AppointmentDate,
			Status:          d.Status,
			Email:           d.Email,
			Phone:           d.Phone,
		})
	}

	return RegistryResult{
		Success:    true,
		RegistryID: registryID,
		Record: ownership.RegistryRecord{
			RegistryID:        registryID,
			Name:              body.CompanyName,
			Kind:              kind,
			Status:            body.Status,
			IncorporationDate: body.IncorporationDate,
			Address:           body.RegisteredAddress,
			Parties:           parties,
		},
		Directors:    directors,
		ShareCapital: body.ShareCapital,
		Raw:          raw,
	}, nil
}

// post issues one API call and unwraps the response envelope. 4xx responses
// map to the not-found code for the endpoint, 5xx to CodeProviderUnavailable
// and timeouts to CodeProviderTimeout.
func (p *VerifyMeProvider) post(ctx context.Context, endpoint string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "encode provider request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "build provider request")
	}
	req.Header.Set("Authorization", "Bearer "+p.secret)
	req.Header.Set("Content-Type", "application/json")

	p.logger.Debug("calling verification provider", logging.String("endpoint", endpoint))

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(err, errors.CodeProviderTimeout, "provider request cancelled")
		}
		return nil, errors.Wrap(err, errors.CodeProviderUnavailable, "provider unreachable")
	}
	defer resp.Body.Close()

	var env envelope
	if decodeErr := json.NewDecoder(resp.Body).Decode(&env); decodeErr != nil && resp.StatusCode == http.StatusOK {
		return nil, errors.Wrap(decodeErr, errors.CodeSerialization, "decode provider response")
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return env.Data, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		message := env.Message
		if message == "" {
			message = "verification rejected"
		}
		return nil, errors.New(notFoundCodeFor(endpoint), message)
	default:
		p.logger.Warn("provider server error",
			logging.String("endpoint", endpoint),
			logging.Int("status", resp.StatusCode))
		return nil, errors.Newf(errors.CodeProviderUnavailable,
			"provider returned status %d", resp.StatusCode)
	}
}

func notFoundCodeFor(endpoint string) errors.ErrorCode {
	switch {
	case strings.HasSuffix(endpoint, "/bvn"):
		return errors.CodeBankIDNotFound
	case strings.HasSuffix(endpoint, "/nin"):
		return errors.CodeNationalIDNotFound
	default:
		return errors.CodeRegistryNotFound
	}
}

// decodePayload unmarshals the envelope data twice: once into the typed
// shape and once into a generic map kept as raw evidence.
func decodePayload(data json.RawMessage, dest any) (map[string]any, error) {
	if len(data) == 0 {
		return nil, errors.New(errors.CodeSerialization, "empty provider payload")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "decode provider payload")
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, errors.CodeSerialization, "decode provider payload")
	}
	return raw, nil
}

func entityKindOf(companyType string) ownership.EntityKind {
	t := strings.ToUpper(companyType)
	switch {
	case strings.Contains(t, "PUBLIC") || strings.Contains(t, "PLC"):
		return ownership.KindPLC
	case strings.Contains(t, "BUSINESS"):
		return ownership.KindBusinessName
	case strings.Contains(t, "TRUSTEE") || strings.Contains(t, "NGO"):
		return ownership.KindIncorporatedTrustees
	default:
		return ownership.KindLimited
	}
}

func partyKindOf(kind ownership.EntityKind) ownership.PartyKind {
	switch kind {
	case ownership.KindBusinessName:
		return ownership.PartyProprietor
	case ownership.KindIncorporatedTrustees:
		return ownership.PartyTrustee
	default:
		return ownership.PartyShareholder
	}
}
