package providers

import (
	"context"
	"strings"

	"github.com/veriflowhq/veriflow/internal/domain/ownership"
	"github.com/veriflowhq/veriflow/internal/infrastructure/monitoring/logging"
	"github.com/veriflowhq/veriflow/pkg/errors"
)

// Well-known mock identifiers. The pair ValidBankID/ValidNationalID resolves
// to the same person under different name formatting, exercising the
// surname-first normalization; the Mismatch pair resolves to two unrelated
// formattings of another person.
const (
	ValidBankID     = "22123456789"
	ValidNationalID = "12345678901"

	MismatchBankID     = "22987654321"
	MismatchNationalID = "19876543210"

	ValidRegistryID = "RC123456"
	// PLCRegistryID has a corporate shareholder pointing at
	// HoldingRegistryID, exercising the two-level ownership trace.
	PLCRegistryID     = "RC789012"
	HoldingRegistryID = "RC456789"
)

// MockProvider returns fixed Nigerian test data without any network calls.
// Used in development, the CLI, and tests.
type MockProvider struct {
	logger logging.Logger
}

func NewMockProvider(log logging.Logger) *MockProvider {
	return &MockProvider{logger: log}
}

func (p *MockProvider) Name() string { return "mock" }

func (p *MockProvider) VerifyBankID(_ context.Context, bankID string) (BankIDResult, error) {
	p.logger.Debug("mock bank id lookup", logging.String("bank_id", bankID))

	if !validIDFormat(bankID) {
		return BankIDResult{
			BankID:       bankID,
			ErrorCode:    errors.CodeInvalidBankID,
			ErrorMessage: "bank verification number must be exactly 11 digits",
		}, nil
	}

	switch bankID {
	case ValidBankID:
		return BankIDResult{
			Success:     true,
			BankID:      bankID,
			FullName:    "OBI, JOHN PAUL",
			FirstName:   "JOHN",
			MiddleName:  "PAUL",
			LastName:    "OBI",
			DateOfBirth: "1985-03-15",
			Phone:       "+2348031234567",
			Gender:      "Male",
			Raw: map[string]any{
				"bvn":              bankID,
				"firstName":        "JOHN",
				"middleName":       "PAUL",
				"lastName":         "OBI",
				"dateOfBirth":      "15-Mar-1985",
				"phoneNumber":      "08031234567",
				"enrollmentBank":   "058",
				"enrollmentBranch": "Lagos",
				"registrationDate": "2014-06-20",
			},
		}, nil
	case MismatchBankID:
		return BankIDResult{
			Success:     true,
			BankID:      bankID,
			FullName:    "ADEBAYO, OLUWASEUN TEMITOPE",
			FirstName:   "OLUWASEUN",
			MiddleName:  "TEMITOPE",
			LastName:    "ADEBAYO",
			DateOfBirth: "1990-07-22",
			Phone:       "+2347012345678",
			Gender:      "Male",
			Raw: map[string]any{
				"bvn":         bankID,
				"firstName":   "OLUWASEUN",
				"middleName":  "TEMITOPE",
				"lastName":    "ADEBAYO",
				"dateOfBirth": "22-Jul-1990",
				"phoneNumber": "07012345678",
			},
		}, nil
	}

	return BankIDResult{
		BankID:       bankID,
		ErrorCode:    errors.CodeBankIDNotFound,
		ErrorMessage: "bank verification record not found",
	}, nil
}

func (p *MockProvider) VerifyNationalID(_ context.Context, nationalID string) (NationalIDResult, error) {
	p.logger.Debug("mock national id lookup", logging.String("national_id", nationalID))

	if !validIDFormat(nationalID) {
		return NationalIDResult{
			NationalID:   nationalID,
			ErrorCode:    errors.CodeInvalidNationalID,
			ErrorMessage: "national identification number must be exactly 11 digits",
		}, nil
	}

	switch nationalID {
	case ValidNationalID:
		return NationalIDResult{
			Success:       true,
			NationalID:    nationalID,
			FullName:      "JOHN PAUL OBI",
			FirstName:     "JOHN",
			MiddleName:    "PAUL",
			LastName:      "OBI",
			DateOfBirth:   "1985-03-15",
			Gender:        "M",
			Address:       "12 Allen Avenue, Ikeja, Lagos State",
			StateOfOrigin: "Anambra",
			LGA:           "Onitsha North",
			Raw: map[string]any{
				"nin":               nationalID,
				"firstname":         "JOHN",
				"middlename":        "PAUL",
				"surname":           "OBI",
				"birthdate":         "1985-03-15",
				"gender":            "M",
				"residence_address": "12 Allen Avenue, Ikeja, Lagos State",
				"residence_state":   "Lagos",
				"origin_state":      "Anambra",
				"origin_lga":        "Onitsha North",
			},
		}, nil
	case MismatchNationalID:
		return NationalIDResult{
			Success:       true,
			NationalID:    nationalID,
			FullName:      "TEMITOPE OLUWASEUN ADEBAYO",
			FirstName:     "TEMITOPE",
			MiddleName:    "OLUWASEUN",
			LastName:      "ADEBAYO",
			DateOfBirth:   "1990-07-22",
			Gender:        "M",
			Address:       "45 Ikorodu Road, Yaba, Lagos",
			StateOfOrigin: "Oyo",
			LGA:           "Ibadan North",
			Raw: map[string]any{
				"nin":       nationalID,
				"firstname": "TEMITOPE",
				"middlename": "OLUWASEUN",
				"surname":   "ADEBAYO",
				"birthdate": "1990-07-22",
			},
		}, nil
	}

	return NationalIDResult{
		NationalID:   nationalID,
		ErrorCode:    errors.CodeNationalIDNotFound,
		ErrorMessage: "national identity record not found",
	}, nil
}

func (p *MockProvider) LookupRegistry(_ context.Context, registryID string) (RegistryResult, error) {
	p.logger.Debug("mock registry lookup", logging.String("registry_id", registryID))

	id := strings.ToUpper(registryID)
	switch {
	case id == ValidRegistryID:
		return RegistryResult{
			Success:    true,
			RegistryID: registryID,
			Record: ownership.RegistryRecord{
				RegistryID:        registryID,
				Name:              "ALPHA TRADING LIMITED",
				Kind:              ownership.KindLimited,
				Status:            "ACTIVE",
				IncorporationDate: "2018-06-12",
				Address:           "Plot 15, Adeola Odeku Street, Victoria Island, Lagos",
				Parties: []ownership.Party{
					{Name: "John Paul Obi", Kind: ownership.PartyShareholder, Percentage: ptr(60.0)},
					{Name: "Amaka Nwosu", Kind: ownership.PartyShareholder, Percentage: ptr(40.0)},
				},
			},
			Directors: []Director{
				{Name: "John Paul Obi", Position: "Managing Director", AppointmentDate: "2018-06-12", Email: "j.obi@alphatrading.ng", Phone: "+2348031234567"},
				{Name: "Amaka Nwosu", Position: "Director", AppointmentDate: "2018-06-12", Email: "a.nwosu@alphatrading.ng"},
			},
			ShareCapital: 1_000_000,
			Raw: map[string]any{
				"rc_number":                registryID,
				"company_name":             "ALPHA TRADING LIMITED",
				"registration_date":        "2018-06-12",
				"company_type":             "LIMITED BY SHARES",
				"status":                   "ACTIVE",
				"share_capital_authorized": 1000000,
				"share_capital_issued":     1000000,
			},
		}, nil

	case id == PLCRegistryID:
		return RegistryResult{
			Success:    true,
			RegistryID: registryID,
			Record: ownership.RegistryRecord{
				RegistryID:        registryID,
				Name:              "BETA INDUSTRIES PLC",
				Kind:              ownership.KindPLC,
				Status:            "ACTIVE",
				IncorporationDate: "2015-01-20",
				Address:           "12 Broad Street, Lagos Island, Lagos",
				Parties: []ownership.Party{
					{Name: "GAMMA HOLDINGS LIMITED", Kind: ownership.PartyShareholder, Percentage: ptr(55.0), IsCorporate: true, RegistryID: HoldingRegistryID},
					{Name: "Chukwuma Okafor", Kind: ownership.PartyShareholder, Percentage: ptr(25.0)},
					{Name: "Ngozi Eze", Kind: ownership.PartyShareholder, Percentage: ptr(20.0)},
				},
			},
			Directors: []Director{
				{Name: "Chukwuma Okafor", Position: "Chairman"},
				{Name: "Ngozi Eze", Position: "Managing Director"},
				{Name: "Ibrahim Musa", Position: "Finance Director", Status: "RESIGNED"},
			},
			ShareCapital: 50_000_000,
			Raw:          map[string]any{"rc_number": registryID, "company_type": "PUBLIC LIMITED COMPANY"},
		}, nil

	case id == HoldingRegistryID:
		// Second-layer record behind BETA INDUSTRIES' corporate
		// shareholder, so the depth-2 trace resolves to individuals.
		return RegistryResult{
			Success:    true,
			RegistryID: registryID,
			Record: ownership.RegistryRecord{
				RegistryID:        registryID,
				Name:              "GAMMA HOLDINGS LIMITED",
				Kind:              ownership.KindLimited,
				Status:            "ACTIVE",
				IncorporationDate: "2012-04-03",
				Address:           "4 Marina Road, Lagos Island, Lagos",
				Parties: []ownership.Party{
					{Name: "Emeka Obiora", Kind: ownership.PartyShareholder, Percentage: ptr(70.0)},
					{Name: "Folake Adeyemi", Kind: ownership.PartyShareholder, Percentage: ptr(30.0)},
				},
			},
			Directors: []Director{
				{Name: "Emeka Obiora", Position: "Managing Director"},
			},
			ShareCapital: 20_000_000,
			Raw:          map[string]any{"rc_number": registryID, "company_type": "LIMITED BY SHARES"},
		}, nil

	case strings.HasPrefix(id, "BN"):
		return RegistryResult{
			Success:    true,
			RegistryID: registryID,
			Record: ownership.RegistryRecord{
				RegistryID:        registryID,
				Name:              "PRECIOUS VENTURES",
				Kind:              ownership.KindBusinessName,
				Status:            "ACTIVE",
				IncorporationDate: "2020-09-05",
				Address:           "23 Market Road, Aba, Abia State",
				Parties: []ownership.Party{
					{Name: "Precious Okoro", Kind: ownership.PartyProprietor, Percentage: ptr(100.0)},
				},
			},
			Directors: []Director{
				{Name: "Precious Okoro", Position: "Proprietor"},
			},
			Raw: map[string]any{"bn_number": registryID, "company_type": "BUSINESS NAME"},
		}, nil

	case strings.HasPrefix(id, "IT"):
		return RegistryResult{
			Success:    true,
			RegistryID: registryID,
			Record: ownership.RegistryRecord{
				RegistryID:        registryID,
				Name:              "HOPEWELL COMMUNITY FOUNDATION",
				Kind:              ownership.KindIncorporatedTrustees,
				Status:            "ACTIVE",
				IncorporationDate: "2019-11-28",
				Address:           "7 Unity Close, Garki, Abuja",
				Parties: []ownership.Party{
					{Name: "Halima Bello", Kind: ownership.PartyTrustee},
					{Name: "Tunde Bakare", Kind: ownership.PartyTrustee},
					{Name: "Chioma Nwachukwu", Kind: ownership.PartyTrustee},
				},
			},
			Directors: []Director{
				{Name: "Halima Bello", Position: "Chairperson of Trustees"},
			},
			Raw: map[string]any{"it_number": registryID, "company_type": "INCORPORATED TRUSTEES"},
		}, nil
	}

	return RegistryResult{
		RegistryID:   registryID,
		ErrorCode:    errors.CodeRegistryNotFound,
		ErrorMessage: "company not found in corporate registry",
	}, nil
}

func ptr(v float64) *float64 { return &v }
