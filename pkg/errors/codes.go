package errors

import "net/http"

// ErrorCode identifies a failure category. Codes are grouped per module so
// that API clients and dashboards can classify failures without parsing
// messages.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	CodeOK            ErrorCode = "OK"
	CodeUnknown       ErrorCode = "COMMON_000"
	CodeInternal      ErrorCode = "COMMON_001"
	CodeBadRequest    ErrorCode = "COMMON_002"
	CodeUnauthorized  ErrorCode = "COMMON_003"
	CodeForbidden     ErrorCode = "COMMON_004"
	CodeNotFound      ErrorCode = "COMMON_005"
	CodeConflict      ErrorCode = "COMMON_006"
	CodeRateLimit     ErrorCode = "COMMON_007"
	CodeUnavailable   ErrorCode = "COMMON_008"
	CodeTimeout       ErrorCode = "COMMON_009"
	CodeSerialization ErrorCode = "COMMON_010"
	CodeDatabase      ErrorCode = "COMMON_011"
	CodeCache         ErrorCode = "COMMON_012"
)

// Provider error codes. These mirror the error_code values returned by the
// upstream identity registries so that a failed lookup can be surfaced to the
// caller verbatim.
const (
	CodeProviderUnavailable ErrorCode = "PROV_001"
	CodeProviderTimeout     ErrorCode = "PROV_002"
	CodeInvalidBankID       ErrorCode = "PROV_003"
	CodeBankIDNotFound      ErrorCode = "PROV_004"
	CodeInvalidNationalID   ErrorCode = "PROV_005"
	CodeNationalIDNotFound  ErrorCode = "PROV_006"
	CodeRegistryNotFound    ErrorCode = "PROV_007"
)

// Verification error codes.
const (
	CodeVerificationNotFound ErrorCode = "VER_001"
	CodeVerificationFailed   ErrorCode = "VER_002"
	CodeUnsupportedEntity    ErrorCode = "VER_003"
)

// HTTPStatus maps an ErrorCode to the HTTP status the API layer should
// return for it. Unknown codes map to 500.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeBadRequest, CodeInvalidBankID, CodeInvalidNationalID:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeVerificationNotFound, CodeBankIDNotFound,
		CodeNationalIDNotFound, CodeRegistryNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeRateLimit:
		return http.StatusTooManyRequests
	case CodeUnavailable, CodeProviderUnavailable:
		return http.StatusServiceUnavailable
	case CodeTimeout, CodeProviderTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
