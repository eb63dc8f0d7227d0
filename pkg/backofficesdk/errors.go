package backofficesdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned by the back-office API.
const (
	ErrorCodeInvalidRequest   = "invalid_request"
	ErrorCodeInvalidToken     = "invalid_token"
	ErrorCodeNotFound         = "not_found"
	ErrorCodeSelfModification = "self_modification"
	ErrorCodeForbidden        = "forbidden"
	ErrorCodeUnauthorized     = "unauthorized"
	ErrorCodeConflict         = "conflict"
	ErrorCodeRateLimited      = "rate_limit_exceeded"
	ErrorCodeServerError      = "server_error"
)

// APIError is a non-2xx response decoded by the client.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches another *APIError by Code, so callers can write
// errors.Is(err, &APIError{Code: ErrorCodeForbidden}).
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// HasCode reports whether err is an *APIError with the given code.
func HasCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

func parseErrorResponse(resp *http.Response, body []byte) error {
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil || er.Error == "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        ErrorCodeServerError,
			Description: fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Code: er.Error, Description: er.ErrorDescription}
}
