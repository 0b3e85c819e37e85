package glclient

import "fmt"

// Backend detail codes with dedicated handling in the UI layer.
const (
	DetailLoginRequired       = "login_required"
	DetailGitLabTokenRequired = "gitlab_token_required"
)

// APIError is a non-2xx response from the reporting backend.
type APIError struct {
	Status int
	Detail string
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// ErrorDetail returns the structured detail string from the response body,
// empty when the backend sent none. Satisfies datasource's classifier
// interface.
func (e *APIError) ErrorDetail() string {
	return e.Detail
}

// errorBody matches the failure payload shape. The backend wraps the detail
// in an error object; older deployments put it at the top level, so both are
// accepted.
type errorBody struct {
	Error struct {
		Detail string `json:"detail"`
	} `json:"error"`
	Detail string `json:"detail"`
}

func (b errorBody) detail() string {
	if b.Error.Detail != "" {
		return b.Error.Detail
	}
	return b.Detail
}
