package datasource

import "errors"

// ErrorKind classifies a failed fetch.
type ErrorKind int

const (
	// ErrGeneric is a network or server failure, shown inline and
	// recoverable via retry or a search/filter change.
	ErrGeneric ErrorKind = iota
	// ErrAuthRequired means the backend has no usable GitLab token; the
	// setup flow takes over and no inline message is shown.
	ErrAuthRequired
	// ErrSessionExpired means the login session is gone. The token gets
	// cleared and a message is still shown while the redirect settles.
	ErrSessionExpired
)

// FetchError is the classified outcome of a failed fetch.
type FetchError struct {
	Kind    ErrorKind
	Message string
}

// DetailError is implemented by errors carrying a structured backend detail
// string (glclient.APIError does). Anything else classifies as generic.
type DetailError interface {
	ErrorDetail() string
}

// Detail codes recognized by the classifier. These mirror the backend's
// auth responses.
const (
	detailGitLabTokenRequired = "gitlab_token_required"
	detailLoginRequired       = "login_required"
)

// Classify maps a failed request to the error taxonomy. Used by every
// Controller and by one-shot requests (schedule operations) that run outside
// a controller but must honor the same auth handling. fallback replaces the
// message when the failure carries no backend detail.
func Classify(err error, fallback string) *FetchError {
	detail := ""
	var de DetailError
	if errors.As(err, &de) {
		detail = de.ErrorDetail()
	}

	switch detail {
	case detailGitLabTokenRequired:
		// The setup flow takes over; no inline message.
		return &FetchError{Kind: ErrAuthRequired}
	case detailLoginRequired:
		return &FetchError{Kind: ErrSessionExpired, Message: detail}
	default:
		msg := detail
		if msg == "" {
			msg = fallback
		}
		if msg == "" {
			msg = err.Error()
		}
		return &FetchError{Kind: ErrGeneric, Message: msg}
	}
}
