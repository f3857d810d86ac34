package panther

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tphakala/go-panther/internal/graphql"
)

// Sentinel errors for common failure modes.
var (
	ErrNoAPIToken = errors.New("panther: no API token configured")
	ErrNoDomain   = errors.New("panther: no domain configured")
)

// Suffixes and messages the backend uses to signal well-known failure
// conditions. The wording is an implicit contract with the platform and may
// change upstream; classification is best-effort, with GraphQLError as the
// typed fallback.
var notFoundSuffixes = []string{"does not exist", "not found"}

const accessDeniedMessage = "access denied"

// APIError represents a general Panther REST API error.
type APIError struct {
	StatusCode int    `json:"status"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("panther: API error %d: %s", e.StatusCode, e.Message)
}

// ValidationError indicates invalid caller input. It is always returned
// before any network call is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("panther: validation error: %s", e.Message)
}

// InvalidIDError indicates a value that is not a valid 128-bit identifier in
// either hyphenated or compact hexadecimal form.
type InvalidIDError struct {
	Value string
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("panther: invalid ID: %s", e.Value)
}

// InvalidTimestampError indicates a timestamp value that cannot be
// normalized to the wire format.
type InvalidTimestampError struct {
	Value  string
	Reason string
}

func (e *InvalidTimestampError) Error() string {
	return fmt.Sprintf("panther: invalid timestamp %q: %s", e.Value, e.Reason)
}

// EntityNotFoundError indicates the backend reported that a referenced
// entity does not exist.
type EntityNotFoundError struct {
	Message string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("panther: entity not found: %s", e.Message)
}

// EntityAlreadyExistsError indicates the backend rejected a create because
// the chosen ID is already in use.
type EntityAlreadyExistsError struct {
	Message string
}

func (e *EntityAlreadyExistsError) Error() string {
	return fmt.Sprintf("panther: entity already exists: %s", e.Message)
}

// RuleTestFailureError indicates the backend refused to save a rule because
// one or more of its unit tests failed. Results holds the outcome of every
// test the backend ran.
type RuleTestFailureError struct {
	RuleID  string
	Results []RuleTestResult
}

func (e *RuleTestFailureError) Error() string {
	failed := make([]string, 0, len(e.Results))
	for _, result := range e.Results {
		if !result.Passed || result.Errored {
			failed = append(failed, result.Name)
		}
	}
	return fmt.Sprintf("panther: cannot save rule %s due to failing unit tests: %s",
		e.RuleID, strings.Join(failed, ", "))
}

// AccessDeniedError indicates the API token lacks permission for the invoked
// method.
type AccessDeniedError struct {
	Method string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("panther: API token is not permitted to call method %s", e.Method)
}

// GraphQLErrorEntry is one entry of a structured GraphQL error response.
type GraphQLErrorEntry struct {
	Message string
	Path    []any
}

// GraphQLError is the catch-all for structured GraphQL errors that do not
// match a known pattern. It preserves every entry for diagnostics.
type GraphQLError struct {
	Entries []GraphQLErrorEntry
}

func (e *GraphQLError) Error() string {
	msgs := make([]string, 0, len(e.Entries))
	for _, entry := range e.Entries {
		msgs = append(msgs, entry.Message)
	}
	return fmt.Sprintf("panther: graphql error: %s", strings.Join(msgs, "; "))
}

// QueryCancelledError indicates a data lake query was cancelled before it
// completed. Cancellation happens outside this client; the error reports an
// observed outcome.
type QueryCancelledError struct {
	Message string
}

func (e *QueryCancelledError) Error() string {
	return fmt.Sprintf("panther: query cancelled: %s", e.Message)
}

// QueryFailedError indicates a data lake query reached a terminal
// non-success state. Status is the raw backend status, which may be a value
// this client does not recognize.
type QueryFailedError struct {
	Status  QueryStatus
	Message string
}

func (e *QueryFailedError) Error() string {
	return fmt.Sprintf("panther: query failed (%s): %s", e.Status, e.Message)
}

// AuthenticationError indicates authentication failure (401/403).
type AuthenticationError struct {
	APIError
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("panther: authentication failed: %s", e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *AuthenticationError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// ServerError indicates an internal server error (5xx).
type ServerError struct {
	APIError
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("panther: server error %d: %s", e.StatusCode, e.Message)
}

// As implements error unwrapping for errors.As to match *APIError.
func (e *ServerError) As(target any) bool {
	if t, ok := target.(**APIError); ok {
		*t = &e.APIError
		return true
	}
	return false
}

// mapGraphQLError classifies a structured GraphQL error response into the
// package error taxonomy. Errors that are not *graphql.ErrorList (transport
// and network failures) pass through unchanged.
func mapGraphQLError(err error) error {
	var list *graphql.ErrorList
	if !errors.As(err, &list) {
		return err
	}

	for _, entry := range list.Errors {
		for _, suffix := range notFoundSuffixes {
			if strings.HasSuffix(entry.Message, suffix) {
				return &EntityNotFoundError{Message: entry.Message}
			}
		}
		if entry.Message == accessDeniedMessage {
			return &AccessDeniedError{Method: entry.LastPathSegment("<unknown method>")}
		}
	}

	gqlErr := &GraphQLError{Entries: make([]GraphQLErrorEntry, 0, len(list.Errors))}
	for _, entry := range list.Errors {
		gqlErr.Entries = append(gqlErr.Entries, GraphQLErrorEntry{
			Message: entry.Message,
			Path:    entry.Path,
		})
	}
	return gqlErr
}

// parseRESTError converts a REST HTTP error response into the appropriate
// error type.
func parseRESTError(statusCode int, body []byte) error {
	base := APIError{
		StatusCode: statusCode,
	}

	// Try to parse structured JSON error response
	if err := json.Unmarshal(body, &base); err != nil {
		// Fallback to raw body if not valid JSON
		base.Message = string(body)
	}

	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return &AuthenticationError{APIError: base}
	case statusCode == http.StatusNotFound:
		if base.Message == "" {
			base.Message = "requested entity does not exist"
		}
		return &EntityNotFoundError{Message: base.Message}
	case statusCode == http.StatusConflict:
		return &EntityAlreadyExistsError{Message: base.Message}
	case statusCode >= http.StatusInternalServerError:
		return &ServerError{APIError: base}
	default:
		return &base
	}
}
