// Package graphql provides low-level transport for the Panther GraphQL API.
//
// Operation documents are kept as .graphql files under templates/ and
// addressed by logical name, e.g. "queries/results". The transport POSTs a
// standard GraphQL request body and separates the data payload from the
// structured error list; interpreting the errors is left to the caller.
package graphql

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tphakala/go-panther/internal/auth"
)

//go:embed templates
var templates embed.FS

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultMaxBodySize = 10 * 1024 * 1024 // 10MB
)

// Document returns the GraphQL document registered under the given logical
// name. Names map to files: "queries/execute" loads
// templates/queries/execute.graphql.
func Document(name string) (string, error) {
	data, err := templates.ReadFile("templates/" + name + ".graphql")
	if err != nil {
		return "", fmt.Errorf("unknown graphql operation %q: %w", name, err)
	}
	return string(data), nil
}

// Error is a single entry from a GraphQL error list. Path identifies the
// field that produced the error; entries may be field names or list indices.
type Error struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// LastPathSegment returns the final path entry as a string, or fallback if
// the path is empty.
func (e Error) LastPathSegment(fallback string) string {
	if len(e.Path) == 0 {
		return fallback
	}
	return fmt.Sprint(e.Path[len(e.Path)-1])
}

// ErrorList is the structured error collection returned by the endpoint.
// It preserves every entry so callers can classify or report them.
type ErrorList struct {
	Errors []Error
}

func (e *ErrorList) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, entry := range e.Errors {
		msgs = append(msgs, entry.Message)
	}
	return fmt.Sprintf("graphql: %s", strings.Join(msgs, "; "))
}

// Transport handles HTTP communication with the Panther GraphQL endpoint.
type Transport struct {
	Endpoint    *url.URL
	HTTPClient  *http.Client
	Credentials *auth.Credentials
	UserAgent   string
}

// NewTransport creates a Transport for the given GraphQL endpoint URL.
func NewTransport(endpoint string, creds *auth.Credentials, httpClient *http.Client) (*Transport, error) {
	if creds == nil {
		return nil, fmt.Errorf("credentials must be provided")
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint URL: %w", err)
	}

	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: defaultHTTPTimeout,
		}
	}

	return &Transport{
		Endpoint:    u,
		HTTPClient:  httpClient,
		Credentials: creds,
		UserAgent:   "go-panther/1.0",
	}, nil
}

// request is the standard GraphQL POST body.
type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// response is the standard GraphQL response envelope.
type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []Error         `json:"errors"`
}

// Execute runs the named operation with the given variable bindings and
// returns the raw data payload. A structured error response is returned as
// *ErrorList; transport-level failures are returned as-is.
func (t *Transport) Execute(ctx context.Context, name string, variables map[string]any, headers http.Header) (json.RawMessage, error) {
	doc, err := Document(name)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(request{Query: doc, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("marshaling graphql request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", t.UserAgent)
	t.Credentials.Apply(httpReq)
	maps.Copy(httpReq.Header, headers)

	httpResp, err := t.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	limitedReader := io.LimitReader(httpResp.Body, defaultMaxBodySize+1)
	raw, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(raw)) > defaultMaxBodySize {
		return nil, fmt.Errorf("response too large: exceeds %d bytes", defaultMaxBodySize)
	}

	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		if httpResp.StatusCode >= 400 {
			return nil, fmt.Errorf("graphql endpoint returned status %d: %s", httpResp.StatusCode, raw)
		}
		return nil, fmt.Errorf("unmarshaling graphql response: %w", err)
	}

	if len(resp.Errors) > 0 {
		return nil, &ErrorList{Errors: resp.Errors}
	}

	if httpResp.StatusCode >= 400 {
		return nil, fmt.Errorf("graphql endpoint returned status %d: %s", httpResp.StatusCode, raw)
	}

	return resp.Data, nil
}
