package panther

import (
	"context"
	"encoding/json"
	"maps"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tphakala/go-panther/internal/api"
)

// RuleSeverity is the default severity of alerts raised by a rule.
type RuleSeverity string

const (
	SeverityInfo     RuleSeverity = "INFO"
	SeverityLow      RuleSeverity = "LOW"
	SeverityMedium   RuleSeverity = "MEDIUM"
	SeverityHigh     RuleSeverity = "HIGH"
	SeverityCritical RuleSeverity = "CRITICAL"
)

// InlineFilter restricts which events a rule runs against.
type InlineFilter struct {
	Key       string `yaml:"key" json:"key"`
	Condition string `yaml:"condition" json:"condition"`
	Value     any    `yaml:"value,omitempty" json:"value,omitempty"`
}

// Rule represents a realtime detection rule.
type Rule struct {
	ID                 string       `json:"id"`
	Body               string       `json:"body"`
	Severity           RuleSeverity `json:"severity"`
	DisplayName        string       `json:"displayName,omitempty"`
	Description        string       `json:"description,omitempty"`
	Enabled            bool         `json:"enabled"`
	LogTypes           []string     `json:"logTypes,omitempty"`
	DedupPeriodMinutes int          `json:"dedupPeriodMinutes,omitempty"`
	Tags               []string     `json:"tags,omitempty"`
	Managed            bool         `json:"managed,omitempty"`
	CreatedAt          time.Time    `json:"createdAt,omitzero"`
	LastModified       time.Time    `json:"lastModified,omitzero"`
}

// RuleTestMock overrides a function call while the backend runs a unit test.
type RuleTestMock struct {
	ObjectName  string `json:"objectName"`
	ReturnValue any    `json:"returnValue"`
}

// RuleUnitTest asserts that a rule triggers (or not) for a specific event.
// Resource is the JSON-encoded log event the test runs against.
type RuleUnitTest struct {
	Name           string         `json:"name"`
	ExpectedResult bool           `json:"expectedResult"`
	Resource       string         `json:"resource"`
	Mocks          []RuleTestMock `json:"mocks,omitempty"`
}

// RuleTestError describes an error raised while running a unit test.
type RuleTestError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// RuleTestFunctionResult is the output of one auxiliary rule function.
type RuleTestFunctionResult struct {
	Output string         `json:"output"`
	Error  *RuleTestError `json:"error,omitempty"`
}

// RuleTestFunctions collects the auxiliary function outputs of a test run.
type RuleTestFunctions struct {
	AlertContext *RuleTestFunctionResult `json:"alertContext,omitempty"`
	Dedup        *RuleTestFunctionResult `json:"dedup,omitempty"`
	Description  *RuleTestFunctionResult `json:"description,omitempty"`
	Destinations *RuleTestFunctionResult `json:"destinations,omitempty"`
	Reference    *RuleTestFunctionResult `json:"reference,omitempty"`
	Runbook      *RuleTestFunctionResult `json:"runbook,omitempty"`
	Severity     *RuleTestFunctionResult `json:"severity,omitempty"`
	Title        *RuleTestFunctionResult `json:"title,omitempty"`
}

// RuleTestResult is the backend's outcome for a single unit test.
type RuleTestResult struct {
	Name         string             `json:"name"`
	Passed       bool               `json:"passed"`
	Errored      bool               `json:"errored"`
	TriggerAlert bool               `json:"triggerAlert"`
	Error        *RuleTestError     `json:"error,omitempty"`
	Functions    *RuleTestFunctions `json:"functions,omitempty"`
}

// CreateRuleRequest contains data for creating a new rule.
//
// RunTestsFirst and RunTestsOnly control whether the backend runs the rule's
// unit tests before saving, and whether it runs them without saving at all;
// nil leaves the backend default in effect. A failing test run surfaces as
// *RuleTestFailureError.
type CreateRuleRequest struct {
	ID                 string         `json:"id"`
	Body               string         `json:"body"`
	Severity           RuleSeverity   `json:"severity"`
	LogTypes           []string       `json:"logTypes"`
	DisplayName        string         `json:"displayName,omitempty"`
	Description        string         `json:"description,omitempty"`
	Enabled            *bool          `json:"enabled,omitempty"`
	DedupPeriodMinutes int            `json:"dedupPeriodMinutes,omitempty"`
	Tags               []string       `json:"tags,omitempty"`
	Managed            *bool          `json:"managed,omitempty"`
	Runbook            string         `json:"runbook,omitempty"`
	SummaryAttributes  []string       `json:"summaryAttributes,omitempty"`
	Tests              []RuleUnitTest `json:"tests,omitempty"`
	InlineFilters      []InlineFilter `json:"-"`
	RunTestsFirst      *bool          `json:"-"`
	RunTestsOnly       *bool          `json:"-"`
}

// UpdateRuleRequest contains changes to apply to an existing rule. Zero-value
// fields are left unchanged. See CreateRuleRequest for the test-run flags.
type UpdateRuleRequest struct {
	Body               string
	Severity           RuleSeverity
	LogTypes           []string
	DisplayName        string
	Description        string
	Enabled            *bool
	DedupPeriodMinutes int
	Tags               []string
	Managed            *bool
	Runbook            string
	SummaryAttributes  []string
	Tests              []RuleUnitTest
	InlineFilters      []InlineFilter
	RunTestsFirst      *bool
	RunTestsOnly       *bool
}

// RuleService manages realtime detection rules via the REST API.
type RuleService interface {
	// List returns all configured rules, following pagination to the end.
	List(ctx context.Context, opts ...RequestOption) ([]*Rule, error)

	// Get retrieves a single rule by ID.
	Get(ctx context.Context, ruleID string, opts ...RequestOption) (*Rule, error)

	// Create creates a new rule.
	Create(ctx context.Context, req *CreateRuleRequest, opts ...RequestOption) (*Rule, error)

	// Update modifies an existing rule. Unlike the other REST resources the
	// rule must already exist; there is no create-on-update.
	Update(ctx context.Context, ruleID string, req *UpdateRuleRequest, opts ...RequestOption) (*Rule, error)

	// Delete removes a rule by ID.
	Delete(ctx context.Context, ruleID string, opts ...RequestOption) error
}

// ruleService implements RuleService.
type ruleService struct {
	transport *api.Transport
}

func newRuleService(transport *api.Transport) *ruleService {
	return &ruleService{transport: transport}
}

// List returns all configured rules.
func (s *ruleService) List(ctx context.Context, opts ...RequestOption) ([]*Rule, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	return listRESTPages[*Rule](ctx, s.transport, "/rules", reqCfg.headers)
}

// Get retrieves a single rule by ID.
func (s *ruleService) Get(ctx context.Context, ruleID string, opts ...RequestOption) (*Rule, error) {
	if ruleID == "" {
		return nil, &ValidationError{Message: "rule ID cannot be empty"}
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var rule Rule
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    "/rules/" + url.PathEscape(ruleID),
		Headers: reqCfg.headers,
	}, &rule)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseRESTError(resp.StatusCode, resp.Body)
	}

	return &rule, nil
}

// Create creates a new rule.
func (s *ruleService) Create(ctx context.Context, req *CreateRuleRequest, opts ...RequestOption) (*Rule, error) {
	if req == nil {
		return nil, &ValidationError{Message: "create request cannot be nil"}
	}
	if req.ID == "" {
		return nil, &ValidationError{Message: "rule ID is required"}
	}
	if req.Body == "" {
		return nil, &ValidationError{Message: "rule body is required"}
	}
	if len(req.LogTypes) == 0 {
		return nil, &ValidationError{Message: "at least one log type is required"}
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	body, err := buildRulePayload(req)
	if err != nil {
		return nil, err
	}

	var rule Rule
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodPost,
		Path:    "/rules",
		Query:   testRunParams(req.RunTestsFirst, req.RunTestsOnly),
		Body:    body,
		Headers: reqCfg.headers,
	}, &rule)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseRuleSaveError(req.ID, resp.StatusCode, resp.Body)
	}

	return &rule, nil
}

// Update modifies an existing rule. The current rule is fetched first and the
// requested changes are overlaid onto it, so unset fields keep their values.
func (s *ruleService) Update(ctx context.Context, ruleID string, req *UpdateRuleRequest, opts ...RequestOption) (*Rule, error) {
	if req == nil {
		return nil, &ValidationError{Message: "update request cannot be nil"}
	}

	current, err := s.Get(ctx, ruleID, opts...)
	if err != nil {
		return nil, err
	}

	payload := make(map[string]any)
	currentJSON, err := json.Marshal(current)
	if err != nil {
		return nil, &ValidationError{Message: "cannot encode current rule: " + err.Error()}
	}
	if err := json.Unmarshal(currentJSON, &payload); err != nil {
		return nil, &ValidationError{Message: "cannot encode current rule: " + err.Error()}
	}

	changes, err := buildRulePayload(&CreateRuleRequest{
		ID:                 ruleID,
		Body:               req.Body,
		Severity:           req.Severity,
		LogTypes:           req.LogTypes,
		DisplayName:        req.DisplayName,
		Description:        req.Description,
		Enabled:            req.Enabled,
		DedupPeriodMinutes: req.DedupPeriodMinutes,
		Tags:               req.Tags,
		Managed:            req.Managed,
		Runbook:            req.Runbook,
		SummaryAttributes:  req.SummaryAttributes,
		Tests:              req.Tests,
		InlineFilters:      req.InlineFilters,
	})
	if err != nil {
		return nil, err
	}
	// buildRulePayload always emits the create-mandatory fields; on update an
	// unset field must not clobber the current value.
	if req.Body == "" {
		delete(changes, "body")
	}
	if req.Severity == "" {
		delete(changes, "severity")
	}
	if len(req.LogTypes) == 0 {
		delete(changes, "logTypes")
	}
	maps.Copy(payload, changes)

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var rule Rule
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodPut,
		Path:    "/rules/" + url.PathEscape(ruleID),
		Query:   testRunParams(req.RunTestsFirst, req.RunTestsOnly),
		Body:    payload,
		Headers: reqCfg.headers,
	}, &rule)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseRuleSaveError(ruleID, resp.StatusCode, resp.Body)
	}

	return &rule, nil
}

// buildRulePayload assembles the REST request body for saving a rule. The
// backend takes inline filters as a YAML document, not structured JSON.
func buildRulePayload(req *CreateRuleRequest) (map[string]any, error) {
	body := map[string]any{
		"id":       req.ID,
		"body":     req.Body,
		"severity": string(req.Severity),
		"logTypes": req.LogTypes,
	}
	if req.DisplayName != "" {
		body["displayName"] = req.DisplayName
	}
	if req.Description != "" {
		body["description"] = req.Description
	}
	if req.Enabled != nil {
		body["enabled"] = *req.Enabled
	}
	if req.DedupPeriodMinutes > 0 {
		body["dedupPeriodMinutes"] = req.DedupPeriodMinutes
	}
	if len(req.Tags) > 0 {
		body["tags"] = req.Tags
	}
	if req.Managed != nil {
		body["managed"] = *req.Managed
	}
	if req.Runbook != "" {
		body["runbook"] = req.Runbook
	}
	if len(req.SummaryAttributes) > 0 {
		body["summaryAttributes"] = req.SummaryAttributes
	}
	if len(req.Tests) > 0 {
		body["tests"] = req.Tests
	}
	if len(req.InlineFilters) > 0 {
		filters, err := yaml.Marshal(req.InlineFilters)
		if err != nil {
			return nil, &ValidationError{Message: "cannot encode inline filters: " + err.Error()}
		}
		body["inlineFilters"] = string(filters)
	}
	return body, nil
}

// testRunParams builds the query parameters controlling backend test runs.
func testRunParams(first, only *bool) url.Values {
	query := url.Values{}
	if first != nil {
		query.Set("run-tests-first", strconv.FormatBool(*first))
	}
	if only != nil {
		query.Set("run-tests-only", strconv.FormatBool(*only))
	}
	return query
}

// parseRuleSaveError classifies a failed rule save, recognizing the failing
// unit test response the backend reports with status 400.
func parseRuleSaveError(ruleID string, statusCode int, body []byte) error {
	if statusCode == http.StatusBadRequest {
		var failure struct {
			Message     string           `json:"message"`
			TestResults []RuleTestResult `json:"testResults"`
		}
		if err := json.Unmarshal(body, &failure); err == nil && failure.Message == "you have failing tests" {
			return &RuleTestFailureError{RuleID: ruleID, Results: failure.TestResults}
		}
	}
	return parseRESTError(statusCode, body)
}

// Delete removes a rule by ID.
func (s *ruleService) Delete(ctx context.Context, ruleID string, opts ...RequestOption) error {
	if ruleID == "" {
		return &ValidationError{Message: "rule ID cannot be empty"}
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	resp, err := s.transport.Do(ctx, &api.Request{
		Method:  http.MethodDelete,
		Path:    "/rules/" + url.PathEscape(ruleID),
		Headers: reqCfg.headers,
	})
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return parseRESTError(resp.StatusCode, resp.Body)
	}

	return nil
}
