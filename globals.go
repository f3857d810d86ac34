package panther

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/tphakala/go-panther/internal/api"
)

// Global represents a global helper module shared by detections.
type Global struct {
	ID           string    `json:"id"`
	Body         string    `json:"body"`
	Description  string    `json:"description,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
	LastModified time.Time `json:"lastModified,omitzero"`
}

// CreateGlobalRequest contains data for creating a new global helper. Body
// is the helper's Python code.
type CreateGlobalRequest struct {
	ID          string   `json:"id"`
	Body        string   `json:"body"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// UpdateGlobalRequest contains changes to apply to a global helper.
//
// The REST endpoint upserts: updating a missing ID creates it. Set
// UpdateOnly to fail with *EntityNotFoundError instead.
type UpdateGlobalRequest struct {
	Body        string   `json:"body"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	UpdateOnly  bool     `json:"-"`
}

// GlobalService manages global helper modules via the REST API.
type GlobalService interface {
	// List returns all configured global helpers, following pagination to
	// the end.
	List(ctx context.Context, opts ...RequestOption) ([]*Global, error)

	// Get retrieves a single global helper by ID.
	Get(ctx context.Context, globalID string, opts ...RequestOption) (*Global, error)

	// Create creates a new global helper. Returns *EntityAlreadyExistsError
	// if the ID is taken.
	Create(ctx context.Context, req *CreateGlobalRequest, opts ...RequestOption) (*Global, error)

	// Update modifies an existing global helper (or creates it, unless
	// UpdateOnly is set).
	Update(ctx context.Context, globalID string, req *UpdateGlobalRequest, opts ...RequestOption) (*Global, error)

	// Delete removes a global helper by ID.
	Delete(ctx context.Context, globalID string, opts ...RequestOption) error
}

// globalService implements GlobalService.
type globalService struct {
	transport *api.Transport
}

func newGlobalService(transport *api.Transport) *globalService {
	return &globalService{transport: transport}
}

// List returns all configured global helpers.
func (s *globalService) List(ctx context.Context, opts ...RequestOption) ([]*Global, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	return listRESTPages[*Global](ctx, s.transport, "/globals", reqCfg.headers)
}

// Get retrieves a single global helper by ID.
func (s *globalService) Get(ctx context.Context, globalID string, opts ...RequestOption) (*Global, error) {
	if globalID == "" {
		return nil, &ValidationError{Message: "global ID cannot be empty"}
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var global Global
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    "/globals/" + url.PathEscape(globalID),
		Headers: reqCfg.headers,
	}, &global)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseRESTError(resp.StatusCode, resp.Body)
	}

	return &global, nil
}

// Create creates a new global helper.
func (s *globalService) Create(ctx context.Context, req *CreateGlobalRequest, opts ...RequestOption) (*Global, error) {
	if req == nil {
		return nil, &ValidationError{Message: "create request cannot be nil"}
	}
	if req.ID == "" {
		return nil, &ValidationError{Message: "global ID is required"}
	}
	if req.Body == "" {
		return nil, &ValidationError{Message: "global body is required"}
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var global Global
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodPost,
		Path:    "/globals",
		Body:    req,
		Headers: reqCfg.headers,
	}, &global)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseRESTError(resp.StatusCode, resp.Body)
	}

	return &global, nil
}

// Update modifies an existing global helper.
func (s *globalService) Update(ctx context.Context, globalID string, req *UpdateGlobalRequest, opts ...RequestOption) (*Global, error) {
	if globalID == "" {
		return nil, &ValidationError{Message: "global ID cannot be empty"}
	}
	if req == nil {
		return nil, &ValidationError{Message: "update request cannot be nil"}
	}

	if req.UpdateOnly {
		if _, err := s.Get(ctx, globalID, opts...); err != nil {
			return nil, err
		}
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	payload := struct {
		ID string `json:"id"`
		*UpdateGlobalRequest
	}{ID: globalID, UpdateGlobalRequest: req}

	var global Global
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodPut,
		Path:    "/globals/" + url.PathEscape(globalID),
		Body:    payload,
		Headers: reqCfg.headers,
	}, &global)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseRESTError(resp.StatusCode, resp.Body)
	}

	return &global, nil
}

// Delete removes a global helper by ID.
func (s *globalService) Delete(ctx context.Context, globalID string, opts ...RequestOption) error {
	if globalID == "" {
		return &ValidationError{Message: "global ID cannot be empty"}
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	resp, err := s.transport.Do(ctx, &api.Request{
		Method:  http.MethodDelete,
		Path:    "/globals/" + url.PathEscape(globalID),
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
