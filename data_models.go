package panther

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/tphakala/go-panther/internal/api"
)

// DataModelMapping maps one standard field to a log field, either through a
// JSON path or a Python method name. Exactly one of Path and Method should
// be set.
type DataModelMapping struct {
	Name   string `json:"name"`
	Path   string `json:"path,omitempty"`
	Method string `json:"method,omitempty"`
}

// DataModel represents a data model, which normalizes log type fields onto
// a standard schema.
type DataModel struct {
	ID           string             `json:"id"`
	Body         string             `json:"body,omitempty"`
	Description  string             `json:"description,omitempty"`
	DisplayName  string             `json:"displayName,omitempty"`
	Enabled      bool               `json:"enabled"`
	LogTypes     []string           `json:"logTypes,omitempty"`
	Mappings     []DataModelMapping `json:"mappings,omitempty"`
	CreatedAt    time.Time          `json:"createdAt,omitzero"`
	LastModified time.Time          `json:"lastModified,omitzero"`
}

// CreateDataModelRequest contains data for creating a new data model.
type CreateDataModelRequest struct {
	ID          string             `json:"id"`
	Body        string             `json:"body"`
	Description string             `json:"description,omitempty"`
	DisplayName string             `json:"displayName,omitempty"`
	Enabled     *bool              `json:"enabled,omitempty"`
	LogTypes    []string           `json:"logTypes,omitempty"`
	Mappings    []DataModelMapping `json:"mappings,omitempty"`
}

// UpdateDataModelRequest contains changes to apply to a data model.
//
// The REST endpoint upserts: updating a missing ID creates it. Set
// UpdateOnly to fail with *EntityNotFoundError instead. NewID renames the
// model when set.
type UpdateDataModelRequest struct {
	NewID       string             `json:"-"`
	Body        string             `json:"body"`
	Description string             `json:"description,omitempty"`
	DisplayName string             `json:"displayName,omitempty"`
	Enabled     *bool              `json:"enabled,omitempty"`
	LogTypes    []string           `json:"logTypes,omitempty"`
	Mappings    []DataModelMapping `json:"mappings,omitempty"`
	UpdateOnly  bool               `json:"-"`
}

// DataModelService manages data models via the REST API.
type DataModelService interface {
	// List returns all configured data models, following pagination to the
	// end.
	List(ctx context.Context, opts ...RequestOption) ([]*DataModel, error)

	// Get retrieves a single data model by ID.
	Get(ctx context.Context, modelID string, opts ...RequestOption) (*DataModel, error)

	// Create creates a new data model. Returns *EntityAlreadyExistsError if
	// the ID is taken.
	Create(ctx context.Context, req *CreateDataModelRequest, opts ...RequestOption) (*DataModel, error)

	// Update modifies an existing data model (or creates it, unless
	// UpdateOnly is set).
	Update(ctx context.Context, modelID string, req *UpdateDataModelRequest, opts ...RequestOption) (*DataModel, error)

	// Delete removes a data model by ID.
	Delete(ctx context.Context, modelID string, opts ...RequestOption) error
}

// dataModelService implements DataModelService.
type dataModelService struct {
	transport *api.Transport
}

func newDataModelService(transport *api.Transport) *dataModelService {
	return &dataModelService{transport: transport}
}

// List returns all configured data models.
func (s *dataModelService) List(ctx context.Context, opts ...RequestOption) ([]*DataModel, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	return listRESTPages[*DataModel](ctx, s.transport, "/data_models", reqCfg.headers)
}

// Get retrieves a single data model by ID.
func (s *dataModelService) Get(ctx context.Context, modelID string, opts ...RequestOption) (*DataModel, error) {
	if modelID == "" {
		return nil, &ValidationError{Message: "data model ID cannot be empty"}
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var model DataModel
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    "/data_models/" + url.PathEscape(modelID),
		Headers: reqCfg.headers,
	}, &model)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseRESTError(resp.StatusCode, resp.Body)
	}

	return &model, nil
}

// Create creates a new data model.
func (s *dataModelService) Create(ctx context.Context, req *CreateDataModelRequest, opts ...RequestOption) (*DataModel, error) {
	if req == nil {
		return nil, &ValidationError{Message: "create request cannot be nil"}
	}
	if req.ID == "" {
		return nil, &ValidationError{Message: "data model ID is required"}
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var model DataModel
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodPost,
		Path:    "/data_models",
		Body:    req,
		Headers: reqCfg.headers,
	}, &model)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseRESTError(resp.StatusCode, resp.Body)
	}

	return &model, nil
}

// Update modifies an existing data model.
func (s *dataModelService) Update(ctx context.Context, modelID string, req *UpdateDataModelRequest, opts ...RequestOption) (*DataModel, error) {
	if modelID == "" {
		return nil, &ValidationError{Message: "data model ID cannot be empty"}
	}
	if req == nil {
		return nil, &ValidationError{Message: "update request cannot be nil"}
	}

	if req.UpdateOnly {
		if _, err := s.Get(ctx, modelID, opts...); err != nil {
			return nil, err
		}
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	payload := struct {
		ID string `json:"id"`
		*UpdateDataModelRequest
	}{ID: modelID, UpdateDataModelRequest: req}
	if req.NewID != "" {
		payload.ID = req.NewID
	}

	var model DataModel
	resp, err := s.transport.DoJSON(ctx, &api.Request{
		Method:  http.MethodPut,
		Path:    "/data_models/" + url.PathEscape(modelID),
		Body:    payload,
		Headers: reqCfg.headers,
	}, &model)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, parseRESTError(resp.StatusCode, resp.Body)
	}

	return &model, nil
}

// Delete removes a data model by ID.
func (s *dataModelService) Delete(ctx context.Context, modelID string, opts ...RequestOption) error {
	if modelID == "" {
		return &ValidationError{Message: "data model ID cannot be empty"}
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	resp, err := s.transport.Do(ctx, &api.Request{
		Method:  http.MethodDelete,
		Path:    "/data_models/" + url.PathEscape(modelID),
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
