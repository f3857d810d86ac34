package panther

import (
	"context"
	"regexp"
	"strings"
)

// Validation patterns for S3 source onboarding. These mirror what the
// platform itself accepts; failing values are rejected before any network
// call.
var (
	sourceLabelPattern  = regexp.MustCompile(`^[ a-zA-Z\d-]+$`)
	awsAccountIDPattern = regexp.MustCompile(`^\d{12}$`)
	s3BucketNamePattern = regexp.MustCompile(`^[a-z\d][a-z\d.-]{1,61}[a-z\d]$`)
	iamRoleARNPattern   = regexp.MustCompile(`^arn:aws:iam::\d{12}:role/[\w+=,.@/-]{1,128}$`)
	kmsKeyARNPattern    = regexp.MustCompile(
		`^arn:aws:kms:[a-z]+-[a-z]+-\d:\d{12}:key/[a-f\d]{8}-[a-f\d]{4}-[a-f\d]{4}-[a-f\d]{4}-[a-f\d]{12}$`,
	)
)

// S3StreamType tells the log processor how objects in the bucket are framed.
type S3StreamType string

const (
	StreamAuto           S3StreamType = "Auto"
	StreamCloudWatchLogs S3StreamType = "CloudWatchLogs"
	StreamJSON           S3StreamType = "JSON"
	StreamJSONArray      S3StreamType = "JsonArray"
	StreamLines          S3StreamType = "Lines"
)

// streamTypes maps case-insensitive caller spellings to the canonical wire
// values.
var streamTypes = map[string]S3StreamType{
	"auto":           StreamAuto,
	"cloudwatchlogs": StreamCloudWatchLogs,
	"json":           StreamJSON,
	"jsonarray":      StreamJSONArray,
	"lines":          StreamLines,
}

// Source represents a log source integration.
type Source struct {
	ID        string `json:"integrationId"`
	Label     string `json:"integrationLabel"`
	Type      string `json:"integrationType,omitempty"`
	IsHealthy bool   `json:"isHealthy,omitempty"`
}

// S3PrefixConfig associates the log types Panther should classify under one
// bucket prefix.
type S3PrefixConfig struct {
	Prefix           string   `json:"prefix"`
	LogTypes         []string `json:"logTypes"`
	ExcludedPrefixes []string `json:"excludedPrefixes"`
}

// CreateS3SourceRequest contains data for onboarding an S3 bucket as a
// custom log source.
type CreateS3SourceRequest struct {
	// Label names the integration. Alphanumerics, dashes, and spaces only.
	Label string
	// AWSAccountID is the 12-digit ID of the account holding the bucket.
	AWSAccountID string
	// Bucket is the S3 bucket name.
	Bucket string
	// IAMRole is the ARN of the role Panther assumes to read the bucket.
	IAMRole string
	// PrefixConfigs maps bucket prefixes to log types. At least one entry
	// is required.
	PrefixConfigs []S3PrefixConfig
	// StreamType tells the log processor how objects are framed. Values are
	// matched case-insensitively against the allowed set.
	StreamType S3StreamType
	// ManageBucketNotifications lets Panther manage the SNS notification
	// topic. Set false to run your own notification pipeline.
	ManageBucketNotifications bool
	// KMSKey is the ARN of the key that decrypts the bucket contents, when
	// the bucket uses KMS encryption. Optional.
	KMSKey string
}

// SourceService provides operations on log source integrations.
type SourceService interface {
	// List returns every configured log source.
	List(ctx context.Context, opts ...RequestOption) ([]*Source, error)

	// Get retrieves a single log source by ID.
	Get(ctx context.Context, sourceID string, opts ...RequestOption) (*Source, error)

	// CreateS3 onboards an S3 bucket as a custom log source and returns the
	// new integration's ID.
	CreateS3(ctx context.Context, req *CreateS3SourceRequest, opts ...RequestOption) (string, error)

	// Delete removes a log source by ID.
	Delete(ctx context.Context, sourceID string, opts ...RequestOption) error
}

// sourceService implements SourceService.
type sourceService struct {
	gql *gqlExecutor
}

func newSourceService(gql *gqlExecutor) *sourceService {
	return &sourceService{gql: gql}
}

// List returns every configured log source. The API is shaped like a
// paginated connection but the backend returns all sources in one page.
func (s *sourceService) List(ctx context.Context, opts ...RequestOption) ([]*Source, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var result struct {
		Sources struct {
			Edges []struct {
				Node *Source `json:"node"`
			} `json:"edges"`
		} `json:"sources"`
	}
	err := s.gql.execute(ctx, "sources/list", map[string]any{"cursor": ""}, reqCfg.headers, &result)
	if err != nil {
		return nil, err
	}

	sources := make([]*Source, 0, len(result.Sources.Edges))
	for _, edge := range result.Sources.Edges {
		sources = append(sources, edge.Node)
	}
	return sources, nil
}

// Get retrieves a single log source by ID.
func (s *sourceService) Get(ctx context.Context, sourceID string, opts ...RequestOption) (*Source, error) {
	// Source lookups require the hyphenated ID form.
	sourceID, err := HyphenatedID(sourceID)
	if err != nil {
		return nil, err
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var result struct {
		Source *Source `json:"source"`
	}
	err = s.gql.execute(ctx, "sources/get", map[string]any{"id": sourceID}, reqCfg.headers, &result)
	if err != nil {
		return nil, err
	}

	return result.Source, nil
}

// CreateS3 onboards an S3 bucket as a custom log source.
func (s *sourceService) CreateS3(ctx context.Context, req *CreateS3SourceRequest, opts ...RequestOption) (string, error) {
	if req == nil {
		return "", &ValidationError{Message: "create request cannot be nil"}
	}
	if !sourceLabelPattern.MatchString(req.Label) {
		return "", &ValidationError{Message: "invalid label '" + req.Label + "': only alphanumerics, dashes, and spaces are allowed"}
	}
	if !awsAccountIDPattern.MatchString(req.AWSAccountID) {
		return "", &ValidationError{Message: "invalid AWS account ID: " + req.AWSAccountID}
	}
	if !s3BucketNamePattern.MatchString(req.Bucket) {
		return "", &ValidationError{Message: "invalid S3 bucket name: " + req.Bucket}
	}
	if !iamRoleARNPattern.MatchString(req.IAMRole) {
		return "", &ValidationError{Message: "invalid IAM role ARN: " + req.IAMRole}
	}
	if len(req.PrefixConfigs) == 0 {
		return "", &ValidationError{Message: "at least one prefix configuration is required"}
	}
	streamType, ok := streamTypes[strings.ToLower(string(req.StreamType))]
	if !ok {
		return "", &ValidationError{Message: "invalid stream type: " + string(req.StreamType)}
	}
	if req.KMSKey != "" && !kmsKeyARNPattern.MatchString(req.KMSKey) {
		return "", &ValidationError{Message: "invalid KMS key ARN: " + req.KMSKey}
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	prefixLogTypes := make([]map[string]any, 0, len(req.PrefixConfigs))
	for _, cfg := range req.PrefixConfigs {
		prefixLogTypes = append(prefixLogTypes, map[string]any{
			"prefix":           cfg.Prefix,
			"logTypes":         cfg.LogTypes,
			"excludedPrefixes": cfg.ExcludedPrefixes,
		})
	}

	input := map[string]any{
		"label":                      req.Label,
		"awsAccountId":               req.AWSAccountID,
		"s3Bucket":                   req.Bucket,
		"logProcessingRole":          req.IAMRole,
		"logStreamType":              streamType,
		"managedBucketNotifications": req.ManageBucketNotifications,
		"s3PrefixLogTypes":           prefixLogTypes,
	}
	if req.KMSKey != "" {
		input["kmsKey"] = req.KMSKey
	}

	var result struct {
		CreateS3Source struct {
			LogSource struct {
				IntegrationID string `json:"integrationId"`
			} `json:"logSource"`
		} `json:"createS3Source"`
	}
	err := s.gql.execute(ctx, "sources/s3/create", map[string]any{"input": input}, reqCfg.headers, &result)
	if err != nil {
		return "", err
	}

	return result.CreateS3Source.LogSource.IntegrationID, nil
}

// Delete removes a log source by ID.
func (s *sourceService) Delete(ctx context.Context, sourceID string, opts ...RequestOption) error {
	sourceID, err := HyphenatedID(sourceID)
	if err != nil {
		return err
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var result struct {
		DeleteSource struct {
			ID string `json:"id"`
		} `json:"deleteSource"`
	}
	return s.gql.execute(ctx, "sources/delete", map[string]any{"id": sourceID}, reqCfg.headers, &result)
}
