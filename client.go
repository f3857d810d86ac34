package panther

import (
	"net/http"
	"regexp"
	"time"

	"github.com/tphakala/go-panther/internal/api"
	"github.com/tphakala/go-panther/internal/auth"
	"github.com/tphakala/go-panther/internal/graphql"
)

// Default configuration values.
const defaultTimeout = 30 * time.Second

// Domains are bare hostnames; the transport schema is always https.
var domainPattern = regexp.MustCompile(`^[a-z][a-z0-9\-.]+[a-z0-9]$`)

// Client is the Panther API client.
type Client struct {
	// Search provides data lake query execution.
	Search SearchService
	// Alerts provides access to alert operations.
	Alerts AlertService
	// Databases describes the data lake databases, tables, and columns.
	Databases DatabaseService
	// Metrics retrieves platform metrics.
	Metrics MetricsService
	// Rules manages realtime detection rules.
	Rules RuleService
	// DataModels manages data models.
	DataModels DataModelService
	// Globals manages global helper modules.
	Globals GlobalService
	// Users provides access to console users.
	Users UserService
	// Roles provides access to RBAC roles.
	Roles RoleService
	// CloudAccounts provides access to cloud scanning accounts.
	CloudAccounts CloudAccountService
	// Sources manages log source integrations.
	Sources SourceService
	// Tokens manages the API token itself.
	Tokens TokenService

	creds *auth.Credentials
	gql   *gqlExecutor
	rest  *api.Transport
}

// NewClient creates a new Panther client with the given options.
func NewClient(opts ...ClientOption) (*Client, error) {
	cfg := &clientConfig{
		timeout: defaultTimeout,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.apiToken == "" {
		return nil, ErrNoAPIToken
	}

	if cfg.domain == "" {
		return nil, ErrNoDomain
	}

	if !domainPattern.MatchString(cfg.domain) {
		return nil, &ValidationError{
			Message: "invalid domain '" + cfg.domain + "': must be a bare hostname without a URL scheme, e.g. 'acme.runpanther.net'",
		}
	}

	creds := &auth.Credentials{APIToken: cfg.apiToken}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.timeout,
		}
	}

	graphqlURL := cfg.graphqlURL
	if graphqlURL == "" {
		graphqlURL = "https://api." + cfg.domain + "/public/graphql"
	}
	restURL := cfg.restURL
	if restURL == "" {
		restURL = "https://api." + cfg.domain
	}

	gqlTransport, err := graphql.NewTransport(graphqlURL, creds, httpClient)
	if err != nil {
		return nil, err
	}

	restTransport, err := api.NewTransport(restURL, creds, httpClient)
	if err != nil {
		return nil, err
	}

	if cfg.userAgent != "" {
		gqlTransport.UserAgent = cfg.userAgent
		restTransport.UserAgent = cfg.userAgent
	}

	client := &Client{
		creds: creds,
		gql:   &gqlExecutor{transport: gqlTransport},
		rest:  restTransport,
	}

	// Initialize services
	client.Search = newSearchService(client.gql)
	client.Alerts = newAlertService(client.gql)
	client.Databases = newDatabaseService(client.gql)
	client.Metrics = newMetricsService(client.gql)
	client.Rules = newRuleService(client.rest)
	client.DataModels = newDataModelService(client.rest)
	client.Globals = newGlobalService(client.rest)
	client.Users = newUserService(client.gql)
	client.Roles = newRoleService(client.gql)
	client.CloudAccounts = newCloudAccountService(client.gql)
	client.Sources = newSourceService(client.gql)
	client.Tokens = newTokenService(client.gql, client.creds)

	return client, nil
}

// GraphQLURL returns the configured GraphQL endpoint URL.
func (c *Client) GraphQLURL() string {
	return c.gql.transport.Endpoint.String()
}

// RESTBaseURL returns the configured REST API base URL.
func (c *Client) RESTBaseURL() string {
	return c.rest.BaseURL.String()
}
