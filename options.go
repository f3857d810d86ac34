package panther

import (
	"net/http"
	"time"
)

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	domain     string
	apiToken   string
	graphqlURL string
	restURL    string
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
}

// WithDomain sets the Panther instance domain, e.g. "acme.runpanther.net".
// The domain must not include a URL scheme.
func WithDomain(domain string) ClientOption {
	return func(c *clientConfig) {
		c.domain = domain
	}
}

// WithAPIToken sets the Panther API token.
func WithAPIToken(token string) ClientOption {
	return func(c *clientConfig) {
		c.apiToken = token
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the default request timeout.
// Note: This option is ignored when WithHTTPClient is used;
// set the timeout directly on the provided client instead.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithGraphQLURL overrides the GraphQL endpoint URL derived from the
// domain. Useful when requests are routed through a proxy.
func WithGraphQLURL(url string) ClientOption {
	return func(c *clientConfig) {
		c.graphqlURL = url
	}
}

// WithRESTURL overrides the REST base URL derived from the domain. Useful
// when requests are routed through a proxy.
func WithRESTURL(url string) ClientOption {
	return func(c *clientConfig) {
		c.restURL = url
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *clientConfig) {
		c.userAgent = ua
	}
}

// RequestOption configures individual API requests.
type RequestOption func(*requestConfig)

type requestConfig struct {
	headers http.Header
}

func newRequestConfig() *requestConfig {
	return &requestConfig{
		headers: make(http.Header),
	}
}

func (r *requestConfig) apply(opts ...RequestOption) {
	for _, opt := range opts {
		opt(r)
	}
}

// WithHeader adds a custom header to a request.
func WithHeader(key, value string) RequestOption {
	return func(r *requestConfig) {
		r.headers.Set(key, value)
	}
}

// WithRequestID sets the X-Request-ID header for tracing.
func WithRequestID(id string) RequestOption {
	return WithHeader("X-Request-ID", id)
}
