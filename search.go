package panther

import (
	"context"
	"time"
)

// Poll cadence for Execute when no explicit interval is configured: short
// queries resolve within the first few one-second polls, long queries drop
// to a ten-second cadence so we stop hammering the endpoint.
const (
	fastPollInterval = 1 * time.Second
	slowPollInterval = 10 * time.Second
	fastPollCount    = 20
)

// QueryStatus is the backend-reported lifecycle state of a data lake query.
// The set of values is defined by the platform; this client interprets the
// known ones and surfaces anything else verbatim.
type QueryStatus string

const (
	QueryRunning   QueryStatus = "running"
	QuerySucceeded QueryStatus = "succeeded"
	QueryFailed    QueryStatus = "failed"
	QueryCancelled QueryStatus = "cancelled"
)

// Row is a single result record. Column names and types are defined by the
// query's projection.
type Row map[string]any

// QueryResults is a point-in-time observation of a data lake query. Rows is
// nil unless Status is QuerySucceeded, in which case it holds every result
// row across all pages, in the order the backend returned them.
type QueryResults struct {
	QueryID string
	Status  QueryStatus
	Message string
	Rows    []Row
}

// QueryProgress receives status updates while Execute waits for a query to
// finish. Useful for external diagnostics during long waits.
type QueryProgress struct {
	QueryID string
	Status  QueryStatus
	Message string
	Polls   int
}

// ExecuteOption configures SearchService.Execute.
type ExecuteOption func(*executeConfig)

type executeConfig struct {
	pollInterval time.Duration
	intervalSet  bool
	progress     *QueryProgress
}

// WithPollInterval sets a fixed interval between status polls, replacing the
// default escalating cadence. The interval must be positive.
func WithPollInterval(d time.Duration) ExecuteOption {
	return func(c *executeConfig) {
		c.pollInterval = d
		c.intervalSet = true
	}
}

// WithProgress registers a record that is updated with the most recently
// observed status and message after every poll.
func WithProgress(p *QueryProgress) ExecuteOption {
	return func(c *executeConfig) {
		c.progress = p
	}
}

// SearchService executes SQL queries against the Panther data lake.
//
// Queries run asynchronously on the backend: Submit starts one, Results
// observes it, and Execute combines the two into a blocking call.
type SearchService interface {
	// Submit starts an asynchronous data lake query and returns its ID.
	// SQL content is not validated client-side; whether it compiles is the
	// data lake's concern.
	Submit(ctx context.Context, sql string, opts ...RequestOption) (string, error)

	// Results fetches the current status of a query and, once it has
	// succeeded, all of its result rows. For any other status the returned
	// QueryResults carries the status and message with nil Rows.
	Results(ctx context.Context, queryID string, opts ...RequestOption) (*QueryResults, error)

	// Execute submits a query, polls until it leaves the running state, and
	// returns its rows. A cancelled query yields *QueryCancelledError; a
	// failed or unrecognized terminal status yields *QueryFailedError.
	//
	// Execute blocks for the whole wait. Cancelling ctx interrupts the wait
	// but does not cancel the query, which keeps running on the backend.
	// Transport failures during polling abort the wait immediately; no
	// retry policy is applied here.
	Execute(ctx context.Context, sql string, opts ...ExecuteOption) ([]Row, error)
}

// searchService implements SearchService.
type searchService struct {
	gql *gqlExecutor
}

func newSearchService(gql *gqlExecutor) *searchService {
	return &searchService{gql: gql}
}

// executeQueryResponse is the wire shape of the queries/execute mutation.
type executeQueryResponse struct {
	ExecuteDataLakeQuery struct {
		ID string `json:"id"`
	} `json:"executeDataLakeQuery"`
}

// queryResultsResponse is the wire shape of the queries/results query.
type queryResultsResponse struct {
	DataLakeQuery struct {
		Status  QueryStatus `json:"status"`
		Message string      `json:"message"`
		Results *struct {
			Edges []struct {
				Node Row `json:"node"`
			} `json:"edges"`
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
		} `json:"results"`
	} `json:"dataLakeQuery"`
}

// Submit starts an asynchronous data lake query.
func (s *searchService) Submit(ctx context.Context, sql string, opts ...RequestOption) (string, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var result executeQueryResponse
	err := s.gql.execute(ctx, "queries/execute", map[string]any{"sql": sql}, reqCfg.headers, &result)
	if err != nil {
		return "", err
	}

	return result.ExecuteDataLakeQuery.ID, nil
}

// Results fetches the status and, on success, the full result set of a query.
func (s *searchService) Results(ctx context.Context, queryID string, opts ...RequestOption) (*QueryResults, error) {
	// Result lookups require the hyphenated ID form.
	queryID, err := HyphenatedID(queryID)
	if err != nil {
		return nil, err
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	vars := map[string]any{"id": queryID}

	var resp queryResultsResponse
	if err := s.gql.execute(ctx, "queries/results", vars, reqCfg.headers, &resp); err != nil {
		return nil, err
	}

	query := resp.DataLakeQuery
	results := &QueryResults{
		QueryID: queryID,
		Status:  query.Status,
		Message: query.Message,
	}

	if query.Status != QuerySucceeded {
		return results, nil
	}

	// Page through the result set, passing each response's cursor back
	// verbatim until the backend reports no further pages. Row order is
	// preserved exactly as returned.
	rows := make([]Row, 0)
	for query.Results != nil {
		for _, edge := range query.Results.Edges {
			rows = append(rows, edge.Node)
		}
		if !query.Results.PageInfo.HasNextPage {
			break
		}
		vars["cursor"] = query.Results.PageInfo.EndCursor

		resp = queryResultsResponse{}
		if err := s.gql.execute(ctx, "queries/results", vars, reqCfg.headers, &resp); err != nil {
			return nil, err
		}
		query = resp.DataLakeQuery
	}

	results.Rows = rows
	return results, nil
}

// Execute submits a query and blocks until it completes.
func (s *searchService) Execute(ctx context.Context, sql string, opts ...ExecuteOption) ([]Row, error) {
	cfg := &executeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.intervalSet && cfg.pollInterval <= 0 {
		return nil, &ValidationError{Message: "poll interval must be positive"}
	}

	queryID, err := s.Submit(ctx, sql)
	if err != nil {
		return nil, err
	}
	if cfg.progress != nil {
		cfg.progress.QueryID = queryID
	}

	for attempt := 0; ; attempt++ {
		results, err := s.Results(ctx, queryID)
		if err != nil {
			return nil, err
		}

		if cfg.progress != nil {
			cfg.progress.Status = results.Status
			cfg.progress.Message = results.Message
			cfg.progress.Polls = attempt + 1
		}

		switch results.Status {
		case QueryRunning:
			if err := sleepContext(ctx, pollDelay(cfg, attempt)); err != nil {
				return nil, err
			}
		case QuerySucceeded:
			return results.Rows, nil
		case QueryCancelled:
			return nil, &QueryCancelledError{Message: results.Message}
		case QueryFailed:
			return nil, &QueryFailedError{Status: results.Status, Message: results.Message}
		default:
			return nil, &QueryFailedError{
				Status:  results.Status,
				Message: "unexpected query status: " + results.Message,
			}
		}
	}
}

// pollDelay returns the wait before the next poll. With no explicit
// interval, the cadence is one second for the first twenty polls, then ten
// seconds.
func pollDelay(cfg *executeConfig, attempt int) time.Duration {
	if cfg.intervalSet {
		return cfg.pollInterval
	}
	if attempt < fastPollCount {
		return fastPollInterval
	}
	return slowPollInterval
}

// sleepContext blocks for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
