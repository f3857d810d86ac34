package panther

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tphakala/go-panther/internal/api"
)

// restPageSize is the page size requested from REST list endpoints.
const restPageSize = 50

// restPage is the wire shape of one cursor page of a REST list endpoint.
type restPage[T any] struct {
	Results []T    `json:"results"`
	Next    string `json:"next,omitempty"`
}

// listRESTPages follows a REST list endpoint's `next` cursor to the end and
// returns the concatenated results.
func listRESTPages[T any](ctx context.Context, transport *api.Transport, path string, headers http.Header) ([]T, error) {
	items := make([]T, 0)
	cursor := ""

	for {
		query := url.Values{"limit": []string{strconv.Itoa(restPageSize)}}
		if cursor != "" {
			query.Set("cursor", cursor)
		}

		var page restPage[T]
		resp, err := transport.DoJSON(ctx, &api.Request{
			Method:  http.MethodGet,
			Path:    path,
			Query:   query,
			Headers: headers,
		}, &page)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, parseRESTError(resp.StatusCode, resp.Body)
		}

		items = append(items, page.Results...)
		if page.Next == "" {
			return items, nil
		}
		cursor = page.Next
	}
}
