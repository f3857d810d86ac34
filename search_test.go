package panther_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-panther"
)

const testQueryID = "c73bcdcc-2669-4bf6-81d3-e4ae73fb11fd"

// queryResultsData builds the dataLakeQuery response payload for one page.
func queryResultsData(status, message string, rows []map[string]any, hasNext bool, endCursor string) map[string]any {
	query := map[string]any{
		"status":  status,
		"message": message,
	}
	if rows != nil {
		edges := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			edges = append(edges, map[string]any{"node": row})
		}
		query["results"] = map[string]any{
			"edges": edges,
			"pageInfo": map[string]any{
				"hasNextPage": hasNext,
				"endCursor":   endCursor,
			},
		}
	}
	return map[string]any{"dataLakeQuery": query}
}

func TestSearchService_Submit(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "test-api-token", r.Header.Get("X-API-Key"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			req := decodeGQLRequest(t, r)
			assert.Contains(t, req.Query, "executeDataLakeQuery")
			assert.Equal(t, "SELECT 1", req.Variables["sql"])

			writeGQLData(t, w, map[string]any{
				"executeDataLakeQuery": map[string]any{"id": testQueryID},
			})
		})

		queryID, err := client.Search.Submit(context.Background(), "SELECT 1")
		require.NoError(t, err)
		assert.Equal(t, testQueryID, queryID)
	})

	t.Run("access denied", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeGQLErrors(t, w, map[string]any{
				"message": "access denied",
				"path":    []any{"executeDataLakeQuery"},
			})
		})

		_, err := client.Search.Submit(context.Background(), "SELECT 1")
		var denied *panther.AccessDeniedError
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, "executeDataLakeQuery", denied.Method)
	})
}

func TestSearchService_Results(t *testing.T) {
	t.Run("invalid ID fails before any network call", func(t *testing.T) {
		callCount := 0
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			callCount++
		})

		_, err := client.Search.Results(context.Background(), "not-a-uuid")
		var idErr *panther.InvalidIDError
		require.ErrorAs(t, err, &idErr)
		assert.Equal(t, 0, callCount)
	})

	t.Run("compact ID sent hyphenated", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			req := decodeGQLRequest(t, r)
			assert.Equal(t, testQueryID, req.Variables["id"])
			writeGQLData(t, w, queryResultsData("running", "query is running", nil, false, ""))
		})

		compact := strings.ReplaceAll(testQueryID, "-", "")
		results, err := client.Search.Results(context.Background(), compact)
		require.NoError(t, err)
		assert.Equal(t, testQueryID, results.QueryID)
	})

	t.Run("running query returns status without rows", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeGQLData(t, w, queryResultsData("running", "query is still running", nil, false, ""))
		})

		results, err := client.Search.Results(context.Background(), testQueryID)
		require.NoError(t, err)
		assert.Equal(t, panther.QueryRunning, results.Status)
		assert.Equal(t, "query is still running", results.Message)
		assert.Nil(t, results.Rows)
	})

	t.Run("failed query returns status without rows", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeGQLData(t, w, queryResultsData("failed", "SQL compilation error", nil, false, ""))
		})

		results, err := client.Search.Results(context.Background(), testQueryID)
		require.NoError(t, err)
		assert.Equal(t, panther.QueryFailed, results.Status)
		assert.Equal(t, "SQL compilation error", results.Message)
		assert.Nil(t, results.Rows)
	})

	t.Run("succeeded query pages until exhausted", func(t *testing.T) {
		callCount := 0
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			callCount++
			req := decodeGQLRequest(t, r)

			switch callCount {
			case 1:
				assert.Nil(t, req.Variables["cursor"])
				writeGQLData(t, w, queryResultsData("succeeded", "done",
					[]map[string]any{{"n": "1"}, {"n": "2"}}, true, "cursor-1"))
			case 2:
				assert.Equal(t, "cursor-1", req.Variables["cursor"])
				writeGQLData(t, w, queryResultsData("succeeded", "done",
					[]map[string]any{{"n": "3"}}, true, "cursor-2"))
			case 3:
				assert.Equal(t, "cursor-2", req.Variables["cursor"])
				writeGQLData(t, w, queryResultsData("succeeded", "done",
					[]map[string]any{{"n": "4"}, {"n": "5"}}, false, ""))
			}
		})

		results, err := client.Search.Results(context.Background(), testQueryID)
		require.NoError(t, err)
		assert.Equal(t, 3, callCount)
		assert.Equal(t, panther.QuerySucceeded, results.Status)

		require.Len(t, results.Rows, 5)
		for i, want := range []string{"1", "2", "3", "4", "5"} {
			assert.Equal(t, want, results.Rows[i]["n"])
		}
	})

	t.Run("entity not found", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeGQLErrors(t, w, map[string]any{
				"message": "query with ID " + testQueryID + " does not exist",
			})
		})

		_, err := client.Search.Results(context.Background(), testQueryID)
		var notFound *panther.EntityNotFoundError
		require.ErrorAs(t, err, &notFound)
	})
}

func TestSearchService_Execute(t *testing.T) {
	t.Run("polls until succeeded", func(t *testing.T) {
		callCount := 0
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			callCount++
			switch callCount {
			case 1:
				writeGQLData(t, w, map[string]any{
					"executeDataLakeQuery": map[string]any{"id": testQueryID},
				})
			case 2, 3:
				writeGQLData(t, w, queryResultsData("running", "query is running", nil, false, ""))
			default:
				writeGQLData(t, w, queryResultsData("succeeded", "done",
					[]map[string]any{{"n": "1"}}, false, ""))
			}
		})

		var progress panther.QueryProgress
		rows, err := client.Search.Execute(context.Background(), "SELECT 1",
			panther.WithPollInterval(time.Millisecond),
			panther.WithProgress(&progress),
		)
		require.NoError(t, err)

		require.Len(t, rows, 1)
		assert.Equal(t, "1", rows[0]["n"])
		assert.Equal(t, 4, callCount)

		assert.Equal(t, testQueryID, progress.QueryID)
		assert.Equal(t, panther.QuerySucceeded, progress.Status)
		assert.Equal(t, "done", progress.Message)
		assert.Equal(t, 3, progress.Polls)
	})

	t.Run("matches direct submit and fetch", func(t *testing.T) {
		wantRows := []map[string]any{{"n": "1"}, {"n": "2"}}
		handler := func(w http.ResponseWriter, r *http.Request) {
			req := decodeGQLRequest(t, r)
			if strings.Contains(req.Query, "executeDataLakeQuery") {
				writeGQLData(t, w, map[string]any{
					"executeDataLakeQuery": map[string]any{"id": testQueryID},
				})
				return
			}
			writeGQLData(t, w, queryResultsData("succeeded", "done", wantRows, false, ""))
		}

		ctx := context.Background()

		client := setupTestClient(t, handler)
		queryID, err := client.Search.Submit(ctx, "SELECT 1")
		require.NoError(t, err)
		direct, err := client.Search.Results(ctx, queryID)
		require.NoError(t, err)

		executed, err := client.Search.Execute(ctx, "SELECT 1", panther.WithPollInterval(time.Millisecond))
		require.NoError(t, err)

		assert.Equal(t, direct.Rows, executed)
	})

	t.Run("failed query", func(t *testing.T) {
		client := setupTestClient(t, executeThenStatus(t, "failed", "SQL compilation error"))

		_, err := client.Search.Execute(context.Background(), "SELECT bogus",
			panther.WithPollInterval(time.Millisecond))

		var queryErr *panther.QueryFailedError
		require.ErrorAs(t, err, &queryErr)
		assert.Equal(t, panther.QueryFailed, queryErr.Status)
		assert.Equal(t, "SQL compilation error", queryErr.Message)
	})

	t.Run("cancelled query", func(t *testing.T) {
		client := setupTestClient(t, executeThenStatus(t, "cancelled", "cancelled by admin"))

		_, err := client.Search.Execute(context.Background(), "SELECT 1",
			panther.WithPollInterval(time.Millisecond))

		var cancelled *panther.QueryCancelledError
		require.ErrorAs(t, err, &cancelled)
		assert.Equal(t, "cancelled by admin", cancelled.Message)
	})

	t.Run("unrecognized terminal status", func(t *testing.T) {
		client := setupTestClient(t, executeThenStatus(t, "exploded", "something odd"))

		_, err := client.Search.Execute(context.Background(), "SELECT 1",
			panther.WithPollInterval(time.Millisecond))

		var queryErr *panther.QueryFailedError
		require.ErrorAs(t, err, &queryErr)
		assert.Equal(t, panther.QueryStatus("exploded"), queryErr.Status)
	})

	t.Run("non-positive poll interval fails before any network call", func(t *testing.T) {
		callCount := 0
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			callCount++
		})

		for _, interval := range []time.Duration{0, -time.Second} {
			_, err := client.Search.Execute(context.Background(), "SELECT 1",
				panther.WithPollInterval(interval))

			var validationErr *panther.ValidationError
			require.ErrorAs(t, err, &validationErr)
		}
		assert.Equal(t, 0, callCount)
	})

	t.Run("context cancellation interrupts the wait", func(t *testing.T) {
		client := setupTestClient(t, executeThenStatus(t, "running", "query is running"))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := client.Search.Execute(ctx, "SELECT 1",
			panther.WithPollInterval(10*time.Second))
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

// executeThenStatus answers the first call as a query submission and every
// later call with a fixed query status.
func executeThenStatus(t *testing.T, status, message string) http.HandlerFunc {
	t.Helper()
	first := true
	return func(w http.ResponseWriter, r *http.Request) {
		if first {
			first = false
			writeGQLData(t, w, map[string]any{
				"executeDataLakeQuery": map[string]any{"id": testQueryID},
			})
			return
		}
		writeGQLData(t, w, queryResultsData(status, message, nil, false, ""))
	}
}

func TestSearchService_SubmitGeneratedIDs(t *testing.T) {
	// Backend-issued IDs come back in hyphenated form and pass straight
	// into Results.
	id := uuid.NewString()
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeGQLRequest(t, r)
		if strings.Contains(req.Query, "executeDataLakeQuery") {
			writeGQLData(t, w, map[string]any{
				"executeDataLakeQuery": map[string]any{"id": id},
			})
			return
		}
		assert.Equal(t, id, req.Variables["id"])
		writeGQLData(t, w, queryResultsData("running", "query is running", nil, false, ""))
	})

	ctx := context.Background()
	queryID, err := client.Search.Submit(ctx, "SELECT 1")
	require.NoError(t, err)

	results, err := client.Search.Results(ctx, queryID)
	require.NoError(t, err)
	assert.Equal(t, panther.QueryRunning, results.Status)
}
