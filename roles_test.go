package panther_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleService_List(t *testing.T) {
	t.Run("all roles", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			req := decodeGQLRequest(t, r)
			input, ok := req.Variables["input"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "ascending", input["sortDir"])
			assert.NotContains(t, input, "nameContains")

			writeGQLData(t, w, map[string]any{
				"roles": []map[string]any{
					{"id": "role-1", "name": "Admin"},
					{"id": "role-2", "name": "Analyst"},
				},
			})
		})

		roles, err := client.Roles.List(context.Background(), "")
		require.NoError(t, err)
		require.Len(t, roles, 2)
		assert.Equal(t, "Admin", roles[0].Name)
	})

	t.Run("filtered by name", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			req := decodeGQLRequest(t, r)
			input, ok := req.Variables["input"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "Anal", input["nameContains"])

			writeGQLData(t, w, map[string]any{
				"roles": []map[string]any{{"id": "role-2", "name": "Analyst"}},
			})
		})

		roles, err := client.Roles.List(context.Background(), "Anal")
		require.NoError(t, err)
		require.Len(t, roles, 1)
		assert.Equal(t, "Analyst", roles[0].Name)
	})
}
