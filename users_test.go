package panther_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-panther"
)

func TestUserService_List(t *testing.T) {
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		req := decodeGQLRequest(t, r)
		assert.Contains(t, req.Query, "users")
		writeGQLData(t, w, map[string]any{
			"users": []map[string]any{
				{"id": "user-1", "email": "alice@example.com"},
				{"id": "user-2", "email": "bob@example.com"},
			},
		})
	})

	users, err := client.Users.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice@example.com", users[0].Email)
}

func TestUserService_Get(t *testing.T) {
	t.Run("by ID", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			req := decodeGQLRequest(t, r)
			assert.Contains(t, req.Query, "userById")
			assert.Equal(t, "user-1", req.Variables["id"])
			writeGQLData(t, w, map[string]any{
				"userById": map[string]any{"id": "user-1", "email": "alice@example.com"},
			})
		})

		user, err := client.Users.Get(context.Background(), "user-1")
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
	})

	t.Run("by email", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			req := decodeGQLRequest(t, r)
			assert.Contains(t, req.Query, "userByEmail")
			assert.Equal(t, "alice@example.com", req.Variables["email"])
			writeGQLData(t, w, map[string]any{
				"userByEmail": map[string]any{"id": "user-1", "email": "alice@example.com"},
			})
		})

		user, err := client.Users.Get(context.Background(), "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "user-1", user.ID)
	})
}

func TestUserService_Update(t *testing.T) {
	t.Run("role by name", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			req := decodeGQLRequest(t, r)
			assert.Contains(t, req.Query, "updateUser")

			input, ok := req.Variables["input"].(map[string]any)
			require.True(t, ok)
			assert.Equal(t, "user-1", input["id"])
			assert.Equal(t, "Alice", input["givenName"])
			assert.Equal(t, map[string]any{"kind": "NAME", "value": "Admin"}, input["role"])
			assert.NotContains(t, input, "email")

			writeGQLData(t, w, map[string]any{
				"updateUser": map[string]any{
					"id":        "user-1",
					"givenName": "Alice",
					"role":      map[string]any{"id": "role-1", "name": "Admin"},
				},
			})
		})

		user, err := client.Users.Update(context.Background(), "user-1", &panther.UpdateUserRequest{
			GivenName: "Alice",
			RoleName:  "Admin",
		})
		require.NoError(t, err)
		require.NotNil(t, user.Role)
		assert.Equal(t, "Admin", user.Role.Name)
	})

	t.Run("validation", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})

		ctx := context.Background()
		var validationErr *panther.ValidationError

		_, err := client.Users.Update(ctx, "", &panther.UpdateUserRequest{})
		require.ErrorAs(t, err, &validationErr)

		_, err = client.Users.Update(ctx, "user-1", nil)
		require.ErrorAs(t, err, &validationErr)

		// A role can be selected by ID or by name, not both.
		_, err = client.Users.Update(ctx, "user-1", &panther.UpdateUserRequest{
			RoleID:   "role-1",
			RoleName: "Admin",
		})
		require.ErrorAs(t, err, &validationErr)

		_, err = client.Users.Update(ctx, "user-1", &panther.UpdateUserRequest{
			Email: "not-an-email",
		})
		require.ErrorAs(t, err, &validationErr)
	})
}
