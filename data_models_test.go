package panther_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/go-panther"
)

func TestDataModelService_List(t *testing.T) {
	callCount := 0
	client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		callCount++
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/data_models", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		var page map[string]any
		switch callCount {
		case 1:
			page = map[string]any{
				"results": []map[string]any{{"id": "Standard.AWS"}},
				"next":    "cursor-1",
			}
		default:
			assert.Equal(t, "cursor-1", r.URL.Query().Get("cursor"))
			page = map[string]any{
				"results": []map[string]any{{"id": "Standard.Okta"}},
			}
		}
		require.NoError(t, json.NewEncoder(w).Encode(page))
	})

	models, err := client.DataModels.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, callCount)

	require.Len(t, models, 2)
	assert.Equal(t, "Standard.AWS", models[0].ID)
	assert.Equal(t, "Standard.Okta", models[1].ID)
}

func TestDataModelService_Get(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/data_models/Standard.AWS", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id": "Standard.AWS", "enabled": true, "logTypes": ["AWS.CloudTrail"]}`))
		})

		model, err := client.DataModels.Get(context.Background(), "Standard.AWS")
		require.NoError(t, err)
		assert.Equal(t, "Standard.AWS", model.ID)
		assert.True(t, model.Enabled)
	})

	t.Run("not found", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := client.DataModels.Get(context.Background(), "No.Such.Model")
		var notFound *panther.EntityNotFoundError
		require.ErrorAs(t, err, &notFound)
	})
}

func TestDataModelService_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/data_models", r.URL.Path)

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Standard.AWS", body["id"])

			mappings, ok := body["mappings"].([]any)
			require.True(t, ok)
			require.Len(t, mappings, 1)
			assert.Equal(t, map[string]any{"name": "source_ip", "path": "sourceIPAddress"}, mappings[0])

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id": "Standard.AWS"}`))
		})

		model, err := client.DataModels.Create(context.Background(), &panther.CreateDataModelRequest{
			ID:       "Standard.AWS",
			LogTypes: []string{"AWS.CloudTrail"},
			Mappings: []panther.DataModelMapping{
				{Name: "source_ip", Path: "sourceIPAddress"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "Standard.AWS", model.ID)
	})

	t.Run("ID already in use", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"message": "id is taken"}`))
		})

		_, err := client.DataModels.Create(context.Background(), &panther.CreateDataModelRequest{ID: "Standard.AWS"})
		var exists *panther.EntityAlreadyExistsError
		require.ErrorAs(t, err, &exists)
	})
}

func TestDataModelService_Update(t *testing.T) {
	t.Run("renames via new ID", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "/data_models/Standard.AWS", r.URL.Path)

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Standard.AWSv2", body["id"])

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id": "Standard.AWSv2"}`))
		})

		model, err := client.DataModels.Update(context.Background(), "Standard.AWS", &panther.UpdateDataModelRequest{
			NewID: "Standard.AWSv2",
		})
		require.NoError(t, err)
		assert.Equal(t, "Standard.AWSv2", model.ID)
	})

	t.Run("update-only fails on missing model", func(t *testing.T) {
		callCount := 0
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			callCount++
			assert.Equal(t, http.MethodGet, r.Method)
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := client.DataModels.Update(context.Background(), "No.Such.Model", &panther.UpdateDataModelRequest{
			UpdateOnly: true,
		})
		var notFound *panther.EntityNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, 1, callCount)
	})
}

func TestDataModelService_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/data_models/Standard.AWS", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		})

		require.NoError(t, client.DataModels.Delete(context.Background(), "Standard.AWS"))
	})

	t.Run("not found", func(t *testing.T) {
		client := setupTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		err := client.DataModels.Delete(context.Background(), "No.Such.Model")
		var notFound *panther.EntityNotFoundError
		require.ErrorAs(t, err, &notFound)
	})
}
