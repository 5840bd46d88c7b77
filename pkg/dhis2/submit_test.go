package dhis2

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracksync/bridge/pkg/errors"
	"github.com/tracksync/bridge/pkg/types"
)

func TestSubmitTrackedEntityInstances(t *testing.T) {
	var got map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/trackedEntityInstances", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"httpStatusCode":200,"response":{"importSummaries":[{"reference":"t1","status":"SUCCESS","importCount":{"imported":1}}]}}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "admin", "district")
	require.NoError(t, err)

	err = client.SubmitTrackedEntityInstances(context.Background(), []types.TrackedEntityInstance{
		{TrackedEntityInstance: "t1", OrgUnit: "ou1"},
	})
	require.NoError(t, err)
	assert.Contains(t, got, "trackedEntityInstances")
}

func TestSubmitNothingIsANoOp(t *testing.T) {
	// No server: an empty payload must not produce a request at all.
	client, err := NewClient("http://localhost:1", "admin", "district")
	require.NoError(t, err)

	assert.NoError(t, client.SubmitTrackedEntityInstances(context.Background(), nil))
	assert.NoError(t, client.SubmitEnrollments(context.Background(), nil))
	assert.NoError(t, client.SubmitEvents(context.Background(), nil))
}

func TestSubmitConflictIsLoggedNotFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"httpStatusCode":409,"response":{"importSummaries":[{"reference":"e1","status":"ERROR","conflicts":[{"object":"dataValue","value":"value_not_numeric"}]}]}}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "admin", "district")
	require.NoError(t, err)

	err = client.SubmitEvents(context.Background(), []types.Event{{Event: "e1"}})
	assert.NoError(t, err)
}

func TestSubmitServerErrorIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"httpStatusCode":500,"message":"boom"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "admin", "district")
	require.NoError(t, err)

	err = client.SubmitEnrollments(context.Background(), []types.Enrollment{{Enrollment: "en1"}})
	var apiErr *errors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestSubmitBodyStatusOverridesHTTPStatus(t *testing.T) {
	// Some deployments answer 200 while the body carries the real outcome.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"httpStatusCode":409,"response":{"importSummaries":[]}}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "admin", "district")
	require.NoError(t, err)

	assert.NoError(t, client.SubmitEvents(context.Background(), []types.Event{{Event: "e1"}}))
}
