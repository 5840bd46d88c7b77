package dhis2

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracksync/bridge/pkg/errors"
	"github.com/tracksync/bridge/pkg/types"
)

func TestPing(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/system/info", r.URL.Path)
		user, pass, _ := r.BasicAuth()
		assert.Equal(t, "admin", user)
		assert.Equal(t, "district", pass)
		_, _ = w.Write([]byte(`{"version":"2.40"}`))
	}))
	defer up.Close()

	client, err := NewClient(up.URL, "admin", "district")
	require.NoError(t, err)
	assert.NoError(t, client.Ping(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()

	client, err = NewClient(down.URL, "admin", "district")
	require.NoError(t, err)
	assert.ErrorIs(t, client.Ping(context.Background()), errors.ErrUnreachable)
}

func TestChunk(t *testing.T) {
	values := make([]string, 0, 120)
	for i := 0; i < 120; i++ {
		values = append(values, fmt.Sprintf("v%d", i))
	}

	chunks := chunk(values, 50)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 50)
	assert.Len(t, chunks[1], 50)
	assert.Len(t, chunks[2], 20)

	assert.Empty(t, chunk(nil, 50))
	assert.Len(t, chunk([]string{"a"}, 50), 1)
}

func TestTrackedEntityInstancesChunksRequests(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		assert.Equal(t, "/api/trackedEntityInstances", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("paging"))
		assert.Equal(t, "ALL", r.URL.Query().Get("ouMode"))
		assert.Contains(t, r.URL.Query().Get("filter"), "attID:IN:")
		_, _ = fmt.Fprintf(w, `{"trackedEntityInstances":[{"trackedEntityInstance":"t%d"}]}`, requests.Load())
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "admin", "district")
	require.NoError(t, err)

	ids := make([]string, 0, 70)
	for i := 0; i < 70; i++ {
		ids = append(ids, fmt.Sprintf("C%d", i))
	}

	entities, err := client.TrackedEntityInstances(context.Background(), "attID", ids)
	require.NoError(t, err)

	assert.EqualValues(t, 2, requests.Load())
	assert.Len(t, entities, 2)
}

func TestTrackedEntityInstancesNothingToLookUp(t *testing.T) {
	client, err := NewClient("http://localhost:8080", "admin", "district")
	require.NoError(t, err)

	entities, err := client.TrackedEntityInstances(context.Background(), "attID", nil)
	require.NoError(t, err)
	assert.Empty(t, entities)

	entities, err = client.TrackedEntityInstances(context.Background(), "", []string{"C1"})
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestTrackedEntityInstancesFailsOnAnyChunkError(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if requests.Add(1) == 1 {
			_, _ = w.Write([]byte(`{"trackedEntityInstances":[]}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "admin", "district")
	require.NoError(t, err)

	ids := make([]string, 0, 60)
	for i := 0; i < 60; i++ {
		ids = append(ids, fmt.Sprintf("C%d", i))
	}

	_, err = client.TrackedEntityInstances(context.Background(), "attID", ids)
	require.Error(t, err)
}

func TestMappingsFromDataStore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/dataStore/bridge/mappings", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":"progA","programType":"WITH_REGISTRATION"}]`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "admin", "district")
	require.NoError(t, err)

	mappings, err := client.Mappings(context.Background())
	require.NoError(t, err)
	require.Len(t, mappings, 1)
	assert.Equal(t, "progA", mappings[0].ID)
	assert.Equal(t, types.WithRegistration, mappings[0].ProgramType)
}

func TestLoadMappingsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- id: progA
  programType: WITH_REGISTRATION
  orgUnitStrategy: code
  createEntities: true
  programTrackedEntityAttributes:
    - column:
        value: patient_id
      trackedEntityAttribute:
        id: attID
        valueType: TEXT
        unique: true
`), 0o644))

	mappings, err := LoadMappingsFile(path)
	require.NoError(t, err)

	require.Len(t, mappings, 1)
	m := mappings[0]
	assert.Equal(t, "progA", m.ID)
	assert.Equal(t, types.StrategyCode, m.OrgUnitStrategy)
	assert.True(t, m.CreateEntities)
	col, ok := m.UniqueColumn()
	require.True(t, ok)
	assert.Equal(t, "patient_id", col)
}

func TestLoadMappingsFileMissing(t *testing.T) {
	_, err := LoadMappingsFile(filepath.Join(t.TempDir(), "absent.yaml"))
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}
