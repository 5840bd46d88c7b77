package runner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracksync/bridge/pkg/dhis2"
)

func TestScheduleStopsOnCancel(t *testing.T) {
	var pings atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/system/info" {
			pings.Add(1)
			_, _ = w.Write([]byte(`{"version":"2.40"}`))
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, err := dhis2.NewClient(server.URL, "admin", "district")
	require.NoError(t, err)
	r := New(client)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- r.Schedule(ctx, 10*time.Millisecond) }()

	// Let a few ticks run, then stop.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("schedule did not stop after cancellation")
	}
	assert.Positive(t, pings.Load())
}
