package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeWithoutAddrIsNoopUntilContextDone(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := Serve(ctx, "")
	assert.NoError(t, err)
}

func TestServeStartsAndStopsHTTPServer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- Serve(ctx, "127.0.0.1:0") }()

	// give the listener goroutine a moment to start before tearing it down;
	// Serve itself has no "ready" signal to synchronize on.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after context cancellation")
	}
}

func TestCountersAreRegisteredAndIncrementable(t *testing.T) {
	before := testutil.ToFloat64(UpstreamErrors)
	UpstreamErrors.Inc()
	after := testutil.ToFloat64(UpstreamErrors)
	require.Equal(t, before+1, after)
}
