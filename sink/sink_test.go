package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSinkWritesNewlineDelimitedJSON(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONSink(&buf)

	ev := DecodedEvent{Kind: "XID_EVENT", Timestamp: time.Unix(1700000000, 0).UTC(), ServerId: 7, Position: 1234}
	require.NoError(t, s.Accept(context.Background(), ev))

	var got DecodedEvent
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, ev.Kind, got.Kind)
	assert.Equal(t, ev.ServerId, got.ServerId)
	assert.Equal(t, ev.Position, got.Position)
}

func TestJSONSinkRejectsCanceledContext(t *testing.T) {
	var buf bytes.Buffer
	s := NewJSONSink(&buf)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Accept(ctx, DecodedEvent{Kind: "XID_EVENT"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, buf.Bytes())
}

func TestChannelSinkDeliversAndClosesCleanly(t *testing.T) {
	s, out := NewChannelSink(1)
	ev := DecodedEvent{Kind: "ROTATE_EVENT", Position: 4}

	require.NoError(t, s.Accept(context.Background(), ev))

	select {
	case got := <-out:
		assert.Equal(t, ev, got)
	case <-time.After(time.Second):
		t.Fatal("did not receive event from channel sink")
	}

	s.(*channelSink).Close()
	_, ok := <-out
	assert.False(t, ok)
}

func TestChannelSinkBlocksUntilContextCanceled(t *testing.T) {
	s, _ := NewChannelSink(0)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := s.Accept(ctx, DecodedEvent{Kind: "XID_EVENT"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
