// Package sink implements the downstream-pipeline collaborator that a
// tailing client hands decoded binlog events to. It stays decoupled from
// any particular transport: the default sink writes JSON lines to an
// io.Writer, and a channel-backed sink simulates a queue so backpressure
// can be exercised without a real broker.
package sink

import (
	"context"
	"encoding/json"
	"io"
	"time"

	vaquita "github.com/nchoubey/vaquita-replicate"
)

// DecodedEvent is the shape handed to a sink: enough of a binlog event's
// identity to log, serialize or route it without re-decoding the body.
type DecodedEvent struct {
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	ServerId  uint32    `json:"server_id"`
	Position  uint32    `json:"position"`
	Table     string    `json:"table,omitempty"`
	Schema    string    `json:"schema,omitempty"`
	RowCount  int       `json:"row_count,omitempty"`
}

// FromEvent builds a DecodedEvent out of a parsed binlog event, pulling
// table/schema/row-count out of the event types that carry them.
func FromEvent(re *vaquita.RawEvent, ev vaquita.Event) DecodedEvent {
	d := DecodedEvent{
		Kind:      re.Name(),
		Timestamp: ev.Time(),
		ServerId:  ev.ServerId(),
		Position:  ev.Position(),
	}

	switch e := ev.(type) {
	case *vaquita.TableMapEvent:
		d.Schema = e.Schema()
		d.Table = e.Table()
	case *vaquita.RowsEvent:
		d.RowCount = e.Image().Count()
	}
	return d
}

// EventSink is the interface a tailing client delivers decoded events to.
type EventSink interface {
	Accept(ctx context.Context, ev DecodedEvent) error
}

// jsonSink serializes each event as a single JSON line.
type jsonSink struct {
	w   io.Writer
	enc *json.Encoder
}

// NewJSONSink returns an EventSink that writes newline-delimited JSON to w.
func NewJSONSink(w io.Writer) EventSink {
	return &jsonSink{w: w, enc: json.NewEncoder(w)}
}

func (s *jsonSink) Accept(ctx context.Context, ev DecodedEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.enc.Encode(ev)
}

// channelSink forwards events over a bounded channel, blocking once the
// channel fills — the point being to make backpressure observable in
// tests without standing up a real queue.
type channelSink struct {
	ch chan DecodedEvent
}

// NewChannelSink returns an EventSink backed by a channel of the given
// capacity, along with the receiving end for a consumer to drain.
func NewChannelSink(capacity int) (EventSink, <-chan DecodedEvent) {
	ch := make(chan DecodedEvent, capacity)
	return &channelSink{ch: ch}, ch
}

func (s *channelSink) Accept(ctx context.Context, ev DecodedEvent) error {
	select {
	case s.ch <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the channel sink's channel so a consumer draining it sees
// the end of the stream. An Accept that sends after Close, or is blocked
// sending when Close runs, panics.
func (s *channelSink) Close() { close(s.ch) }
