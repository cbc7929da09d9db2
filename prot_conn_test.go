package mysql

import (
	"bytes"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReadWriter serves reads from a canned byte stream and records writes,
// letting packet-framing tests run without a real or piped net.Conn.
type fakeReadWriter struct {
	in  []byte
	pos int
	out bytes.Buffer
}

func (rw *fakeReadWriter) read(c net.Conn, b []byte) (int, error) {
	n := copy(b, rw.in[rw.pos:])
	rw.pos += n
	if n < len(b) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

func (rw *fakeReadWriter) write(c net.Conn, b []byte) (int, error) {
	return rw.out.Write(b)
}

func (rw *fakeReadWriter) reset() {}

func frame(seqno byte, payload []byte) []byte {
	b := make([]byte, 4+len(payload))
	putUint24(b[0:3], uint32(len(payload)))
	b[3] = seqno
	copy(b[4:], payload)
	return b
}

func TestReadPacketReassemblesContinuationFrames(t *testing.T) {
	first := bytes.Repeat([]byte{0xAB}, _MAX_PAYLOAD_LENGTH)
	second := []byte{1, 2, 3}

	rw := &fakeReadWriter{in: append(frame(0, first), frame(1, second)...)}
	c := &Conn{rw: rw}

	payload, err := c.readPacket()
	require.NoError(t, err)
	assert.Equal(t, len(first)+len(second), len(payload))
	assert.Equal(t, first, payload[:len(first)])
	assert.Equal(t, second, payload[len(first):])
	assert.Equal(t, uint8(2), c.seqno)
}

func TestReadPacketSingleFrameBelowMax(t *testing.T) {
	rw := &fakeReadWriter{in: frame(0, []byte("hello"))}
	c := &Conn{rw: rw}

	payload, err := c.readPacket()
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), payload)
	assert.Equal(t, uint8(1), c.seqno)
}

func TestReadPacketRejectsOutOfSyncSequenceId(t *testing.T) {
	rw := &fakeReadWriter{in: frame(5, []byte("hello"))}
	c := &Conn{rw: rw}

	_, err := c.readPacket()
	var myErr *Error
	require.ErrorAs(t, err, &myErr)
	assert.Equal(t, ErrPacketOutOfSync, myErr.Code())
}

func TestWritePacketSplitsOversizedPayload(t *testing.T) {
	payload := bytes.Repeat([]byte{0xCD}, _MAX_PAYLOAD_LENGTH+3)

	rw := &fakeReadWriter{}
	c := &Conn{rw: rw}

	b := make([]byte, 4+len(payload))
	copy(b[4:], payload)
	require.NoError(t, c.writePacket(b))

	written := rw.out.Bytes()

	// first frame: max-sized payload, seq id 0
	assert.Equal(t, uint32(_MAX_PAYLOAD_LENGTH), getUint24(written[0:3]))
	assert.Equal(t, byte(0), written[3])

	// second (final) frame: the remainder, seq id 1
	secondOff := 4 + _MAX_PAYLOAD_LENGTH
	assert.Equal(t, uint32(3), getUint24(written[secondOff:secondOff+3]))
	assert.Equal(t, byte(1), written[secondOff+3])
	assert.Equal(t, uint8(2), c.seqno)
}

func TestWritePacketExactMaxSizeEndsWithEmptyFrame(t *testing.T) {
	payload := bytes.Repeat([]byte{0xEF}, _MAX_PAYLOAD_LENGTH)

	rw := &fakeReadWriter{}
	c := &Conn{rw: rw}

	b := make([]byte, 4+len(payload))
	copy(b[4:], payload)
	require.NoError(t, c.writePacket(b))

	written := rw.out.Bytes()
	secondOff := 4 + _MAX_PAYLOAD_LENGTH
	assert.Equal(t, uint32(0), getUint24(written[secondOff:secondOff+3]))
	assert.Equal(t, byte(1), written[secondOff+3])
}
