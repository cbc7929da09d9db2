package mysql

import (
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildChecksummedEvent(t byte, body []byte, flags uint16) []byte {
	ev := make([]byte, 19+len(body)+_BINLOG_CHECKSUM_LENGTH)
	ev[_EVENT_TYPE_OFFSET] = t
	binary.LittleEndian.PutUint16(ev[_FLAGS_OFFSET:], flags)
	copy(ev[19:], body)

	beg := len(ev) - _BINLOG_CHECKSUM_LENGTH
	binary.LittleEndian.PutUint32(ev[beg:], crc32.ChecksumIEEE(ev[:beg]))
	return ev
}

func TestChecksumOffAlwaysPasses(t *testing.T) {
	c := new(checksumOff)
	assert.Equal(t, uint8(BINLOG_CHECKSUM_ALG_OFF), c.algorithm())
	assert.True(t, c.test([]byte{1, 2, 3, 4, 5, 6, 7, 8}))
	assert.True(t, c.test(nil))
}

func TestChecksumCRC32IEEEVerifiesOrdinaryEvent(t *testing.T) {
	c := new(checksumCRC32IEEE)
	assert.Equal(t, uint8(BINLOG_CHECKSUM_ALG_CRC32), c.algorithm())

	ev := buildChecksummedEvent(XID_EVENT, []byte{1, 2, 3, 4, 5, 6, 7, 8}, 0)
	assert.True(t, c.test(ev))

	// flipping a body byte must invalidate the checksum
	ev[20] ^= 0xff
	assert.False(t, c.test(ev))
}

// buildColumnDefinitionPacket constructs a minimal, all-empty column
// definition packet: enough for parseColumnDefinitionPacket to decode
// without caring what it actually describes.
func buildColumnDefinitionPacket() []byte {
	b := make([]byte, 6+1+2+4+1+2+1+2) // 6 empty lenenc strings + lenenc 0 + fixed tail
	off := 0
	for i := 0; i < 6; i++ {
		off += putLenencString(b[off:], "")
	}
	off += putLenencInt(b[off:], 0) // fixedLenFieldLength
	off += 2                        // charset
	off += 4                        // columnLength
	off += 1                        // columnType
	off += 2                        // flags
	off += 1                        // decimals
	off += 2                        // filler
	return b[:off]
}

func buildEOFPacket() []byte {
	return []byte{_PACKET_EOF, 0, 0, 0, 0}
}

func buildResultSetRowPacket(values ...string) []byte {
	b := make([]byte, 0, 32)
	for _, v := range values {
		tmp := make([]byte, 1+len(v))
		n := putLenencString(tmp, v)
		b = append(b, tmp[:n]...)
	}
	return b
}

func TestEnsureReplicationEnabledSucceedsWithMasterStatusRow(t *testing.T) {
	colCount := []byte{1}
	colDef := buildColumnDefinitionPacket()
	eof1 := buildEOFPacket()
	row := buildResultSetRowPacket("binlog.000003")
	eof2 := buildEOFPacket()

	rw := &fakeReadWriter{in: concatFrames(
		frame(1, colCount),
		frame(2, colDef),
		frame(3, eof1),
		frame(4, row),
		frame(5, eof2),
	)}
	c := &Conn{rw: rw}

	assert.NoError(t, ensureReplicationEnabled(c))
}

func TestEnsureReplicationEnabledFailsOnEmptyMasterStatus(t *testing.T) {
	colCount := []byte{1}
	colDef := buildColumnDefinitionPacket()
	eof1 := buildEOFPacket()
	eof2 := buildEOFPacket()

	rw := &fakeReadWriter{in: concatFrames(
		frame(1, colCount),
		frame(2, colDef),
		frame(3, eof1),
		frame(4, eof2),
	)}
	c := &Conn{rw: rw}

	err := ensureReplicationEnabled(c)
	var myErr *Error
	require.ErrorAs(t, err, &myErr)
	assert.Equal(t, ErrReplicationDisabled, myErr.Code())
}

func concatFrames(frames ...[]byte) []byte {
	var b []byte
	for _, f := range frames {
		b = append(b, f...)
	}
	return b
}

func TestChecksumCRC32IEEEIgnoresBinlogInUseFlagOnFormatDescriptionEvent(t *testing.T) {
	c := new(checksumCRC32IEEE)

	// compute the checksum with the flag clear, then set it afterwards: the
	// server does this too, since LOG_EVENT_BINLOG_IN_USE_F is only known
	// once the file is actually opened for writing, after the checksum was
	// already computed.
	ev := buildChecksummedEvent(FORMAT_DESCRIPTION_EVENT, []byte{1, 2, 3, 4}, 0)
	flags := binary.LittleEndian.Uint16(ev[_FLAGS_OFFSET:])
	binary.LittleEndian.PutUint16(ev[_FLAGS_OFFSET:], flags|_LOG_EVENT_BINLOG_IN_USE_F)

	assert.True(t, c.test(ev))
}
