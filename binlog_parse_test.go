package mysql

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func putEventHeader(buf []byte, timestamp uint32, type_ uint8, serverId, size, position uint32, flags uint16) {
	binary.LittleEndian.PutUint32(buf[0:], timestamp)
	buf[4] = type_
	binary.LittleEndian.PutUint32(buf[5:], serverId)
	binary.LittleEndian.PutUint32(buf[9:], size)
	binary.LittleEndian.PutUint32(buf[13:], position)
	binary.LittleEndian.PutUint16(buf[17:], flags)
}

func TestParseEventHeader(t *testing.T) {
	buf := make([]byte, 19)
	putEventHeader(buf, 1700000000, XID_EVENT, 7, 27, 98765, 0)

	header, off := parseEventHeader(buf)
	assert.Equal(t, 19, off)
	assert.Equal(t, uint32(1700000000), header.timestamp)
	assert.Equal(t, uint8(XID_EVENT), header.type_)
	assert.Equal(t, uint32(7), header.serverId)
	assert.Equal(t, uint32(27), header.size)
	assert.Equal(t, uint32(98765), header.position)
}

func TestParseRotateEvent(t *testing.T) {
	b := new(Binlog)
	buf := make([]byte, 8+len("mysql-bin.000002"))
	binary.LittleEndian.PutUint64(buf, 4)
	copy(buf[8:], "mysql-bin.000002")

	ev := new(RotateEvent)
	require.NoError(t, b.parseRotateEvent(buf, ev))
	assert.Equal(t, uint64(4), ev.NextPosition())
	assert.Equal(t, "mysql-bin.000002", ev.NextFile())
}

func TestParseFormatDescriptionEvent(t *testing.T) {
	b := new(Binlog)

	serverVersion := "8.0.34-0ubuntu0.22.04.1"
	buf := make([]byte, 2+50+4+1+5)
	binary.LittleEndian.PutUint16(buf, 4)
	copy(buf[2:], serverVersion)
	binary.LittleEndian.PutUint32(buf[52:], 1700000000)
	buf[56] = 19 // commonHeaderLength
	// post-header-length array (one entry per event type, padded) plus the
	// trailing checksum-algorithm descriptor byte; their values aren't
	// asserted on, only that the parser keeps all 5 trailing bytes.
	copy(buf[57:], []byte{1, 1, 1, 1, 1})

	ev := new(FormatDescriptionEvent)
	require.NoError(t, b.parseFormatDescriptionEvent(buf, ev))
	assert.Equal(t, uint16(4), ev.BinlogVersion())
	assert.Equal(t, serverVersion, ev.ServerVersion()[:len(serverVersion)])
	assert.Equal(t, time.Unix(1700000000, 0), ev.CreationTime())
	assert.Equal(t, uint8(19), ev.commonHeaderLength)
	assert.Len(t, ev.postHeaderLength, 5)
}

// buildTableMapEvent constructs the body of a TABLE_MAP_EVENT for a
// two-column table: an INT column followed by a VARCHAR(255) column.
func buildTableMapEvent(tableId uint64, schema, table string) []byte {
	buf := make([]byte, 0, 64)

	tid := make([]byte, 8)
	binary.LittleEndian.PutUint64(tid, tableId)
	buf = append(buf, tid[:6]...) // 6-byte table id

	flags := make([]byte, 2)
	binary.LittleEndian.PutUint16(flags, 0)
	buf = append(buf, flags...)

	buf = append(buf, byte(len(schema)))
	buf = append(buf, []byte(schema)...)
	buf = append(buf, 0)

	buf = append(buf, byte(len(table)))
	buf = append(buf, []byte(table)...)
	buf = append(buf, 0)

	// column count (lenenc, 2 columns)
	buf = append(buf, 2)

	// column types
	buf = append(buf, byte(_TYPE_LONG), byte(_TYPE_VARCHAR))

	// metadata block: total byte length (lenenc), then per-column metadata
	// sized per getMetaDataSize. _TYPE_LONG carries no metadata;
	// _TYPE_VARCHAR carries a little-endian uint16 max length.
	meta := make([]byte, 2)
	binary.LittleEndian.PutUint16(meta, 255)
	buf = append(buf, byte(len(meta)))
	buf = append(buf, meta...)

	// null bitmap, one bit per column, both nullable.
	buf = append(buf, 0x03)

	return buf
}

func TestParseTableMapEvent(t *testing.T) {
	b := new(Binlog)
	b.desc.postHeaderLength = make([]byte, 40)
	b.desc.postHeaderLength[TABLE_MAP_EVENT-1] = 8 // not 6: use the 6-byte table id path

	buf := buildTableMapEvent(42, "appdb", "users")

	ev := new(TableMapEvent)
	ev.header.type_ = TABLE_MAP_EVENT
	require.NoError(t, b.parseTableMapEvent(buf, ev))

	assert.Equal(t, uint64(42), ev.TableId())
	assert.Equal(t, "appdb", ev.Schema())
	assert.Equal(t, "users", ev.Table())
	assert.Equal(t, uint64(2), ev.ColumnCount())
	require.Len(t, ev.columns, 2)
	assert.Equal(t, uint8(_TYPE_LONG), ev.columns[0].type_)
	assert.Equal(t, uint8(_TYPE_VARCHAR), ev.columns[1].type_)
	assert.Equal(t, uint16(255), ev.columns[1].meta)
}

// buildWriteRowsEvent constructs the body of a WRITE_ROWS_EVENT carrying a
// single row: (id=7, name="alice") against the table map built above.
func buildWriteRowsEvent(tableId uint64) []byte {
	buf := make([]byte, 0, 32)

	tid := make([]byte, 8)
	binary.LittleEndian.PutUint64(tid, tableId)
	buf = append(buf, tid[:6]...)

	flags := make([]byte, 2)
	buf = append(buf, flags...)

	// column count (lenenc, 2 columns)
	buf = append(buf, 2)

	// columns-present bitmap, 2 columns, both present
	buf = append(buf, 0x03)

	// row: null bitmap (no nulls), then id (int32 LE), then varchar (1-byte
	// length prefix since max length 255 fits in one byte, followed by bytes)
	buf = append(buf, 0x00)

	id := make([]byte, 4)
	binary.LittleEndian.PutUint32(id, 7)
	buf = append(buf, id...)

	buf = append(buf, byte(len("alice")))
	buf = append(buf, []byte("alice")...)

	return buf
}

func TestParseRowsEventWriteRows(t *testing.T) {
	b := new(Binlog)
	b.desc.postHeaderLength = make([]byte, 40)
	b.desc.postHeaderLength[TABLE_MAP_EVENT-1] = 8
	b.desc.postHeaderLength[WRITE_ROWS_EVENT-1] = 8 // neither 6 nor 10: 6-byte table id, no extraData

	tmBuf := buildTableMapEvent(42, "appdb", "users")
	tm := new(TableMapEvent)
	tm.header.type_ = TABLE_MAP_EVENT
	require.NoError(t, b.parseTableMapEvent(tmBuf, tm))
	b.tableMaps = map[uint64]*TableMapEvent{42: tm}

	rowsBuf := buildWriteRowsEvent(42)
	ev := new(RowsEvent)
	ev.header.type_ = WRITE_ROWS_EVENT
	require.NoError(t, b.parseRowsEvent(rowsBuf, ev))

	require.Equal(t, 1, ev.Image().Count())
	cols := ev.Image().At(0).Columns()
	require.Len(t, cols, 2)
	assert.Equal(t, int32(7), cols[0])
	assert.Equal(t, "alice", cols[1])
	// WRITE_ROWS has no separate after-image; it mirrors the only image.
	assert.Equal(t, cols, ev.AfterImage().At(0).Columns())
}
