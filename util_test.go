package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPutLenencInt(t *testing.T) {
	tests := []struct {
		name string
		v    uint64
		n    int
	}{
		{"1-byte boundary", 250, 1},
		{"2-byte boundary low", 251, 3},
		{"2-byte boundary high", 1<<16 - 1, 3},
		{"3-byte boundary low", 1 << 16, 4},
		{"3-byte boundary high", 1<<24 - 1, 4},
		{"8-byte boundary low", 1 << 24, 9},
		{"8-byte large", 1<<32 + 7, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := make([]byte, 9)
			n := putLenencInt(b, tt.v)
			assert.Equal(t, tt.n, n)
			assert.Equal(t, tt.n, lenencIntSize(int(tt.v)))

			got, rn := getLenencInt(b)
			assert.Equal(t, tt.n, rn)
			assert.Equal(t, tt.v, got)
		})
	}
}

func TestGetNullTerminatedString(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		v    string
		n    int
	}{
		{"terminated mid-buffer", []byte("abc\x00def"), "abc", 4},
		{"empty string", []byte("\x00rest"), "", 1},
		{"no terminator at all", []byte("abc"), "abc", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, n := getNullTerminatedString(tt.in)
			assert.Equal(t, tt.v, v)
			assert.Equal(t, tt.n, n)
		})
	}
}

func TestPutNullTerminatedString(t *testing.T) {
	b := make([]byte, 10)
	n := putNullTerminatedString(b, "abc")
	assert.Equal(t, 4, n)
	assert.Equal(t, byte(0), b[3])

	v, rn := getNullTerminatedString(b)
	assert.Equal(t, "abc", v)
	assert.Equal(t, n, rn)
}

func TestIsNull(t *testing.T) {
	// bit 0 and bit 9 set
	bitmap := []byte{0x01, 0x02}
	assert.True(t, isNull(bitmap, 0, 0))
	assert.False(t, isNull(bitmap, 1, 0))
	assert.True(t, isNull(bitmap, 9, 0))
}

func TestSetBitCount(t *testing.T) {
	assert.Equal(t, uint16(0), setBitCount([]byte{0x00}))
	assert.Equal(t, uint16(8), setBitCount([]byte{0xff}))
	assert.Equal(t, uint16(3), setBitCount([]byte{0x07}))
}
