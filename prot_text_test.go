package mysql

import (
	"database/sql/driver"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEscapeString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{"plain", "hello", "hello"},
		{"single quote", "o'brien", `o\'brien`},
		{"double quote", `say "hi"`, `say \"hi\"`},
		{"backslash", `a\b`, `a\\b`},
		{"newline and cr", "a\nb\rc", `a\nb\rc`},
		{"nul byte", "a\x00b", `a\0b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.out, escapeString(tt.in))
		})
	}
}

func TestStringifyQuotesAndEscapes(t *testing.T) {
	assert.Equal(t, `'it\'s'`, "'"+escapeString("it's")+"'") // sanity on raw escaping
	assert.Equal(t, `'o\'brien'`, stringify("o'brien", true))
	assert.Equal(t, "o'brien", stringify("o'brien", false))
	assert.Equal(t, "NULL", stringify(nil, true))
	assert.Equal(t, "TRUE", stringify(true, true))
	assert.Equal(t, "FALSE", stringify(false, true))
	assert.Equal(t, "42", stringify(int64(42), false))
}

func TestReplacePlaceholders(t *testing.T) {
	got := replacePlaceholders("SELECT * FROM t WHERE a = ? AND b = ?",
		[]driver.Value{"o'brien", int64(7)})
	assert.Equal(t, `SELECT * FROM t WHERE a = 'o\'brien' AND b = 7`, got)
}

func TestReplacePlaceholdersNoArgs(t *testing.T) {
	q := "SELECT 1"
	assert.Equal(t, q, replacePlaceholders(q, nil))
}

func newConnPipe() (*Conn, net.Conn) {
	client, server := net.Pipe()
	c := &Conn{rw: &defaultReadWriter{}, conn: client}
	return c, server
}

func TestHandleInfileRequestRejectsAndDrainsReply(t *testing.T) {
	c, server := newConnPipe()
	defer server.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// drain the client's cancelling empty packet
		hdr := make([]byte, 4)
		server.Read(hdr)
		// reply with a minimal OK packet (not ERR)
		reply := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
		header := make([]byte, 4)
		header[0] = byte(len(reply))
		header[3] = 1 // client's cancelling packet consumed sequence id 0
		server.Write(header)
		server.Write(reply)
	}()

	err := c.handleInfileRequest("/etc/passwd")
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("server goroutine did not complete")
	}

	var myErr *Error
	assert.ErrorAs(t, err, &myErr)
	assert.Equal(t, ErrUnsupported, myErr.Code())
}
