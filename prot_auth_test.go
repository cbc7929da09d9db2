package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScramble41EmptyPassword(t *testing.T) {
	assert.Nil(t, scramble41("", []byte("01234567890123456789")))
}

func TestScramble41Deterministic(t *testing.T) {
	seed := []byte("01234567890123456789")
	a := scramble41("secret", seed)
	b := scramble41("secret", seed)
	assert.Equal(t, a, b)
	assert.Len(t, a, 20)

	other := scramble41("different", seed)
	assert.NotEqual(t, a, other)
}

func TestScrambleSHA256EmptyPassword(t *testing.T) {
	assert.Nil(t, scrambleSHA256("", []byte("01234567890123456789")))
}

func TestScrambleSHA256Deterministic(t *testing.T) {
	seed := []byte("01234567890123456789")
	a := scrambleSHA256("secret", seed)
	b := scrambleSHA256("secret", seed)
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)

	other := scrambleSHA256("different", seed)
	assert.NotEqual(t, a, other)
}

func TestScrambleForDispatchesByPlugin(t *testing.T) {
	c := &Conn{p: properties{password: "secret"}}
	seed := []byte("01234567890123456789")

	assert.Equal(t, scrambleSHA256("secret", seed), c.scrambleFor("caching_sha2_password", seed))
	assert.Equal(t, scramble41("secret", seed), c.scrambleFor("mysql_native_password", seed))
	// unrecognized plugin names fall back to mysql_native_password
	assert.Equal(t, scramble41("secret", seed), c.scrambleFor("some_future_plugin", seed))
}

func TestParseAuthSwitchRequestPacket(t *testing.T) {
	b := []byte{_PACKET_AUTH_SWITCH}
	b = append(b, []byte("caching_sha2_password")...)
	b = append(b, 0x00) // null terminator on the plugin name
	b = append(b, []byte("01234567890123456789")...)
	b = append(b, 0x00) // trailing NUL on the seed

	plugin, seed := parseAuthSwitchRequestPacket(b)
	assert.Equal(t, "caching_sha2_password", plugin)
	assert.Equal(t, []byte("01234567890123456789"), seed)
}

func TestCreateAuthSwitchResponsePacket(t *testing.T) {
	authData := []byte{1, 2, 3, 4}
	b := createAuthSwitchResponsePacket(authData)
	assert.Equal(t, authData, b[4:])
	assert.Len(t, b, 4+len(authData))
}
