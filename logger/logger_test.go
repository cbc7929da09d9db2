package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestToZapLevel(t *testing.T) {
	cases := []struct {
		in   Level
		want zapcore.Level
	}{
		{LevelDebug, zapcore.DebugLevel},
		{LevelInfo, zapcore.InfoLevel},
		{LevelWarn, zapcore.WarnLevel},
		{LevelError, zapcore.ErrorLevel},
		{Level("nonsense"), zapcore.InfoLevel},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, toZapLevel(c.in))
	}
}

func TestWithReturnsIndependentLogger(t *testing.T) {
	base := New(Options{Level: LevelInfo})
	tagged := base.With("session", "abc123")

	// With must not mutate the receiver; both loggers stay independently usable.
	assert.NotNil(t, base.sugared)
	assert.NotNil(t, tagged.sugared)
	assert.NotSame(t, base.sugared, tagged.sugared)
}

func TestSetOptionsReplacesSharedLogger(t *testing.T) {
	before := Std()
	SetOptions(Options{Level: LevelDebug})
	after := Std()

	assert.NotSame(t, before.sugared, after.sugared)

	// restore the default so other tests observe the documented baseline.
	SetOptions(Options{Level: LevelInfo})
}
