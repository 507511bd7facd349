package util

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// Not parallel: these tests swap the global logger.

func TestInitializeLoggerTo_SetsGlobalLevel(t *testing.T) {
	tests := []struct {
		lvl  LogLevel
		want zerolog.Level
	}{
		{TraceLevel, zerolog.TraceLevel},
		{DebugLevel, zerolog.DebugLevel},
		{InfoLevel, zerolog.InfoLevel},
		{WarnLevel, zerolog.WarnLevel},
		{ErrorLevel, zerolog.ErrorLevel},
		{42, zerolog.InfoLevel},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		InitializeLoggerTo(&buf, tt.lvl)
		assert.Equal(t, tt.want, zerolog.GlobalLevel(), "level %d", tt.lvl)
	}
}

func TestGetLogger_TagsComponent(t *testing.T) {
	var buf bytes.Buffer
	InitializeLoggerTo(&buf, InfoLevel)

	logger := GetLogger("tester")
	logger.Info().Msg("hello")

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "tester")
}

func TestNewLogLogger_StripsPrefix(t *testing.T) {
	var buf bytes.Buffer
	InitializeLoggerTo(&buf, InfoLevel)

	stdlogger := NewLogLogger("bridge", WarnLevel)
	stdlogger.Println("fuse: mount ready")

	out := buf.String()
	assert.Contains(t, out, "mount ready")
	assert.NotContains(t, out, "fuse: mount ready")
	assert.Contains(t, out, "bridge")
}

func TestPointer(t *testing.T) {
	t.Parallel()

	p := Pointer(7)
	*p = 8
	assert.Equal(t, 8, *p)
}
