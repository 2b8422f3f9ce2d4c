package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		SetLevel("INFO")
	})
	return &buf
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t)

	SetLevel("WARN")
	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestLevelIsCaseInsensitive(t *testing.T) {
	buf := capture(t)

	SetLevel("debug")
	Debug("visible")
	assert.Contains(t, buf.String(), "[DEBUG] visible")
}

func TestUnknownLevelIsIgnored(t *testing.T) {
	buf := capture(t)

	SetLevel("ERROR")
	SetLevel("VERBOSE")
	Info("still filtered")
	assert.Empty(t, buf.String())
}

func TestFormatting(t *testing.T) {
	buf := capture(t)

	Info("packed %s: %d bytes", "demo", 42)
	assert.Contains(t, buf.String(), "[INFO] packed demo: 42 bytes")
}
