package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerWritesComponentAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithOutput("INFO", "Feed", &buf)

	l.Info("tick %d", 3)
	l.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "component=Feed")
	assert.Contains(t, out, "tick 3")
	assert.NotContains(t, out, "hidden")
}

func TestLoggerNamedSharesOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithOutput("DEBUG", "App", &buf).Named("Store")

	l.Debug("visible")
	l.Warning("careful")

	out := buf.String()
	assert.Contains(t, out, "component=Store")
	assert.Contains(t, out, "visible")
	assert.Contains(t, out, "level=warning")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "error", parseLevel("error").String())
	assert.Equal(t, "warning", parseLevel("WARNING").String())
	assert.Equal(t, "info", parseLevel("").String())
}
