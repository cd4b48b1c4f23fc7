package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	l := New(&Config{Level: level, Format: "json", Writer: buf}, "test-svc")
	return l, buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	return entry
}

func TestNew_WritesStructuredFields(t *testing.T) {
	l, buf := newJSONLogger(t, "debug")

	l.WithComponent("resource").Debug("class defined", Fields("name", "person", "plural", "people"))

	entry := decodeLine(t, buf)
	assert.Equal(t, "class defined", entry["message"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "resource", entry[FieldComponent])
	assert.Equal(t, "person", entry["name"])
	assert.Equal(t, "test-svc", entry["service"])
}

func TestNew_RespectsLevel(t *testing.T) {
	l, buf := newJSONLogger(t, "warn")

	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("shown")
	assert.Equal(t, "shown", decodeLine(t, buf)["message"])
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	l, buf := newJSONLogger(t, "loud")

	l.Debug("hidden")
	assert.Zero(t, buf.Len())
	l.Info("shown")
	assert.NotZero(t, buf.Len())
}

func TestWithFields(t *testing.T) {
	l, buf := newJSONLogger(t, "info")

	l.WithFields(map[string]interface{}{FieldRequestID: "abc"}).Error("failed", ErrorFields("query", errors.New("boom")))

	entry := decodeLine(t, buf)
	assert.Equal(t, "abc", entry[FieldRequestID])
	assert.Equal(t, "boom", entry[FieldError])
	assert.Equal(t, "query", entry[FieldOperation])
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("nothing happens")
	l.WithComponent("x").Info("still nothing")
}

func TestFields(t *testing.T) {
	f := Fields("a", 1, "b", "two", 3, "skipped", "dangling")
	assert.Equal(t, map[string]interface{}{"a": 1, "b": "two"}, f)

	d := DurationFields("get", 1500*time.Millisecond)
	assert.Equal(t, int64(1500), d[FieldDuration])
}

func TestConfig_ApplyDefaultsAndValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.NoError(t, cfg.Validate())

	cfg.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg.Level = "debug"
	cfg.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestGlobalLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	SetGlobalLogger(New(&Config{Level: "info", Format: "json", Writer: buf}, ""))
	t.Cleanup(func() { SetGlobalLogger(nil) })

	Info("global")
	assert.Equal(t, "global", decodeLine(t, buf)["message"])
}
