package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		out = append(out, entry)
	}
	return out
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(InfoLevel, &buf).WithField("component", "sandbox")

	logger.Debug("hidden")
	logger.Info("stepped", map[string]interface{}{"generation": 3})
	logger.WithError(errors.New("boom")).Error("failed")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)

	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "stepped", entries[0]["message"])
	assert.Equal(t, "sandbox", entries[0]["component"])
	assert.Equal(t, 3.0, entries[0]["generation"])
	assert.Contains(t, entries[0]["caller"], "logging/logger_test.go")
	_, err := time.Parse(time.RFC3339Nano, entries[0]["timestamp"].(string))
	assert.NoError(t, err)

	assert.Equal(t, "ERROR", entries[1]["level"])
	assert.Equal(t, "boom", entries[1]["error"])
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New(DebugLevel, &buf)
	_ = parent.WithFields(map[string]interface{}{"run": 1})
	parent.Info("plain")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0], "run")
}

func TestTextLogger(t *testing.T) {
	var buf bytes.Buffer
	configured, err := NewLogger(&Config{Level: "warn", Format: "text", Output: "stdout"})
	require.NoError(t, err)
	assert.Equal(t, TextFormat, configured.format)
	assert.Equal(t, WarnLevel, configured.level)

	logger := New(WarnLevel, &buf).WithFormat(TextFormat).WithFields(map[string]interface{}{
		"session": "abc",
		"note":    "two words",
	})

	logger.Info("hidden")
	logger.Warn("limit reached")

	line := strings.TrimSpace(buf.String())
	assert.NotContains(t, line, "hidden")
	assert.Contains(t, line, "WARN  limit reached")
	assert.Contains(t, line, `note="two words" session=abc`)
	assert.Contains(t, line, "caller=logging/logger_test.go")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   DebugLevel,
		"INFO":    InfoLevel,
		"":        InfoLevel,
		"Warn":    WarnLevel,
		"warning": WarnLevel,
		"error":   ErrorLevel,
		"fatal":   FatalLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("TEXT")
	require.NoError(t, err)
	assert.Equal(t, TextFormat, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, JSONFormat, f)

	_, err = ParseFormat("console")
	assert.Error(t, err)
}

func TestNewLoggerRejectsUnknownSettings(t *testing.T) {
	_, err := NewLogger(&Config{Level: "loud"})
	assert.Error(t, err)
	_, err = NewLogger(&Config{Format: "xml"})
	assert.Error(t, err)
	assert.Error(t, (&Config{Level: "info", Format: "yaml"}).Validate())
	assert.NoError(t, DefaultConfig().Validate())

	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := NewLogger(&Config{Level: "info", Output: path})
	require.NoError(t, err)
	logger.Info("to file")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"to file"`)
}

func TestZapLogger(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZapLogger(New(InfoLevel, &buf)).With(zap.String("session", "s1"))

	zl.Debug("hidden")
	zl.Info("generation",
		zap.Float64("best", 0.125),
		zap.Float32("ratio", 0.5),
		zap.Int("gen", 4),
		zap.Uint32("seed", 12345),
		zap.Bool("comparing", true),
		zap.Duration("elapsed", 2*time.Millisecond),
		zap.Error(errors.New("nope")),
		zap.Strings("ops", []string{"sbx", "gaussian"}),
	)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "generation", e["message"])
	assert.Equal(t, "s1", e["session"])
	assert.Equal(t, 0.125, e["best"])
	assert.Equal(t, 0.5, e["ratio"])
	assert.Equal(t, 4.0, e["gen"])
	assert.Equal(t, 12345.0, e["seed"])
	assert.Equal(t, true, e["comparing"])
	assert.Equal(t, "2ms", e["elapsed"])
	assert.Equal(t, "nope", e["error"])
	assert.Equal(t, []interface{}{"sbx", "gaussian"}, e["ops"])
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := New(DebugLevel, &buf)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(Middleware(logger))
	r.Get("/ok", func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 3)
	assert.Equal(t, "Request started", entries[0]["message"])
	assert.Equal(t, "inside handler", entries[1]["message"])
	assert.Equal(t, "/ok", entries[1]["path"], "handlers inherit the request fields")
	assert.Equal(t, "Request completed", entries[2]["message"])
	assert.Equal(t, 418.0, entries[2]["status"])
	assert.NotEmpty(t, entries[2]["request_id"])
	assert.Equal(t, "I'm a teapot", entries[2]["error"])
	assert.Equal(t, "WARN", entries[2]["level"])
	assert.Equal(t, "DEBUG", entries[0]["level"])
}
