package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger(t *testing.T) {
	originalLogger := log.Logger
	defer func() { log.Logger = originalLogger }()

	tests := []struct {
		name      string
		level     string
		wantLevel zerolog.Level
		wantErr   bool
	}{
		{name: "default", level: "", wantLevel: zerolog.InfoLevel},
		{name: "debug", level: "debug", wantLevel: zerolog.DebugLevel},
		{name: "error", level: "error", wantLevel: zerolog.ErrorLevel},
		{name: "unknown", level: "loud", wantLevel: zerolog.InfoLevel, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			err := initLogger(&buf, tt.level)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantLevel, log.Logger.GetLevel())

			log.Error().Msg("test message")

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Contains(t, entry, "time")
			assert.Equal(t, "test message", entry["message"])
		})
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer

	originalLogger := log.Logger
	defer func() { log.Logger = originalLogger }()

	log.Logger = zerolog.New(&buf).Level(zerolog.InfoLevel)

	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("test response"))
	})

	handler := chimiddleware.RequestID(RequestLogger(testHandler))

	req := httptest.NewRequest(http.MethodPost, "/test", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "test response", rr.Body.String())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))

	assert.Equal(t, "Request processed", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/test", entry["uri"])
	assert.Equal(t, float64(201), entry["status"])
	assert.Equal(t, float64(13), entry["size"])
	assert.Contains(t, entry, "duration")
	assert.NotEmpty(t, entry["request_id"])
}

func TestRequestLogger_ServerError(t *testing.T) {
	var buf bytes.Buffer

	originalLogger := log.Logger
	defer func() { log.Logger = originalLogger }()

	log.Logger = zerolog.New(&buf)

	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.NotContains(t, entry, "request_id")
}

func TestResponseWriter(t *testing.T) {
	rr := httptest.NewRecorder()

	rw := NewResponseWriter(rr)

	assert.Equal(t, http.StatusOK, rw.Status())
	assert.Equal(t, 0, rw.Size())

	rw.WriteHeader(http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, rw.Status())

	n, err := rw.Write([]byte("test"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, 4, rw.Size())

	n, err = rw.Write([]byte(" data"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 9, rw.Size())

	assert.Equal(t, "test data", rr.Body.String())
}
