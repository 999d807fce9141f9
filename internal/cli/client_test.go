package cli

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendsTokenAndDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"volume":40,"muted":true,"track":"gameplay"}`))
	}))
	defer server.Close()

	var trace bytes.Buffer
	c := NewClient(server.URL+"/", "tok")
	c.SetTrace(&trace)

	var audio Audio
	require.NoError(t, c.Get("/api/v1/audio", &audio))
	assert.Equal(t, Audio{Volume: 40, Muted: true, Track: "gameplay"}, audio)
	assert.Contains(t, trace.String(), "> GET "+server.URL+"/api/v1/audio")
	assert.Contains(t, trace.String(), "< 200 OK")
}

func TestClient_ErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"code":"BUSY","message":"The genie is still thinking"}}`))
	}))
	defer server.Close()

	err := NewClient(server.URL, "tok").Post("/api/v1/game/answer", map[string]string{"answer": "yes"}, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "BUSY", apiErr.Code)
	assert.Equal(t, "The genie is still thinking (BUSY)", err.Error())
}

func TestClient_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	err := NewClient(server.URL, "").Get("/api/v1/health", nil)
	require.Error(t, err)
	assert.Equal(t, "HTTP 502: upstream down", err.Error())
}
