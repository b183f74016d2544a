// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetJSON(t *testing.T) {
	var got *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"MathTutorBench"}`)) //nolint:errcheck
	}))
	defer ts.Close()

	c := NewClient(5*time.Second, "edu-benchmark-mapper/test", 0)
	c.Header.Set("x-api-key", "k")

	var out struct {
		Name string `json:"name"`
	}
	err := c.GetJSON(context.Background(), ts.URL+"/api/datasets", url.Values{"search": {"tutoring benchmark"}}, &out)
	require.NoError(t, err)

	assert.Equal(t, "MathTutorBench", out.Name)
	assert.Equal(t, "tutoring benchmark", got.URL.Query().Get("search"))
	assert.Equal(t, "edu-benchmark-mapper/test", got.Header.Get("User-Agent"))
	assert.Equal(t, "k", got.Header.Get("x-api-key"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
}

func TestClient_StatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewClient(5*time.Second, "", 0)
	var out map[string]any
	err := c.GetJSON(context.Background(), ts.URL, nil, &out)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
}

func TestClient_PostJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body struct {
			IDs []string `json:"ids"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(map[string]int{"n": len(body.IDs)}) //nolint:errcheck
	}))
	defer ts.Close()

	c := NewClient(5*time.Second, "", 0)
	var out struct {
		N int `json:"n"`
	}
	err := c.PostJSON(context.Background(), ts.URL, nil, map[string][]string{"ids": {"a", "b"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, out.N)
}

func TestClient_LimiterHonorsContext(t *testing.T) {
	c := NewClient(5*time.Second, "", time.Hour)
	// The first token is available immediately; the second waits an hour.
	require.True(t, c.Limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	req, err := http.NewRequest(http.MethodGet, "http://127.0.0.1:0", nil)
	require.NoError(t, err)
	_, err = c.Do(ctx, req)
	require.Error(t, err)
}
