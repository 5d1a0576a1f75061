package apify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSync_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/acts/some~actor/run-sync-get-dataset-items", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"fullName":"Jane"}]`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	body, status, err := c.RunSync(context.Background(), "tok-1", "some~actor", map[string]any{"url": "x"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, status)
	assert.JSONEq(t, `[{"fullName":"Jane"}]`, string(body))
}

func TestRunSync_NonOKStatusReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, status, err := c.RunSync(context.Background(), "tok", "a", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, status)
}

func TestRunSync_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithTimeout(20*time.Millisecond))
	_, _, err := c.RunSync(context.Background(), "tok", "a", nil)
	require.Error(t, err)
}
