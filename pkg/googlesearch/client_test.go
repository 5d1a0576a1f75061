package googlesearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "key-1", q.Get("key"))
		assert.Equal(t, "cse-1", q.Get("cx"))
		assert.Equal(t, `site:linkedin.com/in "CTO" "Berlin"`, q.Get("q"))
		assert.Equal(t, "5", q.Get("num"))
		w.Write([]byte(`{"items":[{"title":"Jane Doe - CTO","link":"https://linkedin.com/in/janedoe","snippet":"Berlin"}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient("key-1", "cse-1", WithBaseURL(srv.URL))
	items, err := c.Search(context.Background(), `site:linkedin.com/in "CTO" "Berlin"`, 5)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "https://linkedin.com/in/janedoe", items[0].Link)
}

func TestSearch_QuotaExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("k", "c", WithBaseURL(srv.URL))
	_, err := c.Search(context.Background(), "q", 10)
	require.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestSearch_ClampsNum(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("num"))
		w.Write([]byte(`{}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient("k", "c", WithBaseURL(srv.URL))
	items, err := c.Search(context.Background(), "q", 50)
	require.NoError(t, err)
	assert.Empty(t, items)
}
