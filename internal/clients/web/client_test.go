package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 body"))
	}))
	defer srv.Close()

	data, err := NewClient().Fetch(context.Background(), srv.URL+"/q3.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(data))
	assert.Equal(t, userAgent, ua)
}

func TestFetch_MaxSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	data, err := NewClient(WithMaxSize(4)).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(data))
}

func TestFetch_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient()

	_, err := c.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")

	_, err = c.Fetch(context.Background(), "")
	assert.Error(t, err)
}
