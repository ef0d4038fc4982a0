package eodhd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/vigil/internal/interfaces"
)

func TestSymbol(t *testing.T) {
	c := NewClient("k", WithExchanges(map[string]string{"BARC": "LSE"}))

	assert.Equal(t, "NVDA.US", c.Symbol("NVDA", ""))
	assert.Equal(t, "BARC.LSE", c.Symbol("BARC", ""))
	assert.Equal(t, "barc.LSE", c.Symbol("barc", ""))
	assert.Equal(t, "BARC.XETRA", c.Symbol("BARC", "XETRA"))
	assert.Equal(t, "VOD.L", c.Symbol("VOD.L", ""))
}

func TestGetEOD(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte(`[
			{"date": "2026-03-02", "open": 101, "high": 103, "low": 100, "close": 102.5, "adjusted_close": 102.5, "volume": 1500000},
			{"date": "2026-02-27", "open": "99.5", "high": 101, "low": 99, "close": 100, "adjusted_close": 100, "volume": "N/A"}
		]`))
	}))
	defer srv.Close()

	c := NewClient("secret", WithBaseURL(srv.URL), WithExchanges(map[string]string{"BARC": "LSE"}))
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	bars, err := c.GetEOD(context.Background(), "BARC", interfaces.WithDateRange(from, to))
	require.NoError(t, err)
	require.Len(t, bars, 2)

	assert.Equal(t, "/eod/BARC.LSE", gotPath)
	assert.Equal(t, "secret", gotQuery["api_token"][0])
	assert.Equal(t, "d", gotQuery["order"][0])
	assert.Equal(t, "2025-01-01", gotQuery["from"][0])
	assert.Equal(t, "2026-03-02", gotQuery["to"][0])

	assert.Equal(t, 102.5, bars[0].Close)
	assert.Equal(t, int64(1500000), bars[0].Volume)
	assert.Equal(t, 2026, bars[0].Date.Year())
	assert.Equal(t, 99.5, bars[1].Open)
	assert.Equal(t, int64(0), bars[1].Volume)
}

func TestGetEOD_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Ticker Not Found."))
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	_, err := c.GetEOD(context.Background(), "ZZZZ")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "/eod/ZZZZ.US", apiErr.Endpoint)
}

func TestFlexFloat64(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{`12.5`, 12.5},
		{`"12.5"`, 12.5},
		{`""`, 0},
		{`"N/A"`, 0},
		{`"abc"`, 0},
	}
	for _, tt := range tests {
		var f flexFloat64
		require.NoError(t, json.Unmarshal([]byte(tt.input), &f), tt.input)
		assert.Equal(t, tt.expected, float64(f), tt.input)
	}

	var f flexFloat64
	assert.Error(t, json.Unmarshal([]byte(`{}`), &f))
}
