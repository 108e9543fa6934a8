package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIRequestCarriesAuth(t *testing.T) {
	var gotAuth, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithToken("tok"), WithUserAgent("test-agent"))
	require.NoError(t, err)

	resp, err := c.R(context.Background()).Get("/anything")
	require.NoError(t, err)
	require.NoError(t, CheckResponse(resp))
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "test-agent", gotUA)
}

func TestTransferOmitsAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c, err := NewClient("http://unused.invalid", WithToken("tok"))
	require.NoError(t, err)

	resp, err := c.Transfer(context.Background()).Get(srv.URL + "/presigned")
	require.NoError(t, err)
	require.NoError(t, CheckResponse(resp))
	assert.Empty(t, gotAuth)
}

func TestRetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithRetryPolicy(RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}))
	require.NoError(t, err)

	resp, err := c.R(context.Background()).Get("/flaky")
	require.NoError(t, err)
	require.NoError(t, CheckResponse(resp))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithRetryPolicy(RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
	}))
	require.NoError(t, err)

	resp, err := c.R(context.Background()).Get("/bad")
	require.NoError(t, err)
	assert.Error(t, CheckResponse(resp))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCheckResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"missing"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	resp, err := c.R(context.Background()).Get("/x")
	require.NoError(t, err)

	checkErr := CheckResponse(resp)
	var httpErr *HTTPError
	require.ErrorAs(t, checkErr, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Contains(t, string(httpErr.Body), "missing")
}

func TestRetryable(t *testing.T) {
	assert.False(t, Retryable(nil, context.Canceled))
	assert.False(t, Retryable(nil, context.DeadlineExceeded))
	assert.True(t, Retryable(nil, errors.New("connection reset")))
	assert.False(t, Retryable(nil, nil))
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient("  ")
	assert.Error(t, err)
}
