package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bharat2468/cloud-project/pkg/httpclient"
)

func newTestClient(t *testing.T, baseURL string, timeout time.Duration) *Client {
	t.Helper()
	httpClient := httpclient.New(httpclient.Config{
		Timeout:         timeout,
		MaxRetries:      0,
		RetryWaitMin:    10 * time.Millisecond,
		RetryWaitMax:    10 * time.Millisecond,
		MaxConnsPerHost: 10,
	})
	return NewClient(httpClient, baseURL, timeout)
}

func TestClient_Fetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/prod-1", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"prod-1","name":"Mechanical Keyboard","price":89.99,"category":"peripherals","image":"https://cdn.example.com/kb.png"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, time.Second)

	product, err := client.Fetch(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "prod-1", product.ID)
	assert.Equal(t, "Mechanical Keyboard", product.Name)
	assert.Equal(t, 89.99, product.Price)
	assert.Equal(t, "peripherals", product.Category)
}

func TestClient_Fetch_BackfillsID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Desk Lamp","price":24.50}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, time.Second)

	product, err := client.Fetch(context.Background(), "prod-2")
	require.NoError(t, err)
	assert.Equal(t, "prod-2", product.ID, "missing id in the body falls back to the requested id")
}

func TestClient_Fetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, time.Second)

	product, err := client.Fetch(context.Background(), "prod-missing")
	require.Error(t, err)
	assert.Nil(t, product)
	assert.True(t, errors.Is(err, ErrProductNotFound), "expected ErrProductNotFound, got: %v", err)
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestClient_Fetch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, time.Second)

	product, err := client.Fetch(context.Background(), "prod-1")
	require.Error(t, err)
	assert.Nil(t, product)
	assert.True(t, errors.Is(err, ErrUnavailable), "expected ErrUnavailable, got: %v", err)
	assert.False(t, errors.Is(err, ErrProductNotFound))
}

func TestClient_Fetch_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": "truncated`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, time.Second)

	product, err := client.Fetch(context.Background(), "prod-1")
	require.Error(t, err)
	assert.Nil(t, product)
	assert.True(t, errors.Is(err, ErrUnavailable), "an undecodable body counts as unavailable, got: %v", err)
}

func TestClient_Fetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 50*time.Millisecond)

	start := time.Now()
	product, err := client.Fetch(context.Background(), "prod-slow")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Nil(t, product)
	assert.True(t, errors.Is(err, ErrUnavailable), "expected ErrUnavailable, got: %v", err)
	assert.Less(t, elapsed, 250*time.Millisecond, "per-call timeout must cut the request short")
}

func TestClient_Fetch_ConnectionRefused(t *testing.T) {
	// Point at a server that has already been shut down.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := newTestClient(t, srv.URL, time.Second)

	product, err := client.Fetch(context.Background(), "prod-1")
	require.Error(t, err)
	assert.Nil(t, product)
	assert.True(t, errors.Is(err, ErrUnavailable), "expected ErrUnavailable, got: %v", err)
}

func TestClient_Fetch_EscapesProductID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, time.Second)

	_, err := client.Fetch(context.Background(), "a/b c")
	require.Error(t, err)
	assert.Equal(t, "/products/a%2Fb%20c", gotPath)
}

func TestClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, time.Second)
	assert.NoError(t, client.Ping(context.Background()), "any HTTP answer counts as reachable")

	srv.Close()
	assert.Error(t, client.Ping(context.Background()))
}
