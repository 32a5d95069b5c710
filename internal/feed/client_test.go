package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-inventory-ledger/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := serve(t, http.StatusOK, `{
		"products": [
			{"id": 1, "title": "Essence Mascara", "thumbnail": "https://cdn/1.png", "price": 9.99, "description": "Lengthening"},
			{"id": 22, "title": "No description", "thumbnail": "https://cdn/22.png", "price": 3}
		],
		"total": 2
	}`)

	items, err := NewClient(srv.URL, time.Second).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "1", items[0].SKU)
	assert.Equal(t, "Essence Mascara", items[0].Title)
	assert.Equal(t, "https://cdn/1.png", items[0].Image)
	require.NotNil(t, items[0].Price)
	assert.True(t, decimal.RequireFromString("9.99").Equal(*items[0].Price))
	require.NotNil(t, items[0].Description)
	assert.Equal(t, "Lengthening", *items[0].Description)

	assert.Equal(t, "22", items[1].SKU)
	assert.Nil(t, items[1].Description)
}

func TestFetch_Failures(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"server error":     {http.StatusInternalServerError, `{"message":"down"}`},
		"not found":        {http.StatusNotFound, ``},
		"malformed json":   {http.StatusOK, `{"products": [`},
		"missing products": {http.StatusOK, `{"total": 0}`},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := serve(t, tc.status, tc.body)
			_, err := NewClient(srv.URL, time.Second).Fetch(context.Background())
			assert.ErrorIs(t, err, service.ErrUpstreamFetch)
		})
	}
}

func TestFetch_Unreachable(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"products":[]}`)
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Fetch(context.Background())
	assert.ErrorIs(t, err, service.ErrUpstreamFetch)
}

func TestFetch_CanceledContext(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"products":[]}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL, time.Second).Fetch(ctx)
	assert.ErrorIs(t, err, service.ErrUpstreamFetch)
}

func TestFetch_CancelledMidRequest(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
		_, _ = w.Write([]byte(`{"products":[]}`))
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	_, err := NewClient(srv.URL, 5*time.Second).Fetch(ctx)
	assert.ErrorIs(t, err, service.ErrUpstreamFetch)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
