package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checker struct{ err error }

func (c checker) Healthy(context.Context) error { return c.err }
func (c checker) Ready(context.Context) error { return c.err }

func startServer(t *testing.T, opts ...Option) string {
	t.Helper()

	srv := New(append([]Option{WithPort(0)}, opts...)...)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down")
		}
	})

	require.Eventually(t, srv.IsRunning, 2*time.Second, 10*time.Millisecond)

	return fmt.Sprintf("http://127.0.0.1:%d", srv.(*server).Addr().(*net.TCPAddr).Port)
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestServeProbes(t *testing.T) {
	base := startServer(t,
		WithHealthCheck(checker{}),
		WithReadinessCheck(checker{err: errors.New("no registry loaded")}),
	)

	status, body := get(t, base+"/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)

	status, body = get(t, base+"/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "no registry loaded", body)
}

func TestServeMetrics(t *testing.T) {
	base := startServer(t, WithMetrics())

	status, body := get(t, base+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "go_goroutines")
}

func TestServeCustomHandler(t *testing.T) {
	base := startServer(t, WithHandler("GET /hello", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("hi"))
	})))

	status, body := get(t, base+"/hello")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hi", body)
}

func TestServeStopsOnCancel(t *testing.T) {
	srv := New(WithPort(0), WithSimpleHealth())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	require.Eventually(t, srv.IsRunning, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.False(t, srv.IsRunning())
}
