package sidebar

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enclava/sidebars/pkg/server"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func fetch(t *testing.T, url string) (int, string) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func startServing(t *testing.T, run func(ctx context.Context, port int) error) string {
	t.Helper()

	port := freePort(t)
	base := fmt.Sprintf("http://127.0.0.1:%d", port)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, port) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down")
		}
	})

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	return base
}

func TestServeExposesSidebarsAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	base := startServing(t, func(ctx context.Context, port int) error {
		return Serve(ctx, sample(), reg, server.WithPort(port), server.WithMetrics(), server.WithSimpleHealth())
	})

	status, body := fetch(t, base+"/sidebars")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"docs": ["intro",
		{"type": "category", "label": "Guides", "items": ["guides/install",
			{"type": "category", "label": "Advanced", "items": ["guides/advanced/tuning"]},
			"guides/upgrade"]},
		"faq"]}`, body)

	status, _ = fetch(t, base+"/sidebars/missing")
	require.Equal(t, http.StatusNotFound, status)

	status, body = fetch(t, base+"/metrics")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `sidebars_requests_total{route="registry",status="200"} 1`)
	assert.Contains(t, body, `sidebars_requests_total{route="sidebar",status="404"} 1`)
	assert.Contains(t, body, `sidebars_documents{sidebar="docs"} 5`)
	assert.Contains(t, body, "go_goroutines")
}

func TestRegistryRun(t *testing.T) {
	r := New().MustDefine("api", Doc("api/intro"), Doc("api/auth"))
	base := startServing(t, func(ctx context.Context, port int) error {
		return r.Run(ctx, server.WithPort(port), server.WithMetrics(), server.WithSimpleHealth())
	})

	status, body := fetch(t, base+"/sidebars/api/docs")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `["api/intro", "api/auth"]`, body)

	_, body = fetch(t, base+"/metrics")
	assert.Contains(t, body, `sidebars_documents{sidebar="api"} 2`)
}
