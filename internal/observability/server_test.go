// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

package observability_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonguedex/tonguedex/internal/observability"
)

func startServer(t *testing.T, ready observability.ReadinessChecker) *observability.Server {
	t.Helper()
	srv := observability.NewServer("127.0.0.1:0", ready)
	_, err := srv.Start()
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, srv.Stop(ctx))
	})
	return srv
}

func get(t *testing.T, srv *observability.Server, path string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(fmt.Sprintf("http://%s%s", srv.Addr(), path))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, string(body)
}

func TestServerEndpoints(t *testing.T) {
	srv := startServer(t, func() bool { return true })

	t.Run("healthz", func(t *testing.T) {
		resp, _ := get(t, srv, "/healthz")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("readyz when ready", func(t *testing.T) {
		resp, _ := get(t, srv, "/readyz")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("metrics exposes go and domain collectors", func(t *testing.T) {
		resp, body := get(t, srv, "/metrics")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "go_goroutines")
	})
}

func TestServerReadiness(t *testing.T) {
	srv := startServer(t, func() bool { return false })

	resp, _ := get(t, srv, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServerNilReadinessCheckerIsAlwaysReady(t *testing.T) {
	srv := startServer(t, nil)

	resp, _ := get(t, srv, "/readyz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServerDoubleStart(t *testing.T) {
	srv := startServer(t, nil)

	_, err := srv.Start()
	assert.Error(t, err)
}
