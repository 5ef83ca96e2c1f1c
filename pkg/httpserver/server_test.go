package httpserver_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hitanshuser50/ContentFuse/pkg/httpserver"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestServerRunAndShutdown(t *testing.T) {
	addr := freeAddr(t)
	srv := httpserver.New(httpserver.Config{
		Addr:            addr,
		ShutdownTimeout: time.Second,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
	}()

	var resp *http.Response
	var err error
	require.Eventually(t, func() bool {
		resp, err = http.Get(fmt.Sprintf("http://%s/", addr))
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServerShutdownBeforeRun(t *testing.T) {
	srv := httpserver.New(httpserver.Config{ShutdownTimeout: time.Second}, nil)
	assert.NoError(t, srv.Shutdown(context.Background()))
}

func TestHealthHandler(t *testing.T) {
	t.Run("ok when all probes pass", func(t *testing.T) {
		h := httpserver.HealthHandler(map[string]httpserver.Probe{
			"db": func(context.Context) error { return nil },
		})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unavailable when a probe fails", func(t *testing.T) {
		h := httpserver.HealthHandler(map[string]httpserver.Probe{
			"db":    func(context.Context) error { return nil },
			"redis": func(context.Context) error { return errors.New("down") },
		})

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
