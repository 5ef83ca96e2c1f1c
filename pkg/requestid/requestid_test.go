package requestid_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hitanshuser50/ContentFuse/pkg/requestid"
)

func TestMiddleware(t *testing.T) {
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(requestid.FromContext(r.Context())))
	})

	t.Run("generates id when missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		requestid.Middleware(echo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		id := rec.Header().Get(requestid.Header)
		require.NotEmpty(t, id)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, rec.Body.String())
	})

	t.Run("keeps valid client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestid.Header, "client-supplied_01")

		rec := httptest.NewRecorder()
		requestid.Middleware(echo).ServeHTTP(rec, req)

		assert.Equal(t, "client-supplied_01", rec.Header().Get(requestid.Header))
	})

	t.Run("replaces malformed client id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestid.Header, strings.Repeat("x", 200))

		rec := httptest.NewRecorder()
		requestid.Middleware(echo).ServeHTTP(rec, req)

		assert.NotEqual(t, strings.Repeat("x", 200), rec.Header().Get(requestid.Header))
	})
}

func TestFromContext(t *testing.T) {
	assert.Empty(t, requestid.FromContext(t.Context()))

	ctx := requestid.WithContext(t.Context(), "abc")
	assert.Equal(t, "abc", requestid.FromContext(ctx))
}
