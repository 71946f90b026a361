package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const garden = `
class Pot {
  - size : int
}
class Flower {
  - name : String
  color
}
Flower "*" --> "1" Pot
`

func init() { gin.SetMode(gin.TestMode) }

func do(t *testing.T, s *Server, method, target, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var v map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealthz(t *testing.T) {
	w := do(t, New(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	w = do(t, New(), http.MethodGet, "/healthz", "", RequestIDHeader, id)
	assert.Equal(t, id, w.Header().Get(RequestIDHeader))
}

func TestParse(t *testing.T) {
	w := do(t, New(), http.MethodPost, "/v1/parse", garden)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode(t, w)
	assert.Equal(t, "success", resp["status"])
	data := resp["data"].(map[string]any)
	classes := data["classes"].([]any)
	require.Len(t, classes, 2)
	assert.Equal(t, "Pot", classes[0].(map[string]any)["name"])
	relations := data["relations"].([]any)
	require.Len(t, relations, 1)
	assert.Equal(t, "M2O", relations[0].(map[string]any)["rel"])
	diags := data["diagnostics"].([]any)
	require.Len(t, diags, 1)
	assert.Equal(t, "untyped-attribute", diags[0].(map[string]any)["code"])
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
		line float64
	}{
		{"empty", "  \n", http.StatusBadRequest, 0},
		{"dangling", "class A\nA --> B\n", http.StatusUnprocessableEntity, 2},
		{"unclosed", "class A {\n", http.StatusUnprocessableEntity, 1},
		{"arrow", "class A\nclass B\nA -x-> B\n", http.StatusUnprocessableEntity, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, New(), http.MethodPost, "/v1/parse", tt.body)
			require.Equal(t, tt.code, w.Code, w.Body.String())
			resp := decode(t, w)
			assert.Equal(t, "error", resp["status"])
			if tt.line > 0 {
				assert.Equal(t, tt.line, resp["line"])
			}
		})
	}

	w := do(t, New(WithMaxBody(8)), http.MethodPost, "/v1/parse", garden)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestDDL(t *testing.T) {
	w := do(t, New(), http.MethodPost, "/v1/ddl?dialect=sqlite", garden)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), "CREATE TABLE `flowers`")

	w = do(t, New(), http.MethodPost, "/v1/ddl", garden)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `CREATE TABLE "pots"`)

	w = do(t, New(), http.MethodPost, "/v1/ddl?dialect=oracle", garden)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, New(), http.MethodPost, "/v1/ddl", "class Order\nclass Orders\n")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCache(t *testing.T) {
	cache, err := NewMemoryCache(DefaultCacheSize)
	require.NoError(t, err)
	s := New(WithCache(cache, time.Minute))

	w := do(t, s, http.MethodPost, "/v1/ddl?dialect=sqlite", garden)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Cache"))
	first := w.Body.String()

	w = do(t, s, http.MethodPost, "/v1/ddl?dialect=sqlite", garden)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hit", w.Header().Get("X-Cache"))
	assert.Equal(t, first, w.Body.String())

	w = do(t, s, http.MethodPost, "/v1/ddl?dialect=mysql", garden)
	assert.Empty(t, w.Header().Get("X-Cache"), "dialects are cached apart")

	do(t, s, http.MethodPost, "/v1/parse", garden)
	w = do(t, s, http.MethodPost, "/v1/parse", garden)
	assert.Equal(t, "hit", w.Header().Get("X-Cache"))
	data := decode(t, w)["data"].(map[string]any)
	assert.Len(t, data["classes"], 2)
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(0, 0)
	c, err := NewMemoryCache(2)
	require.NoError(t, err)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Second))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	v, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	now = now.Add(2 * time.Second)
	v, err = c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, v, "expired")
	v, _ = c.Get(ctx, "b")
	assert.Equal(t, []byte("2"), v)

	require.NoError(t, c.Delete(ctx, "b"))
	v, _ = c.Get(ctx, "b")
	assert.Nil(t, v)

	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))
	require.NoError(t, c.Set(ctx, "d", []byte("4"), 0))
	require.NoError(t, c.Set(ctx, "e", []byte("5"), 0))
	v, _ = c.Get(ctx, "c")
	assert.Nil(t, v, "least recently used entry evicted")
	v, _ = c.Get(ctx, "e")
	assert.Equal(t, []byte("5"), v)

	_, err = NewMemoryCache(0)
	assert.Error(t, err)
}
