package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inkwell/app/cache"
	"inkwell/app/comments"
	"inkwell/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAPIRoutes(t *testing.T) {
	db := setupTestDB(t)
	router, gw := setupTestRouter(t, db)
	seeded := setupTestData(t, gw)

	t.Run("GET /api/posts returns the cached list", func(t *testing.T) {
		w := do(t, router, "GET", "/api/posts", "")
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var res cache.State
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		require.Len(t, res.Posts, 1)
		assert.Equal(t, seeded, res.Posts[0])
		assert.False(t, res.Loading)
		assert.Empty(t, res.Error)
	})

	t.Run("GET /api/posts/{id}", func(t *testing.T) {
		w := do(t, router, "GET", "/api/posts/"+seeded.ID, "")
		require.Equal(t, http.StatusOK, w.Code)

		var post models.Post
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
		assert.Equal(t, "2024-01-01T00:00:00.000Z", post.CreatedAt)
	})

	t.Run("GET /api/posts/{id} missing", func(t *testing.T) {
		w := do(t, router, "GET", "/api/posts/missing-id", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("POST then list sees the new post", func(t *testing.T) {
		w := do(t, router, "POST", "/api/posts", `{"title":"Hello","author":"Bob","content":"Hello world content"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		w = do(t, router, "GET", "/api/posts?author=bob", "")
		var res cache.State
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		require.Len(t, res.Posts, 1)
		assert.Equal(t, "Hello", res.Posts[0].Title)
	})

	t.Run("comments round trip in order", func(t *testing.T) {
		path := "/api/posts/" + seeded.ID + "/comments"
		for _, text := range []string{"first", "second"} {
			w := do(t, router, "POST", path, `{"author":"Ann","text":"`+text+`"}`)
			require.Equal(t, http.StatusCreated, w.Code)
		}

		w := do(t, router, "GET", path, "")
		require.Equal(t, http.StatusOK, w.Code)

		var state comments.State
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
		require.Len(t, state.Comments, 2)
		assert.LessOrEqual(t, state.Comments[0].CreatedAt, state.Comments[1].CreatedAt)
	})

	t.Run("GET /api/feed", func(t *testing.T) {
		w := do(t, router, "GET", "/api/feed?wait=1", "")
		require.Equal(t, http.StatusOK, w.Code)

		var res cache.State
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Len(t, res.Posts, 2)
	})

	t.Run("DELETE is idempotent", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			w := do(t, router, "DELETE", "/api/posts/"+seeded.ID, "")
			assert.Equal(t, http.StatusNoContent, w.Code)
		}
	})

	t.Run("unknown route", func(t *testing.T) {
		w := do(t, router, "GET", "/api/nothing", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHealthz(t *testing.T) {
	router, _ := setupTestRouter(t, setupTestDB(t))
	w := do(t, router, "GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
