package server

import (
	"fmt"
	"net/http"
	"testing"

	"archives/internal/config"
	"archives/internal/feed"
	"archives/internal/models"
	"archives/internal/vip"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServerWithDeps_RequiresDatabase(t *testing.T) {
	t.Parallel()
	_, err := NewServerWithDeps(testConfig(config.BackendDatabase), nil, nil)
	assert.ErrorContains(t, err, "BACKEND_MODE=demo")
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	t.Run("database without redis is degraded", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		resp := env.do(http.MethodGet, "/health/ready", "", nil, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var body struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		}
		decode(t, resp, &body)
		assert.Equal(t, "degraded", body.Status)
		assert.Equal(t, "healthy", body.Checks["database"])
		assert.Equal(t, "unavailable", body.Checks["redis"])
	})

	t.Run("closed database is unhealthy", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		sqlDB, err := env.db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		resp := env.do(http.MethodGet, "/health/ready", "", nil, nil)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("demo mode reports demo", func(t *testing.T) {
		t.Parallel()
		env := newDemoEnv(t)
		resp := env.do(http.MethodGet, "/health", "", nil, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var body struct {
			Mode   string            `json:"mode"`
			Checks map[string]string `json:"checks"`
		}
		decode(t, resp, &body)
		assert.Equal(t, config.BackendDemo, body.Mode)
		assert.Equal(t, "demo", body.Checks["database"])
	})

	t.Run("liveness", func(t *testing.T) {
		t.Parallel()
		env := newDemoEnv(t)
		resp := env.do(http.MethodGet, "/health/live", "", nil, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestVisitorIdentity(t *testing.T) {
	t.Parallel()
	env := newDemoEnv(t)

	resp := env.do(http.MethodGet, "/api/prefs", "", nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	issued := resp.Header.Get("X-Visitor-ID")
	assert.NotEmpty(t, issued)

	visitor := newVisitor()
	resp = env.do(http.MethodGet, "/api/prefs", visitor, nil, nil)
	assert.Equal(t, visitor, resp.Header.Get("X-Visitor-ID"))
}

func TestPrefs(t *testing.T) {
	t.Parallel()
	env := newDemoEnv(t)
	visitor := newVisitor()

	resp := env.do(http.MethodPut, "/api/prefs", visitor, map[string]any{"dark_mode": true, "anon_name": "Quiet-Owl"}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/prefs", visitor, nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body map[string]any
	decode(t, resp, &body)
	assert.Equal(t, true, body["dark_mode"])
	assert.Equal(t, "Quiet-Owl", body["anon_name"])
	assert.Equal(t, false, body["vault_unlocked"])
}

func TestVaultSelect(t *testing.T) {
	t.Parallel()
	env := newDemoEnv(t)
	visitor := newVisitor()

	resp := env.do(http.MethodPost, "/api/vault/select", visitor, map[string]string{"tag": "locked"}, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var state map[string]any
	decode(t, resp, &state)
	assert.Equal(t, true, state["needs_confirmation"])
	assert.Nil(t, state["active_tag"])

	resp = env.do(http.MethodPost, "/api/vault/exit", visitor, nil, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodPost, "/api/vault/select", visitor, map[string]string{"tag": "poetry"}, nil)
	state = nil
	decode(t, resp, &state)
	assert.Equal(t, models.PostTypePoetry, state["active_tag"])

	resp = env.do(http.MethodPost, "/api/vault/enter", visitor, nil, nil)
	state = nil
	decode(t, resp, &state)
	assert.Equal(t, feed.TagLocked, state["active_tag"])

	resp = env.do(http.MethodGet, "/api/vault", visitor, nil, nil)
	state = nil
	decode(t, resp, &state)
	assert.Equal(t, true, state["unlocked"])
}

func TestDemoMode(t *testing.T) {
	t.Parallel()
	env := newDemoEnv(t)
	visitor := newVisitor()

	t.Run("serves fixtures", func(t *testing.T) {
		resp := env.do(http.MethodGet, "/api/posts?tag=All", visitor, nil, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var page feed.Page
		decode(t, resp, &page)
		assert.Equal(t, []string{"Naval Ravikant", "Sard Hawayein", "System_Init"}, titles(page))
		assert.True(t, page.Posts[1].Aged)
	})

	mutations := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"like", http.MethodPost, "/api/posts/1/like", nil},
		{"comment", http.MethodPost, "/api/posts/1/comments", map[string]string{"content": "hi"}},
		{"login", http.MethodPost, "/api/auth/login", map[string]string{"email": "a@b.c", "password": "whatever1"}},
	}
	for _, m := range mutations {
		t.Run(m.name+" is refused", func(t *testing.T) {
			resp := env.do(m.method, m.path, visitor, m.body, nil)
			assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
			var body models.ErrorResponse
			decode(t, resp, &body)
			assert.Equal(t, models.CodeDemoMode, body.Code)
		})
	}

	t.Run("like leaves no marker", func(t *testing.T) {
		resp := env.do(http.MethodGet, "/api/posts/1", visitor, nil, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var card feed.Card
		decode(t, resp, &card)
		assert.False(t, card.Liked)
	})

	t.Run("vip flow never matches", func(t *testing.T) {
		resp := env.do(http.MethodPost, "/api/vip/open", visitor, nil, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		resp = env.do(http.MethodPost, "/api/vip/accept", visitor, nil, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		resp = env.do(http.MethodPost, "/api/vip/name", visitor, map[string]string{"name": "anyone"}, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var view vip.View
		decode(t, resp, &view)
		assert.Equal(t, vip.StepName, view.Step)
		assert.Equal(t, vip.ErrTextUnknownName, view.Error)
	})

	t.Run("comments list is empty", func(t *testing.T) {
		resp := env.do(http.MethodGet, fmt.Sprintf("/api/posts/%d/comments", 1), visitor, nil, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var comments []models.Comment
		decode(t, resp, &comments)
		assert.Empty(t, comments)
	})
}

func TestCORSExposesVisitorHeader(t *testing.T) {
	t.Parallel()
	env := newDemoEnv(t)

	resp := env.do(http.MethodGet, "/api/tags", "", nil, map[string]string{"Origin": "http://localhost:5173"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Expose-Headers"), "X-Visitor-ID")
}
