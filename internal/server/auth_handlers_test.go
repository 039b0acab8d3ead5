package server

import (
	"net/http"
	"testing"

	"archives/internal/cache"
	"archives/internal/config"
	"archives/internal/models"
	"archives/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"wrong password", map[string]string{"email": testAdminEmail, "password": "nope"}, fiber.StatusUnauthorized},
		{"unknown email", map[string]string{"email": "who@example.com", "password": testAdminPassword}, fiber.StatusUnauthorized},
		{"email is case-insensitive", map[string]string{"email": "OWNER@example.com", "password": testAdminPassword}, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(http.MethodPost, "/api/auth/login", "", tt.body, nil)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.login()

	resp := env.do(http.MethodGet, "/api/auth/session", "", nil, bearer(token))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var session service.Session
	decode(t, resp, &session)
	assert.NotZero(t, session.AdminID)
	assert.Empty(t, session.Token)
	assert.False(t, session.ExpiresAt.IsZero())

	resp = env.do(http.MethodPost, "/api/auth/logout", "", nil, bearer(token))
	require.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/auth/session", "", nil, bearer(token))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/admin/posts", "", nil, bearer(token))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRoutes_RequireSession(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	resp := env.do(http.MethodGet, "/api/admin/posts", "", nil, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/admin/posts", "", nil, bearer("not-a-token"))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// A session outliving its account is refused.
	token := env.login()
	require.NoError(t, env.db.Where("email = ?", testAdminEmail).Delete(&models.Admin{}).Error)
	resp = env.do(http.MethodGet, "/api/admin/posts", "", nil, bearer(token))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

// Not parallel: a Redis-backed server installs the shared cache client.
func TestLogin_RateLimitedOutsideDevelopment(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
	})

	db := setupTestDB(t)
	hash, err := service.HashPassword(testAdminPassword)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Admin{Email: testAdminEmail, Password: hash}).Error)

	cfg := testConfig(config.BackendDatabase)
	cfg.Env = "production"
	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	env := &testEnv{t: t, db: db, srv: srv, app: srv.NewApp()}

	visitor := newVisitor()
	wrong := map[string]string{"email": testAdminEmail, "password": "nope"}
	for i := 0; i < 10; i++ {
		resp := env.do(http.MethodPost, "/api/auth/login", visitor, wrong, nil)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "attempt %d", i+1)
	}
	resp := env.do(http.MethodPost, "/api/auth/login", visitor, wrong, nil)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	mr.Close()
	resp = env.do(http.MethodPost, "/api/auth/login", newVisitor(), wrong, nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
