package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"archives/internal/config"
	"archives/internal/models"
	"archives/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testAdminEmail    = "owner@example.com"
	testAdminPassword = "correct horse battery"
)

func testConfig(mode string) *config.Config {
	return &config.Config{
		JWTSecret:      "test-secret-that-is-long-enough-for-hs256",
		Port:           "0",
		Env:            "test",
		BackendMode:    mode,
		AllowedOrigins: "http://localhost:5173",
	}
}

// setupTestDB opens a private in-memory SQLite database with the schema applied.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Admin{}, &models.Post{}, &models.Comment{}, &models.VIPEntry{}))
	return db
}

type testEnv struct {
	t   *testing.T
	db  *gorm.DB
	srv *Server
	app *fiber.App
}

// newTestEnv builds a database-backed server without Redis, so visitor state
// lives in memory and nothing is cached.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	hash, err := service.HashPassword(testAdminPassword)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Admin{Email: testAdminEmail, Password: hash}).Error)

	srv, err := NewServerWithDeps(testConfig(config.BackendDatabase), db, nil)
	require.NoError(t, err)
	return &testEnv{t: t, db: db, srv: srv, app: srv.NewApp()}
}

func newDemoEnv(t *testing.T) *testEnv {
	t.Helper()
	srv, err := NewServerWithDeps(testConfig(config.BackendDemo), nil, nil)
	require.NoError(t, err)
	return &testEnv{t: t, srv: srv, app: srv.NewApp()}
}

func (e *testEnv) addPost(p models.Post) *models.Post {
	e.t.Helper()
	if p.Type == "" {
		p.Type = models.PostTypePoetry
	}
	if p.Status == "" {
		p.Status = models.PostStatusPublished
	}
	if p.Content == "" {
		p.Content = "content"
	}
	require.NoError(e.t, e.db.Create(&p).Error)
	return &p
}

func (e *testEnv) login() string {
	e.t.Helper()
	resp := e.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    testAdminEmail,
		"password": testAdminPassword,
	}, nil)
	require.Equal(e.t, fiber.StatusOK, resp.StatusCode)
	var session service.Session
	decode(e.t, resp, &session)
	require.NotEmpty(e.t, session.Token)
	return session.Token
}

// do sends one request as visitor (empty for a fresh visitor) with an
// optional bearer token.
func (e *testEnv) do(method, path, visitor string, body any, headers map[string]string) *http.Response {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if visitor != "" {
		req.Header.Set("X-Visitor-ID", visitor)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func newVisitor() string {
	return uuid.NewString()
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}
