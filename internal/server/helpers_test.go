package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"archives/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", models.NewValidationError("bad"), fiber.StatusBadRequest},
		{"unauthorized", models.NewUnauthorizedError("no"), fiber.StatusUnauthorized},
		{"forbidden", models.NewForbiddenError("no"), fiber.StatusForbidden},
		{"not found", models.NewNotFoundError("Post", 1), fiber.StatusNotFound},
		{"vault", models.ErrVaultRequired, fiber.StatusConflict},
		{"demo", models.ErrDemoMode, fiber.StatusServiceUnavailable},
		{"wrapped demo", fmt.Errorf("create: %w", models.ErrDemoMode), fiber.StatusServiceUnavailable},
		{"record not found", gorm.ErrRecordNotFound, fiber.StatusNotFound},
		{"plain", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestParseID(t *testing.T) {
	t.Parallel()
	s := &Server{}
	app := fiber.New()
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := s.parseID(c)
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	for path, want := range map[string]int{
		"/items/7":   fiber.StatusOK,
		"/items/0":   fiber.StatusBadRequest,
		"/items/-3":  fiber.StatusBadRequest,
		"/items/abc": fiber.StatusBadRequest,
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, path)
		_ = resp.Body.Close()
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/abc", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	var body models.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "Invalid ID", body.Error)
	assert.Equal(t, models.CodeValidation, body.Code)
}

func TestRespondError_HidesInternalDetails(t *testing.T) {
	t.Parallel()
	s := &Server{}
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return s.respondError(c, errors.New("pq: connection refused"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	var body models.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "Internal server error", body.Error)
	assert.Equal(t, models.CodeInternal, body.Code)
	assert.Empty(t, body.Details)
}

func TestBearerToken(t *testing.T) {
	t.Parallel()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(bearerToken(c))
	})

	for header, want := range map[string]string{
		"Bearer abc.def":  "abc.def",
		"Bearer  spaced ": "spaced",
		"Basic abc":       "",
		"":                "",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		got, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, want, string(got), header)
		_ = resp.Body.Close()
	}
}
