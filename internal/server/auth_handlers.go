package server

import (
	"github.com/gofiber/fiber/v2"
)

// Login handles POST /api/auth/login
// @Summary Admin login
// @Description Authenticate an admin and return a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} service.Session
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	session, err := s.authService.SignIn(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(session)
}

// Logout handles POST /api/auth/logout
// @Summary Admin logout
// @Description Revoke the presented session token
// @Tags auth
// @Security BearerAuth
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.authService.SignOut(c.UserContext(), bearerToken(c)); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetSession handles GET /api/auth/session
// @Summary Current session
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} service.Session
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/session [get]
func (s *Server) GetSession(c *fiber.Ctx) error {
	session, err := s.authService.Session(c.UserContext(), bearerToken(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(session)
}
