package server

import (
	"archives/internal/middleware"
	"archives/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPrefs handles GET /api/prefs
// @Summary Visitor preferences
// @Tags prefs
// @Produce json
// @Success 200 {object} service.Prefs
// @Router /prefs [get]
func (s *Server) GetPrefs(c *fiber.Ctx) error {
	p, err := s.prefsService.Get(c.UserContext(), middleware.VisitorID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(p)
}

// UpdatePrefs handles PUT /api/prefs
// @Summary Update visitor preferences
// @Tags prefs
// @Accept json
// @Produce json
// @Param request body service.PrefsPatch true "Fields to change"
// @Success 200 {object} service.Prefs
// @Router /prefs [put]
func (s *Server) UpdatePrefs(c *fiber.Ctx) error {
	var req service.PrefsPatch
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	p, err := s.prefsService.Update(c.UserContext(), middleware.VisitorID(c), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(p)
}
