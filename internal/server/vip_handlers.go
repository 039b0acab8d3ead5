package server

import (
	"archives/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetVIPFlow handles GET /api/vip
// @Summary Current VIP flow step
// @Tags vip
// @Produce json
// @Success 200 {object} vip.View
// @Router /vip [get]
func (s *Server) GetVIPFlow(c *fiber.Ctx) error {
	view, err := s.vipService.FlowView(c.UserContext(), middleware.VisitorID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}

// OpenVIPFlow handles POST /api/vip/open
// @Summary Open the VIP flow
// @Description Resets the flow to the intro and reloads the guest list
// @Tags vip
// @Produce json
// @Success 200 {object} vip.View
// @Router /vip/open [post]
func (s *Server) OpenVIPFlow(c *fiber.Ctx) error {
	view, err := s.vipService.OpenFlow(c.UserContext(), middleware.VisitorID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}

// AcceptVIPFlow handles POST /api/vip/accept
// @Summary Accept the intro
// @Tags vip
// @Produce json
// @Success 200 {object} vip.View
// @Failure 400 {object} models.ErrorResponse
// @Router /vip/accept [post]
func (s *Server) AcceptVIPFlow(c *fiber.Ctx) error {
	view, err := s.vipService.Accept(c.UserContext(), middleware.VisitorID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}

// DeclineVIPFlow handles POST /api/vip/decline
// @Summary Decline the intro
// @Tags vip
// @Produce json
// @Success 200 {object} vip.View
// @Failure 400 {object} models.ErrorResponse
// @Router /vip/decline [post]
func (s *Server) DeclineVIPFlow(c *fiber.Ctx) error {
	view, err := s.vipService.Decline(c.UserContext(), middleware.VisitorID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}

// SubmitVIPName handles POST /api/vip/name
// @Summary Submit a name
// @Description A miss is not an error: the view stays at the name step with an inline message
// @Tags vip
// @Accept json
// @Produce json
// @Param request body object{name=string} true "Name"
// @Success 200 {object} vip.View
// @Failure 400 {object} models.ErrorResponse
// @Router /vip/name [post]
func (s *Server) SubmitVIPName(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	view, err := s.vipService.SubmitName(c.UserContext(), middleware.VisitorID(c), req.Name)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}

// SubmitVIPDate handles POST /api/vip/date
// @Summary Submit a date
// @Description Only month and day are compared
// @Tags vip
// @Accept json
// @Produce json
// @Param request body object{date=string} true "Date as YYYY-MM-DD"
// @Success 200 {object} vip.View
// @Failure 400 {object} models.ErrorResponse
// @Router /vip/date [post]
func (s *Server) SubmitVIPDate(c *fiber.Ctx) error {
	var req struct {
		Date string `json:"date"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	view, err := s.vipService.SubmitDate(c.UserContext(), middleware.VisitorID(c), req.Date)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}

// CloseVIPFlow handles POST /api/vip/close
// @Summary Close the VIP flow
// @Tags vip
// @Produce json
// @Success 200 {object} vip.View
// @Router /vip/close [post]
func (s *Server) CloseVIPFlow(c *fiber.Ctx) error {
	view, err := s.vipService.CloseFlow(c.UserContext(), middleware.VisitorID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(view)
}
