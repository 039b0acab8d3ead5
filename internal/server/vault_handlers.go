package server

import (
	"archives/internal/middleware"
	"archives/internal/vault"

	"github.com/gofiber/fiber/v2"
)

// GetVault handles GET /api/vault
// @Summary Vault state
// @Tags vault
// @Produce json
// @Success 200 {object} vault.State
// @Router /vault [get]
func (s *Server) GetVault(c *fiber.Ctx) error {
	unlocked, err := s.vaultGate.Unlocked(c.UserContext(), middleware.VisitorID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(vault.State{Unlocked: unlocked})
}

// SelectTag handles POST /api/vault/select
// @Summary Select a tag
// @Description Selecting Locked while the vault is closed asks for confirmation instead
// @Tags vault
// @Accept json
// @Produce json
// @Param request body object{tag=string} true "Tag"
// @Success 200 {object} vault.State
// @Router /vault/select [post]
func (s *Server) SelectTag(c *fiber.Ctx) error {
	var req struct {
		Tag string `json:"tag"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	state, err := s.vaultGate.Select(c.UserContext(), middleware.VisitorID(c), req.Tag)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(state)
}

// EnterVault handles POST /api/vault/enter
// @Summary Enter the vault
// @Description Unlocks the vault for this visitor for good and switches to Locked
// @Tags vault
// @Produce json
// @Success 200 {object} vault.State
// @Router /vault/enter [post]
func (s *Server) EnterVault(c *fiber.Ctx) error {
	state, err := s.vaultGate.Enter(c.UserContext(), middleware.VisitorID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(state)
}

// ExitVault handles POST /api/vault/exit
// @Summary Dismiss the vault overlay
// @Description Changes nothing; the current vault state is returned
// @Tags vault
// @Produce json
// @Success 200 {object} vault.State
// @Router /vault/exit [post]
func (s *Server) ExitVault(c *fiber.Ctx) error {
	state, err := s.vaultGate.Exit(c.UserContext(), middleware.VisitorID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(state)
}
