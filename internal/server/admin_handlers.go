package server

import (
	"archives/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AdminListPosts handles GET /api/admin/posts
// @Summary List all posts
// @Description Includes drafts
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Post
// @Router /admin/posts [get]
func (s *Server) AdminListPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListAll(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(posts)
}

// AdminCreatePost handles POST /api/admin/posts
// @Summary Create a post
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.PostInput true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/posts [post]
func (s *Server) AdminCreatePost(c *fiber.Ctx) error {
	var req service.PostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	post, err := s.postService.CreatePost(c.UserContext(), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// AdminUpdatePost handles PUT /api/admin/posts/:id
// @Summary Edit a post
// @Description Only fields present in the body change
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body service.PostPatch true "Fields to change"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/posts/{id} [put]
func (s *Server) AdminUpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	var req service.PostPatch
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	post, err := s.postService.UpdatePost(c.UserContext(), id, req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(post)
}

// AdminDeletePost handles DELETE /api/admin/posts/:id
// @Summary Delete a post
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/posts/{id} [delete]
func (s *Server) AdminDeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	if err := s.postService.DeletePost(c.UserContext(), id); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminListVIPs handles GET /api/admin/vips
// @Summary List the guest list
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.VIPEntry
// @Router /admin/vips [get]
func (s *Server) AdminListVIPs(c *fiber.Ctx) error {
	entries, err := s.vipService.ListEntries(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(entries)
}

// AdminCreateVIP handles POST /api/admin/vips
// @Summary Add a guest-list entry
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.VIPInput true "Entry"
// @Success 201 {object} models.VIPEntry
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/vips [post]
func (s *Server) AdminCreateVIP(c *fiber.Ctx) error {
	var req service.VIPInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	entry, err := s.vipService.CreateEntry(c.UserContext(), req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// AdminUpdateVIP handles PUT /api/admin/vips/:id
// @Summary Edit a guest-list entry
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Entry ID"
// @Param request body service.VIPPatch true "Fields to change"
// @Success 200 {object} models.VIPEntry
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/vips/{id} [put]
func (s *Server) AdminUpdateVIP(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	var req service.VIPPatch
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	entry, err := s.vipService.UpdateEntry(c.UserContext(), id, req)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(entry)
}

// AdminDeleteVIP handles DELETE /api/admin/vips/:id
// @Summary Remove a guest-list entry
// @Tags admin
// @Security BearerAuth
// @Param id path int true "Entry ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/vips/{id} [delete]
func (s *Server) AdminDeleteVIP(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	if err := s.vipService.DeleteEntry(c.UserContext(), id); err != nil {
		return s.respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
