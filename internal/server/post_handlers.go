package server

import (
	"errors"

	"archives/internal/feed"
	"archives/internal/middleware"
	"archives/internal/models"
	"archives/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description Filter the archive by tag (Home, All, Locked or a post type) and a free-text query
// @Tags posts
// @Produce json
// @Param tag query string false "Tag, defaults to Home"
// @Param q query string false "Case-insensitive search over title and content"
// @Success 200 {object} feed.Page
// @Failure 409 {object} object{error=string,vault_required=bool}
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, err := s.postService.Feed(c.UserContext(), service.FeedInput{
		VisitorID: middleware.VisitorID(c),
		Tag:       c.Query("tag"),
		Query:     c.Query("q"),
		IsAdmin:   isAdmin(c),
	})
	if errors.Is(err, models.ErrVaultRequired) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":          models.ErrVaultRequired.Message,
			"code":           models.ErrVaultRequired.Code,
			"vault_required": true,
		})
	}
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(page)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} feed.Card
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	card, err := s.postService.GetPost(c.UserContext(), middleware.VisitorID(c), id, isAdmin(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(card)
}

// LikePost handles POST /api/posts/:id/like
// @Summary Like a post
// @Description Counts once per visitor; repeats report already_liked
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} service.LikeResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}
	res, err := s.postService.Like(c.UserContext(), middleware.VisitorID(c), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(res)
}

// GetTags handles GET /api/tags
// @Summary Navigation tags
// @Description Navigation tags in display order and the post types an author may pick
// @Tags posts
// @Produce json
// @Success 200 {object} object{nav=[]string,types=[]string}
// @Router /tags [get]
func (s *Server) GetTags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"nav":   feed.NavTags,
		"types": models.PostTypes,
	})
}
