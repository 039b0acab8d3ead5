package server

import (
	"archives/internal/middleware"
	"archives/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/posts/:id/comments
// @Summary List comments
// @Description Comments on a post, newest first
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {array} models.Comment
// @Router /posts/{id}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c)
	if err != nil {
		return nil
	}
	comments, err := s.commentService.ListComments(c.UserContext(), postID)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(comments)
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Add a comment
// @Description Returned only after the comment is stored. Without author_name the visitor's remembered or a generated name is used.
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{content=string,author_name=string} true "Comment"
// @Success 201 {object} models.Comment
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c)
	if err != nil {
		return nil
	}
	var req struct {
		Content    string `json:"content"`
		AuthorName string `json:"author_name"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		VisitorID:  middleware.VisitorID(c),
		PostID:     postID,
		AuthorName: req.AuthorName,
		Content:    req.Content,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}
