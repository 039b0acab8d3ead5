package service

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"archives/internal/models"
	"archives/internal/observability"
	"archives/internal/prefs"
	"archives/internal/repository"
)

const (
	maxCommentLen    = 2000
	maxAuthorNameLen = 60
)

var (
	nameAdjectives = []string{"Cyber", "Lost", "Midnight", "Quiet", "Neon", "Broken", "Analog", "Velvet", "Glitch", "Paper"}
	nameNouns      = []string{"Poet", "Wanderer", "Coder", "Ghost", "Soul", "Drifter", "Monk", "Echo", "Writer"}
)

type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	prefs    prefs.Store

	mu  sync.Mutex
	rng *rand.Rand
}

type CreateCommentInput struct {
	VisitorID  string
	PostID     uint
	AuthorName string
	Content    string
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, store prefs.Store) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		prefs:    store,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ListComments returns a post's comments, newest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.commentablePost(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

// CreateComment stores a comment and returns it once the backend has
// accepted it. The author is the given name, else the visitor's remembered
// name, else a generated one. The name is remembered only after a successful store.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Comment content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 2000 characters)")
	}
	if _, err := s.commentablePost(ctx, in.PostID); err != nil {
		return nil, err
	}

	author, err := s.authorFor(ctx, in.VisitorID, in.AuthorName)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:     in.PostID,
		AuthorName: author,
		Content:    content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	// The comment is already stored, so a failed name write is only logged.
	if err := s.prefs.SetString(ctx, in.VisitorID, prefs.KeyAnonName, author); err != nil {
		observability.GlobalLogger.WarnContext(ctx, "remember comment author failed",
			slog.String("visitor_id", in.VisitorID),
			slog.String("error", err.Error()),
		)
	}
	observability.Comments.Inc()
	return comment, nil
}

func (s *CommentService) commentablePost(ctx context.Context, postID uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished() {
		return nil, models.NewNotFoundError("Post", postID)
	}
	if post.IsLocked {
		return nil, models.NewValidationError("Locked posts do not take comments")
	}
	return post, nil
}

func (s *CommentService) authorFor(ctx context.Context, visitorID, explicit string) (string, error) {
	author := strings.TrimSpace(explicit)
	if author == "" {
		remembered, err := s.prefs.GetString(ctx, visitorID, prefs.KeyAnonName)
		if err != nil {
			return "", err
		}
		author = remembered
	}
	if author == "" {
		author = s.CoolName()
	}
	if utf8.RuneCountInString(author) > maxAuthorNameLen {
		return "", models.NewValidationError("Author name too long (max 60 characters)")
	}
	return author, nil
}

// CoolName returns a random "<Adjective>-<Noun>" commenter name.
func (s *CommentService) CoolName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nameAdjectives[s.rng.Intn(len(nameAdjectives))] + "-" + nameNouns[s.rng.Intn(len(nameNouns))]
}
