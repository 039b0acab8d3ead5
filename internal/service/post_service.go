package service

import (
	"context"
	"strings"
	"time"

	"archives/internal/cache"
	"archives/internal/feed"
	"archives/internal/models"
	"archives/internal/observability"
	"archives/internal/prefs"
	"archives/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	maxTitleLen   = 300
	maxContentLen = 50000
)

type PostService struct {
	posts repository.PostRepository
	prefs prefs.Store
	demo  bool
	now   func() time.Time
}

// FeedInput selects what one visitor is looking at.
type FeedInput struct {
	VisitorID string
	Tag       string
	Query     string
	IsAdmin   bool
}

// PostInput is the authoring form for a new post.
type PostInput struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
	IsPinned bool   `json:"is_pinned"`
	IsLocked bool   `json:"is_locked"`
	Status   string `json:"status"`
}

// PostPatch carries only the fields present in an edit request.
type PostPatch struct {
	Type     *string `json:"type"`
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	ImageURL *string `json:"image_url"`
	IsPinned *bool   `json:"is_pinned"`
	IsLocked *bool   `json:"is_locked"`
	Status   *string `json:"status"`
}

// LikeResult is the post's like count after a like request.
type LikeResult struct {
	PostID       uint `json:"post_id"`
	Likes        int  `json:"likes"`
	AlreadyLiked bool `json:"already_liked"`
}

func NewPostService(posts repository.PostRepository, store prefs.Store, demo bool) *PostService {
	return &PostService{
		posts: posts,
		prefs: store,
		demo:  demo,
		now:   time.Now,
	}
}

// Feed lists the posts matching the visitor's tag and query as cards.
// Asking for the Locked tag before entering the vault returns
// models.ErrVaultRequired.
func (s *PostService) Feed(ctx context.Context, in FeedInput) (_ *feed.Page, err error) {
	tag := feed.ParseTag(in.Tag)
	query := strings.TrimSpace(in.Query)

	ctx, span := observability.StartSpan(ctx, "PostService", "Feed", attribute.String("tag", tag))
	defer func() { observability.EndSpan(span, err) }()

	unlocked, err := s.prefs.GetBool(ctx, in.VisitorID, prefs.KeyVaultUnlocked)
	if err != nil {
		return nil, err
	}
	if tag == feed.TagLocked && !unlocked {
		return nil, models.ErrVaultRequired
	}

	posts, err := s.list(ctx, in.IsAdmin)
	if err != nil {
		return nil, err
	}
	posts = feed.Filter(feed.Visible(posts, in.IsAdmin), tag, query)

	now := s.now()
	cards := make([]*feed.Card, 0, len(posts))
	for _, p := range posts {
		liked, err := s.prefs.GetBool(ctx, in.VisitorID, prefs.LikedKey(p.ID))
		if err != nil {
			return nil, err
		}
		cards = append(cards, feed.NewCard(p, unlocked, liked, now))
	}
	return feed.NewPage(tag, query, cards), nil
}

// GetPost returns one post as a card. Drafts are hidden from visitors.
func (s *PostService) GetPost(ctx context.Context, visitorID string, id uint, isAdmin bool) (*feed.Card, error) {
	post, err := s.visiblePost(ctx, id, isAdmin)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.prefs.GetBool(ctx, visitorID, prefs.KeyVaultUnlocked)
	if err != nil {
		return nil, err
	}
	liked, err := s.prefs.GetBool(ctx, visitorID, prefs.LikedKey(id))
	if err != nil {
		return nil, err
	}
	return feed.NewCard(post, unlocked, liked, s.now()), nil
}

// ListAll returns every post including drafts, for the authoring panel.
func (s *PostService) ListAll(ctx context.Context) ([]*models.Post, error) {
	return s.list(ctx, true)
}

func (s *PostService) list(ctx context.Context, isAdmin bool) ([]*models.Post, error) {
	audience := cache.AudiencePublished
	if isAdmin {
		audience = cache.AudienceAll
	}
	var posts []*models.Post
	err := cache.Aside(ctx, cache.PostsListKey(audience), &posts, cache.ListTTL, func() error {
		var err error
		posts, err = s.posts.List(ctx, repository.ListPostsOptions{PublishedOnly: !isAdmin})
		return err
	})
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts, nil
}

func (s *PostService) visiblePost(ctx context.Context, id uint, isAdmin bool) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !post.IsPublished() {
		return nil, models.NewNotFoundError("Post", id)
	}
	return post, nil
}

// InvalidateFeed drops the cached post lists.
func (s *PostService) InvalidateFeed(ctx context.Context) {
	cache.InvalidatePosts(ctx)
}

func (s *PostService) CreatePost(ctx context.Context, in PostInput) (*models.Post, error) {
	if s.demo {
		return nil, models.ErrDemoMode
	}
	post := &models.Post{
		Type:     strings.TrimSpace(in.Type),
		Title:    strings.TrimSpace(in.Title),
		Content:  in.Content,
		ImageURL: strings.TrimSpace(in.ImageURL),
		IsPinned: in.IsPinned,
		IsLocked: in.IsLocked,
		Status:   strings.TrimSpace(in.Status),
	}
	if post.Type == "" {
		post.Type = models.PostTypePoetry
	}
	if post.Status == "" {
		post.Status = models.PostStatusPublished
	}
	if err := validatePost(post); err != nil {
		return nil, err
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, id uint, in PostPatch) (*models.Post, error) {
	if s.demo {
		return nil, models.ErrDemoMode
	}
	current, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	next := *current
	if in.Type != nil {
		next.Type = strings.TrimSpace(*in.Type)
		if next.Type == "" {
			next.Type = models.PostTypePoetry
		}
		fields["type"] = next.Type
	}
	if in.Title != nil {
		next.Title = strings.TrimSpace(*in.Title)
		fields["title"] = next.Title
	}
	if in.Content != nil {
		next.Content = *in.Content
		fields["content"] = next.Content
	}
	if in.ImageURL != nil {
		next.ImageURL = strings.TrimSpace(*in.ImageURL)
		fields["image_url"] = next.ImageURL
	}
	if in.IsPinned != nil {
		next.IsPinned = *in.IsPinned
		fields["is_pinned"] = next.IsPinned
	}
	if in.IsLocked != nil {
		next.IsLocked = *in.IsLocked
		fields["is_locked"] = next.IsLocked
	}
	if in.Status != nil {
		next.Status = strings.TrimSpace(*in.Status)
		fields["status"] = next.Status
	}
	if err := validatePost(&next); err != nil {
		return nil, err
	}
	return s.posts.Update(ctx, id, fields)
}

func (s *PostService) DeletePost(ctx context.Context, id uint) error {
	if s.demo {
		return models.ErrDemoMode
	}
	return s.posts.Delete(ctx, id)
}

// Like records one like per visitor. A repeat returns the current count with
// AlreadyLiked set. Locked posts cannot be liked.
func (s *PostService) Like(ctx context.Context, visitorID string, id uint) (*LikeResult, error) {
	post, err := s.visiblePost(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if post.IsLocked {
		return nil, models.NewValidationError("Locked posts cannot be liked")
	}
	if s.demo {
		return nil, models.ErrDemoMode
	}

	first, err := s.prefs.MarkOnce(ctx, visitorID, prefs.LikedKey(id))
	if err != nil {
		return nil, err
	}
	if !first {
		return &LikeResult{PostID: id, Likes: post.Likes, AlreadyLiked: true}, nil
	}

	likes, err := s.posts.IncrementLikes(ctx, id)
	if err != nil {
		return nil, err
	}
	observability.Likes.Inc()
	return &LikeResult{PostID: id, Likes: likes}, nil
}

func validatePost(p *models.Post) error {
	if !models.IsPostType(p.Type) {
		return models.NewValidationError("Invalid type")
	}
	if p.Status != models.PostStatusPublished && p.Status != models.PostStatusDraft {
		return models.NewValidationError("Status must be published or draft")
	}
	if strings.TrimSpace(p.Content) == "" {
		return models.NewValidationError("Content is required")
	}
	if len(p.Title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 300 characters)")
	}
	if len(p.Content) > maxContentLen {
		return models.NewValidationError("Content too long (max 50000 characters)")
	}
	return nil
}
