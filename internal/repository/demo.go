package repository

import (
	"context"
	"sync"
	"time"

	"archives/internal/feed"
	"archives/internal/models"
	"archives/internal/seed"
)

// Repositories bundles the backend collaborator the services depend on.
type Repositories struct {
	Posts    PostRepository
	Comments CommentRepository
	VIPs     VIPRepository
	Admins   AdminRepository
}

// NewDemoRepositories returns read-only repositories over the fixture data.
// Every mutation fails with models.ErrDemoMode.
func NewDemoRepositories() *Repositories {
	posts := &demoPostRepository{posts: seed.DemoPosts(time.Now())}
	return &Repositories{
		Posts:    posts,
		Comments: demoCommentRepository{},
		VIPs:     &demoVIPRepository{entries: seed.DemoVIPs()},
		Admins:   demoAdminRepository{},
	}
}

type demoPostRepository struct {
	mu    sync.RWMutex
	posts []*models.Post
}

func (r *demoPostRepository) List(_ context.Context, opts ListPostsOptions) ([]*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if opts.PublishedOnly && !p.IsPublished() {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	feed.Sort(out)
	return out, nil
}

func (r *demoPostRepository) GetByID(_ context.Context, id uint) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.posts {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, models.NewNotFoundError("Post", id)
}

func (r *demoPostRepository) Create(context.Context, *models.Post) error {
	return models.ErrDemoMode
}

func (r *demoPostRepository) Update(context.Context, uint, map[string]any) (*models.Post, error) {
	return nil, models.ErrDemoMode
}

func (r *demoPostRepository) Delete(context.Context, uint) error {
	return models.ErrDemoMode
}

func (r *demoPostRepository) IncrementLikes(context.Context, uint) (int, error) {
	return 0, models.ErrDemoMode
}

type demoCommentRepository struct{}

func (demoCommentRepository) ListByPost(context.Context, uint) ([]*models.Comment, error) {
	return []*models.Comment{}, nil
}

func (demoCommentRepository) Create(context.Context, *models.Comment) error {
	return models.ErrDemoMode
}

type demoVIPRepository struct {
	entries []models.VIPEntry
}

func (r *demoVIPRepository) List(context.Context) ([]models.VIPEntry, error) {
	out := make([]models.VIPEntry, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

func (r *demoVIPRepository) GetByID(_ context.Context, id uint) (*models.VIPEntry, error) {
	for i := range r.entries {
		if r.entries[i].ID == id {
			e := r.entries[i]
			return &e, nil
		}
	}
	return nil, models.NewNotFoundError("VIP entry", id)
}

func (r *demoVIPRepository) Create(context.Context, *models.VIPEntry) error {
	return models.ErrDemoMode
}

func (r *demoVIPRepository) Update(context.Context, uint, map[string]any) (*models.VIPEntry, error) {
	return nil, models.ErrDemoMode
}

func (r *demoVIPRepository) Delete(context.Context, uint) error {
	return models.ErrDemoMode
}

type demoAdminRepository struct{}

func (demoAdminRepository) GetByEmail(context.Context, string) (*models.Admin, error) {
	return nil, models.ErrDemoMode
}

func (demoAdminRepository) GetByID(context.Context, uint) (*models.Admin, error) {
	return nil, models.ErrDemoMode
}

func (demoAdminRepository) Create(context.Context, *models.Admin) error {
	return models.ErrDemoMode
}

func (demoAdminRepository) List(context.Context) ([]models.Admin, error) {
	return []models.Admin{}, nil
}
