// Package repository provides the data access layer: gorm-backed
// repositories for the database backend and read-only fixture repositories
// for demo mode.
package repository

import (
	"context"
	"errors"

	"archives/internal/cache"
	"archives/internal/models"
	"archives/internal/observability"

	"gorm.io/gorm"
)

// ListPostsOptions narrows a post listing.
type ListPostsOptions struct {
	// PublishedOnly hides drafts; set for every viewer without a session.
	PublishedOnly bool
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	List(ctx context.Context, opts ListPostsOptions) ([]*models.Post, error)
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	// Update writes only the given columns.
	Update(ctx context.Context, id uint, fields map[string]any) (*models.Post, error)
	Delete(ctx context.Context, id uint) error
	// IncrementLikes adds one like and returns the new total.
	IncrementLikes(ctx context.Context, id uint) (int, error)
}

type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

func (r *postRepository) List(ctx context.Context, opts ListPostsOptions) ([]*models.Post, error) {
	defer observability.TrackQuery("list", "posts")()

	var posts []*models.Post
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if opts.PublishedOnly {
		q = q.Where("status = ?", models.PostStatusPublished)
	}
	err := q.Order("is_pinned DESC").Order("created_at DESC").Order("id DESC").Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		return r.db.WithContext(ctx).First(&post, id).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Post", id)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	cache.InvalidatePosts(ctx)
	r.log.LogCreate(ctx, map[string]any{"post_id": post.ID, "type": post.Type, "status": post.Status})
	return nil
}

func (r *postRepository) Update(ctx context.Context, id uint, fields map[string]any) (*models.Post, error) {
	if len(fields) > 0 {
		res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			r.log.LogError(ctx, res.Error, "update")
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, models.NewNotFoundError("Post", id)
		}
		cache.InvalidatePosts(ctx, id)
		r.log.LogUpdate(ctx, map[string]any{"post_id": id, "fields": len(fields)})
	}
	return r.GetByID(ctx, id)
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	cache.InvalidatePosts(ctx, id)
	r.log.LogDelete(ctx, map[string]any{"post_id": id})
	return nil
}

func (r *postRepository) IncrementLikes(ctx context.Context, id uint) (int, error) {
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).
		UpdateColumn("likes", gorm.Expr("likes + ?", 1))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, models.NewNotFoundError("Post", id)
	}
	cache.InvalidatePosts(ctx, id)

	var likes int
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Pluck("likes", &likes).Error; err != nil {
		return 0, err
	}
	return likes, nil
}
