package seed

import (
	"context"
	"log/slog"
	"time"

	"archives/internal/models"
	"archives/internal/observability"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumPosts       int
	NumVIPs        int
	CommentsPerMax int
	// MaxDays bounds how far back created_at is spread.
	MaxDays     int
	ShouldClean bool
	// Seed makes runs reproducible when non-zero.
	Seed int64
}

// DefaultOptions is what cmd/seed uses without flags.
var DefaultOptions = Options{
	NumPosts:       40,
	NumVIPs:        3,
	CommentsPerMax: 4,
	MaxDays:        730,
	ShouldClean:    true,
}

// Result reports how many rows a run inserted.
type Result struct {
	Posts    int
	Comments int
	VIPs     int
}

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new Seeder
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// ClearAll removes content rows. Admin accounts are kept.
func (s *Seeder) ClearAll() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.Comment{}, &models.Post{}, &models.VIPEntry{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Fixtures inserts the demo posts so a database-backed run starts with the
// same content demo mode serves.
func (s *Seeder) Fixtures(ctx context.Context) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	for _, p := range DemoPosts(time.Now()) {
		p.ID = 0
		if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
			return err
		}
	}
	return nil
}

// Run seeds generated content according to opts.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return nil, err
		}
	}
	if err := s.Fixtures(ctx); err != nil {
		return nil, err
	}

	f := NewFactory(s.db.WithContext(ctx), opts)
	posts, err := f.CreatePosts(opts.NumPosts)
	if err != nil {
		return nil, err
	}
	comments, err := f.CreateComments(posts, opts.CommentsPerMax)
	if err != nil {
		return nil, err
	}
	vips, err := f.CreateVIPs(opts.NumVIPs)
	if err != nil {
		return nil, err
	}

	res := &Result{Posts: len(posts), Comments: comments, VIPs: len(vips)}
	observability.GlobalLogger.InfoContext(ctx, "seed complete",
		slog.Int("posts", res.Posts),
		slog.Int("comments", res.Comments),
		slog.Int("vips", res.VIPs),
	)
	return res, nil
}
