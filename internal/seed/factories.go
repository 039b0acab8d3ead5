// Package seed provides helpers to create demo data for the archive
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"archives/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(seed))}
}

// BuildPost constructs a post of the given type without persisting it.
func (f *Factory) BuildPost(postType string, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		Type:   postType,
		Title:  strings.TrimSuffix(gofakeit.Sentence(f.rng.Intn(4)+2), "."),
		Status: models.PostStatusPublished,
		Likes:  f.rng.Intn(40),
	}

	switch postType {
	case models.PostTypePoetry:
		lines := make([]string, f.rng.Intn(4)+3)
		for i := range lines {
			lines[i] = gofakeit.Sentence(6)
		}
		post.Content = strings.Join(lines, "\n")
	case models.PostTypeBookReview:
		post.Title = gofakeit.BookTitle()
		post.Content = fmt.Sprintf("%s\nRating: %d/5", gofakeit.Paragraph(1, 3, 12, " "), f.rng.Intn(5)+1)
	case models.PostTypeTech:
		post.Content = fmt.Sprintf("%s\n\n%s", gofakeit.HackerPhrase(), gofakeit.Paragraph(2, 3, 10, "\n"))
	default:
		post.Content = gofakeit.Paragraph(2, 4, 12, "\n\n")
	}

	if f.rng.Intn(5) == 0 {
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID())
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 730
	}
	post.CreatedAt = time.Now().Add(-time.Duration(f.rng.Intn(maxDays*24)) * time.Hour)
	post.UpdatedAt = post.CreatedAt

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePosts persists n posts spread across every post type.
func (f *Factory) CreatePosts(n int) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		postType := models.PostTypes[i%len(models.PostTypes)]
		posts = append(posts, f.BuildPost(postType, func(p *models.Post) {
			if f.rng.Intn(8) == 0 {
				p.IsLocked = true
			}
			if f.rng.Intn(10) == 0 {
				p.Status = models.PostStatusDraft
			}
		}))
	}
	if len(posts) == 0 {
		return posts, nil
	}
	if err := f.db.CreateInBatches(posts, 100).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// CreateComments adds up to perPost comments under each post.
func (f *Factory) CreateComments(posts []*models.Post, perPost int) (int, error) {
	var comments []*models.Comment
	for _, p := range posts {
		if perPost <= 0 {
			break
		}
		for i := f.rng.Intn(perPost + 1); i > 0; i-- {
			comments = append(comments, &models.Comment{
				PostID:     p.ID,
				AuthorName: gofakeit.Adjective() + "-" + gofakeit.Noun(),
				Content:    gofakeit.Sentence(f.rng.Intn(12) + 3),
				CreatedAt:  p.CreatedAt.Add(time.Duration(f.rng.Intn(72)+1) * time.Hour),
			})
		}
	}
	if len(comments) == 0 {
		return 0, nil
	}
	if err := f.db.CreateInBatches(comments, 200).Error; err != nil {
		return 0, err
	}
	return len(comments), nil
}

// CreateVIPs adds n guest-list entries with one to three aliases each.
func (f *Factory) CreateVIPs(n int) ([]models.VIPEntry, error) {
	entries := make([]models.VIPEntry, 0, n)
	for i := 0; i < n; i++ {
		names := []string{gofakeit.FirstName()}
		for j := f.rng.Intn(3); j > 0; j-- {
			names = append(names, gofakeit.PetName())
		}
		entries = append(entries, models.VIPEntry{
			Names:   strings.Join(names, ", "),
			Date:    gofakeit.DateRange(time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), time.Now()).Format("2006-01-02"),
			Message: gofakeit.Paragraph(1, 2, 14, " "),
		})
	}
	if len(entries) == 0 {
		return entries, nil
	}
	if err := f.db.Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
