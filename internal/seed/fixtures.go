package seed

import (
	"time"

	"archives/internal/models"
)

// DemoPosts returns the fixture posts served in demo mode. Timestamps that
// should read as "now" are taken from now so the fixtures never age.
func DemoPosts(now time.Time) []*models.Post {
	return []*models.Post{
		{
			ID:        1,
			Type:      models.PostTypeBookReview,
			Title:     "Naval Ravikant",
			Content:   "A guide to wealth & happiness.\nRating: 5/5",
			IsPinned:  true,
			Status:    models.PostStatusPublished,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        2,
			Type:      models.PostTypePoetry,
			Title:     "Sard Hawayein",
			Content:   "Ye sard hawayein is shehar ki...",
			IsPinned:  true,
			Status:    models.PostStatusPublished,
			CreatedAt: time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC),
			UpdatedAt: time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:        3,
			Type:      models.PostTypeTech,
			Title:     "System_Init",
			Content:   "Initializing core modules...",
			Status:    models.PostStatusPublished,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// DemoVIPs is empty: demo mode never reveals a guest message.
func DemoVIPs() []models.VIPEntry {
	return []models.VIPEntry{}
}
