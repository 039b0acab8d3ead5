// Package models contains data structures for the archive's domain models.
package models

import (
	"time"
)

// Post types an entry can be filed under.
const (
	PostTypePoetry     = "Poetry"
	PostTypeDiary      = "Diary Entry"
	PostTypeStory      = "Story"
	PostTypeConfession = "Confession"
	PostTypeTech       = "Tech"
	PostTypeBookReview = "Book Review"
)

// Publication states.
const (
	PostStatusPublished = "published"
	PostStatusDraft     = "draft"
)

// PostTypes lists the types offered by the authoring panel, in display order.
var PostTypes = []string{
	PostTypePoetry,
	PostTypeDiary,
	PostTypeStory,
	PostTypeConfession,
	PostTypeTech,
	PostTypeBookReview,
}

// IsPostType reports whether t is one of the known post types.
func IsPostType(t string) bool {
	for _, known := range PostTypes {
		if known == t {
			return true
		}
	}
	return false
}

// Post is one archive entry.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"size:40;not null;index" json:"type"`
	Title     string    `gorm:"size:300" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ImageURL  string    `json:"image_url,omitempty"`
	IsPinned  bool      `gorm:"not null;default:false;index" json:"is_pinned"`
	IsLocked  bool      `gorm:"not null;default:false" json:"is_locked"`
	Status    string    `gorm:"size:20;not null;default:published;index" json:"status"`
	Likes     int       `gorm:"not null;default:0" json:"likes"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPublished reports whether anonymous visitors may see the post.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}
