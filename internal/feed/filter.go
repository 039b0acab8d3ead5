// Package feed derives the visible post list from the full archive: tag
// filtering, free-text search, base ordering and draft visibility.
package feed

import (
	"sort"
	"strings"

	"archives/internal/models"

	"golang.org/x/text/cases"
)

// Virtual tags. Any other tag is treated as a post type.
const (
	TagHome   = "Home"
	TagAll    = "All"
	TagLocked = "Locked"
)

// NavTags lists the tags offered in the navigation bar, in order. Locked is
// reachable only through the vault.
var NavTags = []string{
	TagHome,
	TagAll,
	models.PostTypePoetry,
	models.PostTypeTech,
	models.PostTypeDiary,
	models.PostTypeBookReview,
}

// ParseTag canonicalises a requested tag. Empty means Home; known tags and
// post types match case-insensitively; anything else is returned trimmed.
func ParseTag(raw string) string {
	tag := strings.TrimSpace(raw)
	if tag == "" {
		return TagHome
	}
	for _, known := range append([]string{TagHome, TagAll, TagLocked}, models.PostTypes...) {
		if strings.EqualFold(known, tag) {
			return known
		}
	}
	return tag
}

// MatchesTag applies the tag predicate to a single post.
func MatchesTag(p *models.Post, tag string) bool {
	switch tag {
	case TagLocked:
		return p.IsLocked
	case TagHome:
		return p.IsPinned && !p.IsLocked
	case TagAll:
		return !p.IsLocked
	default:
		return p.Type == tag
	}
}

// MatchesQuery reports whether title or content contains query, ignoring case.
// An empty (or blank) query matches everything.
func MatchesQuery(p *models.Post, query string) bool {
	q := strings.TrimSpace(query)
	if q == "" {
		return true
	}
	fold := cases.Fold()
	needle := fold.String(q)
	return strings.Contains(fold.String(p.Title), needle) ||
		strings.Contains(fold.String(p.Content), needle)
}

// Filter returns the posts matching both tag and query, preserving input order.
// The result is never nil.
func Filter(posts []*models.Post, tag, query string) []*models.Post {
	out := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if MatchesQuery(p, query) && MatchesTag(p, tag) {
			out = append(out, p)
		}
	}
	return out
}

// Sort orders posts pinned first, then newest first; ties fall back to the
// higher id so the order is total.
func Sort(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		if a.IsPinned != b.IsPinned {
			return a.IsPinned
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// Visible drops drafts unless the viewer is a signed-in admin.
func Visible(posts []*models.Post, isAdmin bool) []*models.Post {
	if isAdmin {
		return posts
	}
	out := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if p.IsPublished() {
			out = append(out, p)
		}
	}
	return out
}
