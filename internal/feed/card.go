package feed

import (
	"time"

	"archives/internal/models"
)

const (
	// AgedAfter is how old a post must be before it is shown as archived.
	AgedAfter = 365 * 24 * time.Hour

	// EmptyMessage is shown when a filter yields nothing.
	EmptyMessage = "Nothing found."

	displayDateLayout = "02 Jan 2006"
	timelessLabel     = "Timeless"
)

// Card is a post as presented to one visitor.
type Card struct {
	*models.Post
	DisplayDate string `json:"display_date"`
	Aged        bool   `json:"aged"`
	Liked       bool   `json:"liked"`
	Redacted    bool   `json:"redacted"`
	CanInteract bool   `json:"can_interact"`
}

// Page is the response for one feed request.
type Page struct {
	Tag          string  `json:"tag"`
	Query        string  `json:"query"`
	Posts        []*Card `json:"posts"`
	Empty        bool    `json:"empty"`
	EmptyMessage string  `json:"empty_message,omitempty"`
	ShowNotice   bool    `json:"show_notice"`
}

// DisplayDate formats t for a card, or "Timeless" when it is unset.
func DisplayDate(t time.Time) string {
	if t.IsZero() {
		return timelessLabel
	}
	return t.Format(displayDateLayout)
}

// IsAged reports whether a post created at t counts as archived at now.
func IsAged(t, now time.Time) bool {
	return !t.IsZero() && now.Sub(t) > AgedAfter
}

// NewCard builds the visitor's view of p. A locked post is redacted while the
// visitor's vault is closed; locked posts never offer like or comment actions.
func NewCard(p *models.Post, vaultUnlocked, liked bool, now time.Time) *Card {
	c := &Card{
		Post:        p,
		DisplayDate: DisplayDate(p.CreatedAt),
		Aged:        IsAged(p.CreatedAt, now),
		Liked:       liked,
		CanInteract: !p.IsLocked,
	}
	if p.IsLocked && !vaultUnlocked {
		redacted := *p
		redacted.Title = ""
		redacted.Content = ""
		redacted.ImageURL = ""
		c.Post = &redacted
		c.Redacted = true
	}
	return c
}

// NewPage wraps filtered cards with the empty state and notice flag.
func NewPage(tag, query string, cards []*Card) *Page {
	if cards == nil {
		cards = []*Card{}
	}
	page := &Page{
		Tag:        tag,
		Query:      query,
		Posts:      cards,
		Empty:      len(cards) == 0,
		ShowNotice: tag == TagHome || tag == TagAll,
	}
	if page.Empty {
		page.EmptyMessage = EmptyMessage
	}
	return page
}
