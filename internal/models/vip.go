package models

import (
	"strings"
	"time"
)

// VIPEntry is a guest-list record: the names a person may answer with, the
// date that proves them, and the message revealed once both match.
type VIPEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Names     string    `gorm:"type:text;not null" json:"names"`
	Date      string    `gorm:"size:10" json:"date"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName keeps the table name short.
func (VIPEntry) TableName() string {
	return "vips"
}

// Aliases splits Names on commas, trims and lowercases each alias and drops empties.
func (v *VIPEntry) Aliases() []string {
	parts := strings.Split(v.Names, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
