package repository

import "gorm.io/gorm"

// NewDatabaseRepositories wires the gorm-backed repositories.
func NewDatabaseRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Posts:    NewPostRepository(db),
		Comments: NewCommentRepository(db),
		VIPs:     NewVIPRepository(db),
		Admins:   NewAdminRepository(db),
	}
}
