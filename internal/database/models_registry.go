package database

import "archives/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Admin{},
		&models.Post{},
		&models.Comment{},
		&models.VIPEntry{},
	}
}
