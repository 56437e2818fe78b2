package database

import "capes/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Profile{},
		&models.Event{},
		&models.EventRSVP{},
	}
}
