// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"
)

// DefaultBio is assigned to every profile row created or saved by the app.
const DefaultBio = "New user"

// Profile is the per-identity user record. ID equals the authenticated identity's ID.
type Profile struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Username   string    `gorm:"type:varchar(64);uniqueIndex:idx_profiles_username,where:username <> ''" json:"username"`
	FullName   string    `json:"full_name"`
	AvatarURL  string    `json:"avatar_url"`
	Bio        string    `json:"bio"`
	Country    string    `json:"country"`
	Interests  Labels    `json:"interests"`
	Fandoms    Labels    `json:"fandoms"`
	EventCount int       `gorm:"not null;default:0" json:"event_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsComplete reports whether username and country are non-blank and at least
// one interest is selected. A nil profile is never complete.
func (p *Profile) IsComplete() bool {
	if p == nil {
		return false
	}
	return strings.TrimSpace(p.Username) != "" &&
		strings.TrimSpace(p.Country) != "" &&
		len(p.Interests) > 0
}

// DisplayName picks the best available name for greeting the user.
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	if name := strings.TrimSpace(p.FullName); name != "" {
		return name
	}
	return strings.TrimSpace(p.Username)
}
