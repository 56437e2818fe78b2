package models

import "time"

// Event is the persisted form of a catalog entry when the catalog is served
// from the database.
type Event struct {
	ID          string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	CoverURL    string     `json:"cover_url"`
	Location    string     `gorm:"index" json:"location"`
	StartsAt    time.Time  `gorm:"not null" json:"starts_at"`
	Fandom      string     `gorm:"index" json:"fandom"`
	Tags        StringList `json:"tags"`
	Kind        string     `gorm:"type:varchar(16)" json:"kind"`
	Trending    bool       `gorm:"not null;default:false" json:"trending"`
	Description string     `json:"description"`
	HostName    string     `json:"host_name"`
	Position    int        `gorm:"not null;default:0;index" json:"position"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// EventRSVP records that a profile plans to attend an event.
type EventRSVP struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	EventID   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_event_rsvps_event_profile" json:"event_id"`
	ProfileID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_event_rsvps_event_profile;index" json:"profile_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the RSVP table name readable.
func (EventRSVP) TableName() string {
	return "event_rsvps"
}
