// Package events holds the event catalog and the pure functions that filter,
// page and section it for display.
package events

import (
	"time"

	"capes/internal/models"
)

// Kind tells virtual events from in-person ones.
type Kind string

// Kinds.
const (
	KindVirtual Kind = "virtual"
	KindIRL     Kind = "irl"
)

// Label is the display name of the kind.
func (k Kind) Label() string {
	switch k {
	case KindVirtual:
		return "Virtual"
	case KindIRL:
		return "In person"
	default:
		return ""
	}
}

// EventItem is one catalog entry as shown in lists and on the detail page.
type EventItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	CoverURL    string    `json:"cover_url"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	Fandom      string    `json:"fandom"`
	Tags        []string  `json:"tags"`
	Kind        Kind      `json:"kind,omitempty"`
	Trending    bool      `json:"trending,omitempty"`
	Description string    `json:"description,omitempty"`
	HostName    string    `json:"host_name,omitempty"`
}

// FromModel converts a stored event row.
func FromModel(e models.Event) EventItem {
	tags := make([]string, len(e.Tags))
	copy(tags, e.Tags)
	return EventItem{
		ID:          e.ID,
		Title:       e.Title,
		CoverURL:    e.CoverURL,
		Location:    e.Location,
		Date:        e.StartsAt.UTC(),
		Fandom:      e.Fandom,
		Tags:        tags,
		Kind:        Kind(e.Kind),
		Trending:    e.Trending,
		Description: e.Description,
		HostName:    e.HostName,
	}
}

// Model converts the item to a row stored at the given catalog position.
func (e EventItem) Model(position int) models.Event {
	tags := make(models.StringList, len(e.Tags))
	copy(tags, e.Tags)
	return models.Event{
		ID:          e.ID,
		Title:       e.Title,
		CoverURL:    e.CoverURL,
		Location:    e.Location,
		StartsAt:    e.Date.UTC(),
		Fandom:      e.Fandom,
		Tags:        tags,
		Kind:        string(e.Kind),
		Trending:    e.Trending,
		Description: e.Description,
		HostName:    e.HostName,
		Position:    position,
	}
}
