package events

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var demoCatalogYAML []byte

// ErrDuplicateID is returned when two catalog entries share an identifier.
var ErrDuplicateID = errors.New("duplicate event id")

// Catalog is an immutable, ordered set of events with unique identifiers.
type Catalog struct {
	items []EventItem
	byID  map[string]int
}

// NewCatalog copies items into a catalog, keeping their order.
func NewCatalog(items []EventItem) (*Catalog, error) {
	c := &Catalog{
		items: make([]EventItem, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	for _, item := range items {
		if strings.TrimSpace(item.ID) == "" {
			return nil, fmt.Errorf("event %q has no id", item.Title)
		}
		if _, dup := c.byID[item.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, item.ID)
		}
		c.byID[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}
	return c, nil
}

// Items returns the events in catalog order. The slice is a copy.
func (c *Catalog) Items() []EventItem {
	if c == nil {
		return []EventItem{}
	}
	out := make([]EventItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len is the number of events.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Find looks an event up by id.
func (c *Catalog) Find(id string) (EventItem, bool) {
	if c == nil {
		return EventItem{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return EventItem{}, false
	}
	return c.items[i], true
}

// Fandoms lists the distinct fandoms in first-seen order.
func (c *Catalog) Fandoms() []string {
	return distinct(c.Items(), func(e EventItem) string { return e.Fandom })
}

// Locations lists the distinct locations in first-seen order.
func (c *Catalog) Locations() []string {
	return distinct(c.Items(), func(e EventItem) string { return e.Location })
}

type catalogFile struct {
	Events []catalogEntry `yaml:"events"`
}

type catalogEntry struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	CoverURL    string   `yaml:"cover_url"`
	Location    string   `yaml:"location"`
	Date        string   `yaml:"date"`
	Fandom      string   `yaml:"fandom"`
	Tags        []string `yaml:"tags"`
	Kind        string   `yaml:"kind"`
	Trending    bool     `yaml:"trending"`
	Host        string   `yaml:"host"`
	Description string   `yaml:"description"`
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	items := make([]EventItem, 0, len(file.Events))
	for _, e := range file.Events {
		date, err := time.Parse(time.RFC3339, e.Date)
		if err != nil {
			return nil, fmt.Errorf("event %s: invalid date %q: %w", e.ID, e.Date, err)
		}
		kind := Kind(strings.ToLower(strings.TrimSpace(e.Kind)))
		switch kind {
		case "", KindVirtual, KindIRL:
		default:
			return nil, fmt.Errorf("event %s: unknown kind %q", e.ID, e.Kind)
		}
		tags := e.Tags
		if tags == nil {
			tags = []string{}
		}
		items = append(items, EventItem{
			ID:          e.ID,
			Title:       e.Title,
			CoverURL:    e.CoverURL,
			Location:    e.Location,
			Date:        date.UTC(),
			Fandom:      e.Fandom,
			Tags:        tags,
			Kind:        kind,
			Trending:    e.Trending,
			Description: e.Description,
			HostName:    e.Host,
		})
	}
	return NewCatalog(items)
}

// LoadDemoCatalog returns the built-in demo events.
func LoadDemoCatalog() (*Catalog, error) {
	return ParseCatalog(demoCatalogYAML)
}

func distinct(items []EventItem, key func(EventItem) string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		k := key(item)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
