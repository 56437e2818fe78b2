package events

import "strings"

// DefaultPageSize is used when a non-positive page size is requested.
const DefaultPageSize = 6

// Page is one slice of a filtered result in the fixed-page view.
type Page struct {
	Items      []EventItem `json:"items"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	Total      int         `json:"total"`
	TotalPages int         `json:"total_pages"`
	HasPrev    bool        `json:"has_prev"`
	HasNext    bool        `json:"has_next"`
}

// PrevPage is the page number the Previous control links to.
func (p Page) PrevPage() int {
	if !p.HasPrev {
		return p.Page
	}
	return p.Page - 1
}

// NextPage is the page number the Next control links to.
func (p Page) NextPage() int {
	if !p.HasNext {
		return p.Page
	}
	return p.Page + 1
}

// Paginate cuts items into pages of pageSize and returns the requested one.
// There is always at least one page. Out-of-range page numbers are clamped.
func Paginate(items []EventItem, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total {
		end = total
	}
	slice := make([]EventItem, end-start)
	copy(slice, items[start:end])

	return Page{
		Items:      slice,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}

// Sections groups a filtered result for the sectioned view. Groups may overlap
// and any of them may be empty.
type Sections struct {
	Categories []string    `json:"categories"`
	Virtual    []EventItem `json:"virtual"`
	InPerson   []EventItem `json:"in_person"`
	Trending   []EventItem `json:"trending"`
	Total      int         `json:"total"`
}

// Empty reports whether the whole result is empty, which is the only case
// where the sections are replaced by the empty state.
func (s Sections) Empty() bool {
	return s.Total == 0
}

// Sectionize partitions items into categories, virtual, in-person and trending.
func Sectionize(items []EventItem) Sections {
	s := Sections{
		Categories: distinct(items, func(e EventItem) string { return e.Fandom }),
		Virtual:    []EventItem{},
		InPerson:   []EventItem{},
		Trending:   []EventItem{},
		Total:      len(items),
	}
	for _, e := range items {
		switch e.Kind {
		case KindVirtual:
			s.Virtual = append(s.Virtual, e)
		case KindIRL:
			s.InPerson = append(s.InPerson, e)
		}
		if e.Trending {
			s.Trending = append(s.Trending, e)
		}
	}
	return s
}

// ForProfile picks up to limit items located in country or sharing a fandom
// or tag with one of the interests, in catalog order. Matching is case-insensitive.
func ForProfile(items []EventItem, country string, interests []string, limit int) []EventItem {
	wanted := make(map[string]struct{}, len(interests))
	for _, label := range interests {
		if l := strings.ToLower(strings.TrimSpace(label)); l != "" {
			wanted[l] = struct{}{}
		}
	}
	country = strings.TrimSpace(country)

	matches := func(e EventItem) bool {
		if country != "" && strings.EqualFold(e.Location, country) {
			return true
		}
		if _, ok := wanted[strings.ToLower(e.Fandom)]; ok {
			return true
		}
		for _, tag := range e.Tags {
			if _, ok := wanted[strings.ToLower(tag)]; ok {
				return true
			}
		}
		return false
	}

	out := []EventItem{}
	for _, e := range items {
		if limit > 0 && len(out) >= limit {
			break
		}
		if matches(e) {
			out = append(out, e)
		}
	}
	return out
}
