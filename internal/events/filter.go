package events

import (
	"net/url"
	"strings"
)

// DateBucket is a coarse date range a visitor can pick.
type DateBucket string

// Date buckets.
const (
	DateToday   DateBucket = "today"
	DateWeekend DateBucket = "weekend"
	DateMonth   DateBucket = "month"
)

// DateBuckets lists the buckets in display order.
var DateBuckets = []DateBucket{DateToday, DateWeekend, DateMonth}

// ParseDateBucket accepts a bucket value case-insensitively.
func ParseDateBucket(s string) (DateBucket, bool) {
	b := DateBucket(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range DateBuckets {
		if b == known {
			return b, true
		}
	}
	return "", false
}

// Label is the display name of the bucket.
func (b DateBucket) Label() string {
	switch b {
	case DateToday:
		return "Today"
	case DateWeekend:
		return "This weekend"
	case DateMonth:
		return "This month"
	default:
		return string(b)
	}
}

// Query parameter names used by ParseFilterState and FilterState.Values.
const (
	ParamQuery    = "q"
	ParamLocation = "country"
	ParamFandom   = "fandom"
	ParamDate     = "date"
)

// FilterState is the set of constraints narrowing the catalog. A nil selector
// means no constraint.
type FilterState struct {
	Query    string      `json:"query"`
	Location *string     `json:"country"`
	Fandom   *string     `json:"fandom"`
	Date     *DateBucket `json:"date"`
}

// ParseFilterState builds a filter from request parameters read through get.
// Blank values leave the selector unset; an unknown date bucket is ignored.
func ParseFilterState(get func(key string) string) FilterState {
	var f FilterState
	f.Query = get(ParamQuery)
	if v := strings.TrimSpace(get(ParamLocation)); v != "" {
		f.Location = &v
	}
	if v := strings.TrimSpace(get(ParamFandom)); v != "" {
		f.Fandom = &v
	}
	if b, ok := ParseDateBucket(get(ParamDate)); ok {
		f.Date = &b
	}
	return f
}

// IsActive reports whether any constraint is set.
func (f FilterState) IsActive() bool {
	return strings.TrimSpace(f.Query) != "" || f.Location != nil || f.Fandom != nil || f.Date != nil
}

// Reset clears every constraint.
func (f *FilterState) Reset() {
	*f = FilterState{}
}

// Values encodes the filter as query parameters. Page is never included, so a
// link built from a changed filter starts at page 1.
func (f FilterState) Values() url.Values {
	v := url.Values{}
	if q := strings.TrimSpace(f.Query); q != "" {
		v.Set(ParamQuery, f.Query)
	}
	if f.Location != nil {
		v.Set(ParamLocation, *f.Location)
	}
	if f.Fandom != nil {
		v.Set(ParamFandom, *f.Fandom)
	}
	if f.Date != nil {
		v.Set(ParamDate, string(*f.Date))
	}
	return v
}

// LocationValue returns the location selector or "".
func (f FilterState) LocationValue() string {
	if f.Location == nil {
		return ""
	}
	return *f.Location
}

// FandomValue returns the fandom selector or "".
func (f FilterState) FandomValue() string {
	if f.Fandom == nil {
		return ""
	}
	return *f.Fandom
}

// DateValue returns the date bucket or "".
func (f FilterState) DateValue() DateBucket {
	if f.Date == nil {
		return ""
	}
	return *f.Date
}

// Apply returns the catalog items matching f, in catalog order. The input is
// not modified. The date bucket is carried by FilterState but not evaluated.
func Apply(catalog []EventItem, f FilterState) []EventItem {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]EventItem, 0, len(catalog))
	for _, e := range catalog {
		if f.Location != nil && e.Location != *f.Location {
			continue
		}
		if f.Fandom != nil && e.Fandom != *f.Fandom {
			continue
		}
		if q != "" && !strings.Contains(searchText(e), q) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func searchText(e EventItem) string {
	return strings.ToLower(e.Title + " " + strings.Join(e.Tags, " "))
}
