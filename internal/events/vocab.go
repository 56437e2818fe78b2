package events

// Countries offered by the location filter.
var Countries = []string{
	"United States", "Canada", "United Kingdom", "Germany", "France", "Italy", "Spain",
	"Netherlands", "Sweden", "Norway", "Denmark", "Finland", "Poland", "Russia", "Turkey",
	"Egypt", "Kenya", "Ghana", "Morocco", "Saudi Arabia", "United Arab Emirates",
}

// Vocabulary holds the choices rendered in the filter selects.
type Vocabulary struct {
	Locations []string     `json:"countries"`
	Fandoms   []string     `json:"fandoms"`
	Dates     []DateBucket `json:"dates"`
}

// VocabularyFor combines the fixed country list with whatever the catalog uses.
func VocabularyFor(c *Catalog) Vocabulary {
	locations := make([]string, 0, len(Countries))
	seen := make(map[string]struct{}, len(Countries))
	for _, l := range append(append([]string{}, Countries...), c.Locations()...) {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		locations = append(locations, l)
	}
	return Vocabulary{
		Locations: locations,
		Fandoms:   c.Fandoms(),
		Dates:     DateBuckets,
	}
}
