package interests

import "strings"

// Options are the suggested interests shown as toggle buttons, de-duplicated
// case-insensitively.
var Options = dedupeFold([]string{
	"Anime", "Manga", "Comics", "Movies", "TV Shows", "Gaming", "Esports", "Cosplay",
	"K-Pop", "Music", "Books", "Collectibles", "Otaku", "Fanfiction", "Memes",
	"Streaming", "JRPGs", "Visual Novels",
})

// Countries offered by the profile form.
var Countries = []string{
	"United States", "Canada", "United Kingdom", "Germany", "France", "India",
	"Nigeria", "South Africa", "Brazil", "Japan", "Australia", "Other",
}

// Option is one toggle button on the form.
type Option struct {
	Label    string
	Selected bool
}

// OptionsFor marks which suggested interests are in s.
func OptionsFor(s *Selection) []Option {
	out := make([]Option, len(Options))
	for i, label := range Options {
		out[i] = Option{Label: label, Selected: s != nil && s.Contains(label)}
	}
	return out
}

// Custom returns the selected labels that are not among the suggestions.
func Custom(s *Selection) []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, l := range s.labels {
		if !isOption(l) {
			out = append(out, l)
		}
	}
	return out
}

func isOption(label string) bool {
	for _, o := range Options {
		if o == label {
			return true
		}
	}
	return false
}

func dedupeFold(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		dup := false
		for _, seen := range out {
			if strings.EqualFold(seen, v) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}
