// Package interests implements the ordered interest selection used by the
// profile completion form, and the form's choice lists.
package interests

import (
	"strings"

	"capes/internal/models"
)

// Selection is an ordered set of interest labels. Labels keep the order in
// which they were first added and are never repeated.
type Selection struct {
	labels []string
}

// NewSelection builds a selection from stored labels. Later duplicates are dropped.
func NewSelection(labels []string) *Selection {
	s := &Selection{labels: make([]string, 0, len(labels))}
	for _, l := range labels {
		if !s.Contains(l) {
			s.labels = append(s.labels, l)
		}
	}
	return s
}

// Contains reports whether label is selected. Matching is by exact value.
func (s *Selection) Contains(label string) bool {
	for _, l := range s.labels {
		if l == label {
			return true
		}
	}
	return false
}

// Toggle removes label when selected and appends it otherwise. The label is
// trimmed first; blank labels are ignored.
func (s *Selection) Toggle(label string) {
	label = strings.TrimSpace(label)
	if label == "" {
		return
	}
	if !s.Contains(label) {
		s.labels = append(s.labels, label)
		return
	}
	kept := s.labels[:0]
	for _, l := range s.labels {
		if l != label {
			kept = append(kept, l)
		}
	}
	s.labels = kept
}

// AddCustom trims raw and appends it unless it is blank or already selected.
// It reports whether the selection changed.
func (s *Selection) AddCustom(raw string) bool {
	label := strings.TrimSpace(raw)
	if label == "" || s.Contains(label) {
		return false
	}
	s.labels = append(s.labels, label)
	return true
}

// Count is the number of selected labels.
func (s *Selection) Count() int {
	return len(s.labels)
}

// Labels returns the selected labels in order, as a copy.
func (s *Selection) Labels() models.Labels {
	out := make(models.Labels, len(s.labels))
	copy(out, s.labels)
	return out
}

// Positional returns the stored form: 1-based position to label, renumbered
// without gaps.
func (s *Selection) Positional() map[string]string {
	return s.Labels().Positional()
}

// Submittable reports whether the completion form may be submitted: username
// and country are non-blank and at least one interest is selected.
func Submittable(username, country string, s *Selection) bool {
	return strings.TrimSpace(username) != "" &&
		strings.TrimSpace(country) != "" &&
		s != nil && s.Count() > 0
}
