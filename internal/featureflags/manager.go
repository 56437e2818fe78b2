// Package featureflags evaluates operator-configured flags with per-profile rollout.
package featureflags

import (
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// Known flags.
const (
	// PagedEvents switches the events page from sections to fixed-size pages.
	PagedEvents = "paged_events"
	// ForYouStrip shows interest-matched events on the home page.
	ForYouStrip = "for_you"
)

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "paged_events=25%,for_you=on"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config string.
// Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled returns whether a flag is enabled for a given profile.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic profile rollout, e.g. 25%)
func (m *Manager) Enabled(name, profileID string) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	if profileID == "" {
		return false
	}
	return rolloutBucket(name, profileID) < pct
}

// Names returns the configured flag names in sorted order.
func (m *Manager) Names() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.flags))
	for k := range m.flags {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	if m == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Snapshot returns evaluated flag status for one profile.
func (m *Manager) Snapshot(profileID string) map[string]bool {
	if m == nil {
		return map[string]bool{}
	}
	out := make(map[string]bool, len(m.flags))
	for name := range m.flags {
		out[name] = m.Enabled(name, profileID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name, profileID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + profileID))
	return int(h.Sum32() % 100)
}
