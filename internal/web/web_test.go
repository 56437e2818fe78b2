package web

import (
	"bytes"
	"io/fs"
	"testing"
	"time"

	"capes/internal/events"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, name string, data fiber.Map) string {
	t.Helper()
	engine := NewEngine()
	require.NoError(t, engine.Load())
	var buf bytes.Buffer
	require.NoError(t, engine.Render(&buf, name, data, Layout))
	return buf.String()
}

func TestRender_Login(t *testing.T) {
	out := render(t, "login", fiber.Map{"Title": "Sign in"})
	assert.Contains(t, out, "Continue with Twitch")
	assert.Contains(t, out, `action="/auth/signin"`)
	assert.NotContains(t, out, "Sign out", "signed-out pages have no top bar")
}

func TestRender_EventsPaged(t *testing.T) {
	item := events.EventItem{
		ID: "1", Title: "Cosplay Meetup: Night City", CoverURL: "/static/covers/globe.svg",
		Location: "United States", Date: time.Date(2025, 10, 12, 18, 0, 0, 0, time.UTC),
		Fandom: "Cyberpunk 2077", Tags: []string{"cosplay"}, Kind: events.KindIRL,
	}
	fandom := "Cyberpunk 2077"
	out := render(t, "events", fiber.Map{
		"Title":     "Events",
		"Viewer":    "panam",
		"Filter":    events.FilterState{Fandom: &fandom},
		"Vocab":     events.Vocabulary{Locations: []string{"United States"}, Fandoms: []string{fandom}, Dates: events.DateBuckets},
		"Paged":     true,
		"Page":      events.Paginate([]events.EventItem{item}, 1, 6),
		"ResetURL":  "/events?view=paged",
		"ViewURL":   "/events",
		"ViewLabel": "Sectioned view",
	})
	assert.Contains(t, out, "Cosplay Meetup: Night City")
	assert.Contains(t, out, "Page 1 of 1")
	assert.Contains(t, out, `aria-disabled="true">Previous`)
	assert.Contains(t, out, `aria-disabled="true">Next`)
	assert.Contains(t, out, `<option value="Cyberpunk 2077" selected>`)
	assert.Contains(t, out, "Sign out")
}

func TestRender_EventsEmpty(t *testing.T) {
	out := render(t, "events", fiber.Map{
		"Title":    "Events",
		"Viewer":   "panam",
		"Filter":   events.FilterState{Query: "nothing"},
		"Vocab":    events.Vocabulary{},
		"Sections": events.Sectionize(nil),
		"Empty":    true,
		"ResetURL": "/events",
	})
	assert.Contains(t, out, "No events match your filters")
	assert.NotContains(t, out, "<h2>Trending</h2>")
}

func TestStatic(t *testing.T) {
	for _, name := range []string{"app.css", "covers/globe.svg", "covers/orchestra.svg", "covers/sketch.svg"} {
		_, err := fs.Stat(mustSub(staticFS, "static"), name)
		assert.NoError(t, err, name)
	}
}
