// Package seed generates demo events for local databases. It is intended for
// development and testing only.
package seed

import (
	"fmt"
	"strings"
	"time"

	"capes/internal/events"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	fandoms = []string{
		"Cyberpunk 2077", "Zelda", "Marvel", "Star Wars", "Pokemon", "Final Fantasy",
		"One Piece", "Doctor Who", "Critical Role", "Hollow Knight",
	}
	tagPool = []string{
		"cosplay", "photowalk", "music", "concert", "art", "meetup", "trivia",
		"watch party", "speedrun", "crafts", "tabletop", "panel",
	}
	formats = []string{
		"Meetup", "Watch Party", "Cosplay Walk", "Trivia Night", "Sketch Jam",
		"Speedrun Marathon", "Listening Session", "Craft Circle",
	}
	covers = []string{
		"/static/covers/globe.svg", "/static/covers/orchestra.svg", "/static/covers/sketch.svg",
	}
)

// Factory builds catalog entries with plausible fake content. The same seed
// and start time always produce the same events.
type Factory struct {
	faker *gofakeit.Faker
	start time.Time
	next  int
}

// NewFactory creates a factory. Event dates fall within 90 days after start.
func NewFactory(seed int64, start time.Time) *Factory {
	return &Factory{faker: gofakeit.New(seed), start: start.UTC().Truncate(time.Hour)}
}

// BuildEvent returns one event. Overrides run last and may change any field.
func (f *Factory) BuildEvent(overrides ...func(*events.EventItem)) events.EventItem {
	f.next++
	fandom := f.faker.RandomString(fandoms)

	kind := events.KindIRL
	location := f.faker.RandomString(events.Countries)
	if f.faker.Bool() {
		kind = events.KindVirtual
	}

	item := events.EventItem{
		ID:          fmt.Sprintf("gen-%d", f.next),
		Title:       fandom + " " + f.faker.RandomString(formats),
		CoverURL:    f.faker.RandomString(covers),
		Location:    location,
		Date:        f.start.Add(time.Duration(f.faker.Number(1, 90*24)) * time.Hour),
		Fandom:      fandom,
		Tags:        f.tags(),
		Kind:        kind,
		Trending:    f.faker.Number(1, 4) == 1,
		Description: f.faker.Sentence(14),
		HostName:    "@" + strings.ToLower(f.faker.Username()),
	}

	for _, override := range overrides {
		override(&item)
	}
	return item
}

// BuildEvents returns n events with distinct ids.
func (f *Factory) BuildEvents(n int) []events.EventItem {
	out := make([]events.EventItem, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.BuildEvent())
	}
	return out
}

func (f *Factory) tags() []string {
	n := f.faker.Number(1, 3)
	seen := make(map[string]struct{}, n)
	tags := make([]string, 0, n)
	for len(tags) < n {
		t := f.faker.RandomString(tagPool)
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}
