package server

import (
	"net/http"
	"testing"

	"capes/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readyEnv(t *testing.T, opts ...func(*config.Config)) (*testEnv, string) {
	t.Helper()
	env := newTestEnv(t, opts...)
	id := testIdentity("panam")
	env.completeProfile(t, id, "Canada")
	return env, env.signIn(t, id)
}

func TestEventsPage_RequiresCompleteProfile(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.signIn(t, testIdentity("panam"))

	resp := env.do(t, request{target: "/events", cookie: cookie})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/complete-profile", resp.Header.Get("Location"))
}

func TestEventsPage_Sectioned(t *testing.T) {
	env, cookie := readyEnv(t)

	resp := env.do(t, request{target: "/events", cookie: cookie})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	for _, want := range []string{
		"<h2>Categories</h2>", "<h2>Trending</h2>", "<h2>Virtual</h2>", "<h2>In person</h2>",
		"Cosplay Meetup: Night City", "Hyrule Fan Orchestra", "Spider-Verse Sketch Jam",
		"Paged view",
	} {
		assert.Contains(t, body, want)
	}
	assert.NotContains(t, body, "Page 1 of")
}

func TestEventsPage_Paged(t *testing.T) {
	env, cookie := readyEnv(t)

	resp := env.do(t, request{target: "/events?view=paged", cookie: cookie})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Page 1 of 2")
	assert.Contains(t, body, `aria-disabled="true">Previous`)
	assert.Contains(t, body, "page=2")
	assert.Contains(t, body, "Sectioned view")
	assert.Contains(t, body, "Cosplay Meetup: Night City")
	assert.NotContains(t, body, "Spider-Verse Sketch Jam")

	resp = env.do(t, request{target: "/events?view=paged&page=9", cookie: cookie})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = readBody(t, resp)
	assert.Contains(t, body, "Page 2 of 2", "out-of-range pages are clamped")
	assert.Contains(t, body, `aria-disabled="true">Next`)
	assert.Contains(t, body, "Spider-Verse Sketch Jam")
}

func TestEventsPage_PagedByFlag(t *testing.T) {
	env, cookie := readyEnv(t, func(c *config.Config) { c.FeatureFlags = "paged_events=on" })

	resp := env.do(t, request{target: "/events", cookie: cookie})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Page 1 of 2")

	resp = env.do(t, request{target: "/events?view=sectioned", cookie: cookie})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, readBody(t, resp), "Page 1 of 2")
}

func TestEventsPage_Filters(t *testing.T) {
	env, cookie := readyEnv(t)

	t.Run("search", func(t *testing.T) {
		resp := env.do(t, request{target: "/events?q=ORCHESTRA", cookie: cookie})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := readBody(t, resp)
		assert.Contains(t, body, "Hyrule Fan Orchestra")
		assert.NotContains(t, body, "Spider-Verse Sketch Jam")
		assert.Contains(t, body, "Reset")
	})

	t.Run("fandom", func(t *testing.T) {
		resp := env.do(t, request{target: "/events?fandom=Marvel", cookie: cookie})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := readBody(t, resp)
		assert.Contains(t, body, "Spider-Verse Sketch Jam")
		assert.NotContains(t, body, "Hyrule Fan Orchestra")
		assert.Contains(t, body, `<option value="Marvel" selected>`)
	})

	t.Run("no matches", func(t *testing.T) {
		resp := env.do(t, request{target: "/events?country=Canada", cookie: cookie})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := readBody(t, resp)
		assert.Contains(t, body, "No events match your filters")
		assert.NotContains(t, body, "<h2>Trending</h2>")
	})

	t.Run("date bucket is carried but not applied", func(t *testing.T) {
		resp := env.do(t, request{target: "/events?date=weekend", cookie: cookie})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := readBody(t, resp)
		assert.Contains(t, body, `<option value="weekend" selected>`)
		assert.Contains(t, body, "Spider-Verse Sketch Jam")
	})
}

func TestEventDetailPage(t *testing.T) {
	env, cookie := readyEnv(t)

	resp := env.do(t, request{target: "/events/2", cookie: cookie})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Hyrule Fan Orchestra")
	assert.Contains(t, body, "@sheikah_strings")
	assert.Contains(t, body, "0 going")
	assert.Contains(t, body, ">RSVP</button>")

	resp = env.do(t, request{target: "/events/999", cookie: cookie})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Event not found.")
}

func TestRSVPSubmit(t *testing.T) {
	env, cookie := readyEnv(t)

	resp := env.form(t, "/events/2/rsvp", "", cookie)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/events/2?rsvp=going", resp.Header.Get("Location"))

	resp = env.do(t, request{target: "/events/2?rsvp=going", cookie: cookie})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "1 going")
	assert.Contains(t, body, "Cancel RSVP")
	assert.Contains(t, body, `role="status"`)

	resp = env.form(t, "/events/2/rsvp", "action=cancel", cookie)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/events/2?rsvp=cancelled", resp.Header.Get("Location"))

	resp = env.do(t, request{target: "/events/2", cookie: cookie})
	assert.Contains(t, readBody(t, resp), "0 going")

	resp = env.form(t, "/events/999/rsvp", "", cookie)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEventsAPI(t *testing.T) {
	env, cookie := readyEnv(t)

	t.Run("incomplete profile", func(t *testing.T) {
		other := env.signIn(t, testIdentity("judy"))
		resp := env.do(t, request{target: "/api/events", cookie: other})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "PROFILE_INCOMPLETE", decodeJSON(t, resp)["code"])
	})

	t.Run("sectioned", func(t *testing.T) {
		resp := env.do(t, request{target: "/api/events", cookie: cookie})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeJSON(t, resp)
		sections := body["sections"].(map[string]any)
		assert.Equal(t, float64(3), sections["total"])
		assert.Len(t, sections["trending"], 2)
		assert.Nil(t, body["page"])
	})

	t.Run("paged", func(t *testing.T) {
		resp := env.do(t, request{target: "/api/events?view=paged&page=2&fandom=Zelda", cookie: cookie})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		page := decodeJSON(t, resp)["page"].(map[string]any)
		assert.Equal(t, float64(1), page["total"])
		assert.Equal(t, float64(1), page["page"])
		assert.Equal(t, false, page["has_next"])
	})

	t.Run("get", func(t *testing.T) {
		resp := env.do(t, request{target: "/api/events/1", cookie: cookie})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeJSON(t, resp)
		assert.Equal(t, "Cosplay Meetup: Night City", body["event"].(map[string]any)["title"])
		assert.Equal(t, map[string]any{"count": float64(0), "going": false}, body["attendance"])
	})

	t.Run("missing", func(t *testing.T) {
		resp := env.do(t, request{target: "/api/events/999", cookie: cookie})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeJSON(t, resp)["code"])
	})

	t.Run("rsvp", func(t *testing.T) {
		resp := env.do(t, request{method: http.MethodPost, target: "/api/events/3/rsvp", cookie: cookie})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, map[string]any{"count": float64(1), "going": true}, decodeJSON(t, resp))

		// Repeating an RSVP changes nothing.
		resp = env.do(t, request{method: http.MethodPost, target: "/api/events/3/rsvp", cookie: cookie})
		assert.Equal(t, map[string]any{"count": float64(1), "going": true}, decodeJSON(t, resp))

		resp = env.do(t, request{method: http.MethodDelete, target: "/api/events/3/rsvp", cookie: cookie})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, map[string]any{"count": float64(0), "going": false}, decodeJSON(t, resp))
	})
}
