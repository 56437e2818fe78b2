package session

import (
	"context"
	"errors"
	"sync"

	"capes/internal/auth"
	"capes/internal/models"
	"capes/internal/observability"
)

// Outcome is where the gate sends a visitor.
type Outcome int

const (
	Unauthenticated Outcome = iota
	ProfileIncomplete
	Ready
)

func (o Outcome) String() string {
	switch o {
	case Unauthenticated:
		return "unauthenticated"
	case ProfileIncomplete:
		return "profile_incomplete"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Decision is the result of resolving the gate for one request.
type Decision struct {
	Outcome Outcome
	Profile *models.Profile
}

// RedirectTarget is the page the visitor must be sent to, or "" when they may stay.
func (d Decision) RedirectTarget() string {
	switch d.Outcome {
	case Unauthenticated:
		return "/login"
	case ProfileIncomplete:
		return "/complete-profile"
	default:
		return ""
	}
}

// ProfileStore is the subset of the profile service the gate depends on.
type ProfileStore interface {
	FetchProfile(ctx context.Context, id string) (*models.Profile, error)
	EnsureProfileWithDefaults(ctx context.Context, id string) (*models.Profile, error)
}

// Gate decides, per request, whether a visitor is signed in and onboarded.
type Gate struct {
	store ProfileStore
}

func NewGate(store ProfileStore) *Gate {
	return &Gate{store: store}
}

// Resolve makes exactly one ensure-with-defaults call for a signed-in identity,
// so a first visit always leaves a profile row behind. Store errors propagate.
func (g *Gate) Resolve(ctx context.Context, id *auth.Identity) (Decision, error) {
	if id == nil || id.ID == "" {
		observability.GateDecisions.WithLabelValues(Unauthenticated.String()).Inc()
		return Decision{Outcome: Unauthenticated}, nil
	}

	p, err := g.store.EnsureProfileWithDefaults(ctx, id.ID)
	if err != nil {
		observability.GateDecisions.WithLabelValues("error").Inc()
		return Decision{}, err
	}
	if p == nil {
		observability.GateDecisions.WithLabelValues("error").Inc()
		return Decision{}, errors.New("profile store returned no profile")
	}

	d := Decision{Outcome: ProfileIncomplete, Profile: p}
	if p.IsComplete() {
		d.Outcome = Ready
	}
	observability.GateDecisions.WithLabelValues(d.Outcome.String()).Inc()
	return d, nil
}

// ProfileContext is the per-request view of the signed-in visitor. It is built
// by the gate middleware and only lives for one request.
type ProfileContext struct {
	Identity auth.Identity

	store   ProfileStore
	mu      sync.RWMutex
	profile *models.Profile
}

func NewProfileContext(id auth.Identity, p *models.Profile, store ProfileStore) *ProfileContext {
	return &ProfileContext{Identity: id, profile: p, store: store}
}

// Profile returns the last loaded profile.
func (pc *ProfileContext) Profile() *models.Profile {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.profile
}

// Set replaces the held profile. Handlers call it after a write whose result
// already carries the stored row (SaveProfile re-reads it), so the request
// sees the new state without a second lookup.
func (pc *ProfileContext) Set(p *models.Profile) {
	pc.mu.Lock()
	pc.profile = p
	pc.mu.Unlock()
}

// Refresh re-reads the profile from the store, for writes that do not return
// the stored row.
func (pc *ProfileContext) Refresh(ctx context.Context) error {
	p, err := pc.store.FetchProfile(ctx, pc.Identity.ID)
	if err != nil {
		return err
	}
	pc.Set(p)
	return nil
}

// DisplayName prefers the profile username over the provider name.
func (pc *ProfileContext) DisplayName() string {
	if p := pc.Profile(); p != nil && p.DisplayName() != "" {
		return p.DisplayName()
	}
	if pc.Identity.DisplayName != "" {
		return pc.Identity.DisplayName
	}
	return pc.Identity.Login
}
