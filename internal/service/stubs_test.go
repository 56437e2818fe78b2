package service

import (
	"context"
	"sync"

	"capes/internal/models"
)

type profileRepoStub struct {
	mu              sync.Mutex
	getByIDFn       func(ctx context.Context, id string) (*models.Profile, error)
	ensureDefaultFn func(ctx context.Context, id string) (*models.Profile, error)
	saveFn          func(ctx context.Context, p *models.Profile) error
	adjustFn        func(ctx context.Context, id string, delta int) error
	ensureCalls     int
	saveCalls       int
}

func noopProfileRepo() *profileRepoStub {
	return &profileRepoStub{
		getByIDFn:       func(context.Context, string) (*models.Profile, error) { return nil, nil },
		ensureDefaultFn: func(_ context.Context, id string) (*models.Profile, error) { return &models.Profile{ID: id, Bio: models.DefaultBio}, nil },
		saveFn:          func(context.Context, *models.Profile) error { return nil },
		adjustFn:        func(context.Context, string, int) error { return nil },
	}
}

func (s *profileRepoStub) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	return s.getByIDFn(ctx, id)
}

func (s *profileRepoStub) EnsureDefault(ctx context.Context, id string) (*models.Profile, error) {
	s.mu.Lock()
	s.ensureCalls++
	s.mu.Unlock()
	return s.ensureDefaultFn(ctx, id)
}

func (s *profileRepoStub) Save(ctx context.Context, p *models.Profile) error {
	s.mu.Lock()
	s.saveCalls++
	s.mu.Unlock()
	return s.saveFn(ctx, p)
}

func (s *profileRepoStub) AdjustEventCount(ctx context.Context, id string, delta int) error {
	return s.adjustFn(ctx, id, delta)
}

type eventRepoStub struct {
	mu        sync.Mutex
	rows      []models.Event
	listErr   error
	listCalls int
	upserted  []models.Event
}

func (s *eventRepoStub) ListAll(context.Context) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]models.Event(nil), s.rows...), nil
}

func (s *eventRepoStub) GetByID(_ context.Context, id string) (*models.Event, error) {
	for _, r := range s.rows {
		if r.ID == id {
			row := r
			return &row, nil
		}
	}
	return nil, models.NewNotFoundError("Event", id)
}

func (s *eventRepoStub) UpsertMany(_ context.Context, rows []models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserted = append(s.upserted, rows...)
	return nil
}

func (s *eventRepoStub) Count(context.Context) (int64, error) {
	return int64(len(s.rows)), nil
}

type rsvpRepoStub struct {
	mu   sync.Mutex
	rows map[string]map[string]bool
}

func newRSVPRepoStub() *rsvpRepoStub {
	return &rsvpRepoStub{rows: map[string]map[string]bool{}}
}

func (s *rsvpRepoStub) Create(_ context.Context, eventID, profileID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rows[eventID] == nil {
		s.rows[eventID] = map[string]bool{}
	}
	if s.rows[eventID][profileID] {
		return false, nil
	}
	s.rows[eventID][profileID] = true
	return true, nil
}

func (s *rsvpRepoStub) Delete(_ context.Context, eventID, profileID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.rows[eventID][profileID] {
		return false, nil
	}
	delete(s.rows[eventID], profileID)
	return true, nil
}

func (s *rsvpRepoStub) Exists(_ context.Context, eventID, profileID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[eventID][profileID], nil
}

func (s *rsvpRepoStub) Count(_ context.Context, eventID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.rows[eventID])), nil
}
