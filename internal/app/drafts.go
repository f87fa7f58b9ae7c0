package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"experiences_portal/internal/domain"
)

// ErrDraftNotFound covers both an unknown draft id and one that expired
// out of the store; either way the flow starts over.
var ErrDraftNotFound = errors.New("booking draft not found")

func draftKey(id string) string { return "draft:" + id }

// DraftService stores booking drafts in the cache under a TTL, so an
// abandoned flow cleans itself up. All state-transition rules live on the
// domain draft; this service only does load-modify-save.
type DraftService struct {
	cache domain.Cache
	ttl   time.Duration
}

func NewDraftService(c domain.Cache, ttl time.Duration) *DraftService {
	return &DraftService{cache: c, ttl: ttl}
}

func (s *DraftService) Create(ctx context.Context, experienceID string) (*domain.BookingDraft, error) {
	d := domain.NewBookingDraft(uuid.NewString(), experienceID)
	if err := s.cache.Set(ctx, draftKey(d.ID), d, s.ttl); err != nil {
		return nil, err
	}
	return d, nil
}

// Get loads a draft; a draft created for a different experience does not
// carry over to another booking flow.
func (s *DraftService) Get(ctx context.Context, id, experienceID string) (*domain.BookingDraft, error) {
	if id == "" {
		return nil, ErrDraftNotFound
	}
	var d domain.BookingDraft
	ok, err := s.cache.Get(ctx, draftKey(id), &d)
	if err != nil {
		return nil, err
	}
	if !ok || d.ExperienceID != experienceID {
		return nil, ErrDraftNotFound
	}
	return &d, nil
}

// Update applies one transition and persists the result. The apply error
// comes back unwrapped so handlers can show it verbatim.
func (s *DraftService) Update(ctx context.Context, id, experienceID string, apply func(*domain.BookingDraft) error) (*domain.BookingDraft, error) {
	d, err := s.Get(ctx, id, experienceID)
	if err != nil {
		return nil, err
	}
	if err := apply(d); err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, draftKey(d.ID), d, s.ttl); err != nil {
		return nil, err
	}
	return d, nil
}

// Discard drops the draft, ending the booking flow.
func (s *DraftService) Discard(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.cache.Del(ctx, draftKey(id))
}
