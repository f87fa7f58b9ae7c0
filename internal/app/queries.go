package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"experiences_portal/internal/domain"
)

// ErrMissingParam gates queries the same way the UI tier gates them: a
// query with an absent required parameter never reaches the platform.
var ErrMissingParam = errors.New("missing required parameter")

// CatalogService serves the read side (experiences, rates) through a
// cache-aside policy keyed by resource kind and filter parameters.
type CatalogService struct {
	platform domain.BookingPlatform
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewCatalogService(p domain.BookingPlatform, c domain.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{platform: p, cache: c, cacheTTL: ttl}
}

func experiencesKey(page int) string { return fmt.Sprintf("experiences:p%d", page) }

func (s *CatalogService) Experiences(ctx context.Context, page int) (domain.ExperiencePage, error) {
	if page < 1 {
		page = 1
	}
	key := experiencesKey(page)
	var out domain.ExperiencePage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	out, err := s.platform.ListExperiences(ctx, page)
	if err != nil {
		return domain.ExperiencePage{}, err
	}
	_ = s.cache.Set(ctx, key, out, s.cacheTTL)
	return out, nil
}

// RefreshExperiences backs the listing view's manual refresh: back to page
// one, with the cached entry dropped first so the platform is re-queried.
func (s *CatalogService) RefreshExperiences(ctx context.Context) (domain.ExperiencePage, error) {
	_ = s.cache.Del(ctx, experiencesKey(1))
	return s.Experiences(ctx, 1)
}

func (s *CatalogService) Experience(ctx context.Context, id string) (domain.Experience, error) {
	if id == "" {
		return domain.Experience{}, fmt.Errorf("%w: experience id", ErrMissingParam)
	}
	key := "experience:" + id
	var out domain.Experience
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	out, err := s.platform.GetExperience(ctx, id)
	if err != nil {
		return domain.Experience{}, err
	}
	_ = s.cache.Set(ctx, key, out, s.cacheTTL)
	return out, nil
}

func (s *CatalogService) Rates(ctx context.Context, experienceID, from, until string, page int) (domain.RatePage, error) {
	if experienceID == "" {
		return domain.RatePage{}, fmt.Errorf("%w: experience id", ErrMissingParam)
	}
	if page < 1 {
		page = 1
	}
	key := fmt.Sprintf("rates:%s:%s:%s:p%d", experienceID, from, until, page)
	var out domain.RatePage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	out, err := s.platform.ListRates(ctx, experienceID, from, until, page)
	if err != nil {
		return domain.RatePage{}, err
	}
	_ = s.cache.Set(ctx, key, out, s.cacheTTL)
	return out, nil
}

func (s *CatalogService) Rate(ctx context.Context, experienceID, rateID string) (domain.Rate, error) {
	if experienceID == "" || rateID == "" {
		return domain.Rate{}, fmt.Errorf("%w: experience id and rate id", ErrMissingParam)
	}
	key := fmt.Sprintf("rate:%s:%s", experienceID, rateID)
	var out domain.Rate
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	out, err := s.platform.GetRate(ctx, experienceID, rateID)
	if err != nil {
		return domain.Rate{}, err
	}
	_ = s.cache.Set(ctx, key, out, s.cacheTTL)
	return out, nil
}
