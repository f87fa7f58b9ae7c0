package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"experiences_portal/internal/app"
	"experiences_portal/internal/domain"
)

func TestExperiences_CacheMissThenHit(t *testing.T) {
	platform := newFakePlatform()
	platform.experiences = domain.ExperiencePage{
		Count:   120,
		Results: []domain.Experience{{ID: "exp-1", Name: "City Walk"}},
	}
	cache := newFakeCache()
	q := app.NewCatalogService(platform, cache, 10*time.Minute)

	// Miss (first time, populates cache)
	page, err := q.Experiences(context.Background(), 1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if page.Count != 120 || page.Results[0].Name != "City Walk" {
		t.Fatalf("unexpected page: %+v", page)
	}

	// Mutate the platform to prove the second read is the cached one
	platform.experiences.Results[0].Name = "SHOULD NOT SEE THIS"

	page2, err := q.Experiences(context.Background(), 1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if page2.Results[0].Name != "City Walk" {
		t.Fatalf("expected cached name, got %s", page2.Results[0].Name)
	}
	if platform.listCalls != 1 {
		t.Fatalf("expected one platform call, got %d", platform.listCalls)
	}
}

func TestExperiences_ReadOnlyEntityStableAcrossFetches(t *testing.T) {
	platform := newFakePlatform()
	platform.experience = domain.Experience{ID: "exp-2", Name: "Kayak Tour", Description: "Paddle"}
	q := app.NewCatalogService(platform, newFakeCache(), 10*time.Minute)

	a, err := q.Experience(context.Background(), "exp-2")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	b, err := q.Experience(context.Background(), "exp-2")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if a.ID != b.ID || a.Name != b.Name || a.Description != b.Description {
		t.Fatalf("display data changed between fetches: %+v vs %+v", a, b)
	}
}

func TestQueries_GatedOnRequiredParams(t *testing.T) {
	q := app.NewCatalogService(newFakePlatform(), newFakeCache(), time.Minute)

	if _, err := q.Experience(context.Background(), ""); !errors.Is(err, app.ErrMissingParam) {
		t.Fatalf("expected ErrMissingParam, got %v", err)
	}
	if _, err := q.Rates(context.Background(), "", "", "", 1); !errors.Is(err, app.ErrMissingParam) {
		t.Fatalf("expected ErrMissingParam, got %v", err)
	}
	if _, err := q.Rate(context.Background(), "exp-1", ""); !errors.Is(err, app.ErrMissingParam) {
		t.Fatalf("expected ErrMissingParam, got %v", err)
	}
}

func TestRates_KeyedByWindow(t *testing.T) {
	platform := newFakePlatform()
	platform.rates = domain.RatePage{Count: 1, Results: []domain.Rate{{ID: "rate-1"}}}
	cache := newFakeCache()
	q := app.NewCatalogService(platform, cache, time.Minute)

	if _, err := q.Rates(context.Background(), "exp-1", "2026-09-01", "2026-09-02", 1); err != nil {
		t.Fatalf("err: %v", err)
	}
	// A different window is a different cache entry.
	platform.rates = domain.RatePage{Count: 2, Results: []domain.Rate{{ID: "rate-1"}, {ID: "rate-2"}}}
	page, err := q.Rates(context.Background(), "exp-1", "2026-09-03", "2026-09-03", 1)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if page.Count != 2 {
		t.Fatalf("expected fresh fetch for new window, got %+v", page)
	}
}

func TestRefreshExperiences_BustsPageOne(t *testing.T) {
	platform := newFakePlatform()
	platform.experiences = domain.ExperiencePage{Count: 1, Results: []domain.Experience{{ID: "old"}}}
	cache := newFakeCache()
	q := app.NewCatalogService(platform, cache, time.Minute)

	if _, err := q.Experiences(context.Background(), 1); err != nil {
		t.Fatalf("err: %v", err)
	}
	platform.experiences = domain.ExperiencePage{Count: 1, Results: []domain.Experience{{ID: "new"}}}

	page, err := q.RefreshExperiences(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if page.Results[0].ID != "new" {
		t.Fatalf("refresh served stale data: %+v", page)
	}
}
