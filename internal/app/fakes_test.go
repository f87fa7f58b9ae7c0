package app_test

import (
	"context"
	"encoding/json"
	"time"

	"experiences_portal/internal/domain"
)

// ---- fakes ----

type fakePlatform struct {
	experiences domain.ExperiencePage
	experience  domain.Experience
	rates       domain.RatePage
	rate        domain.Rate
	orders      map[string]domain.Order

	listCalls   int
	createCalls int

	createErr error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{orders: map[string]domain.Order{}}
}

func (f *fakePlatform) ListExperiences(ctx context.Context, page int) (domain.ExperiencePage, error) {
	f.listCalls++
	return f.experiences, nil
}

func (f *fakePlatform) GetExperience(ctx context.Context, id string) (domain.Experience, error) {
	return f.experience, nil
}

func (f *fakePlatform) ListRates(ctx context.Context, experienceID, from, until string, page int) (domain.RatePage, error) {
	return f.rates, nil
}

func (f *fakePlatform) GetRate(ctx context.Context, experienceID, rateID string) (domain.Rate, error) {
	return f.rate, nil
}

func (f *fakePlatform) CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error) {
	f.createCalls++
	if f.createErr != nil {
		return domain.Order{}, f.createErr
	}
	o := domain.Order{
		ID:                  "ord-1",
		Status:              domain.OrderPending,
		TravelerInformation: req.TravelerInformation,
	}
	for i, b := range req.Bookings {
		o.Bookings = append(o.Bookings, domain.Booking{
			ID:             "b" + string(rune('1'+i)),
			AvailabilityID: b.AvailabilityID,
			RateID:         b.RateID,
			RatesQuantity:  b.RatesQuantity,
			Reseller:       b.Reseller,
			BookingStatus:  domain.BookingPending,
		})
	}
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakePlatform) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return f.orders[id], nil
}

func (f *fakePlatform) AddBooking(ctx context.Context, orderID string, booking domain.BookingRequest) (domain.Order, error) {
	o := f.orders[orderID]
	o.Bookings = append(o.Bookings, domain.Booking{
		ID:             "b-new",
		AvailabilityID: booking.AvailabilityID,
		RateID:         booking.RateID,
		RatesQuantity:  booking.RatesQuantity,
	})
	f.orders[orderID] = o
	return o, nil
}

func (f *fakePlatform) RemoveBookings(ctx context.Context, orderID string, bookingIDs []string) (domain.Order, error) {
	o := f.orders[orderID]
	drop := map[string]bool{}
	for _, id := range bookingIDs {
		drop[id] = true
	}
	var kept []domain.Booking
	for _, b := range o.Bookings {
		if !drop[b.ID] {
			kept = append(kept, b)
		}
	}
	o.Bookings = kept
	f.orders[orderID] = o
	return o, nil
}

func (f *fakePlatform) ConfirmOrder(ctx context.Context, orderID string, req domain.OrderRequest) (domain.Order, error) {
	o := f.orders[orderID]
	o.Status = domain.OrderBooked
	f.orders[orderID] = o
	return o, nil
}

// fakeCache round-trips through JSON, matching the redis adapter's
// semantics closely enough for cache-policy tests.
type fakeCache struct {
	store map[string][]byte
}

func newFakeCache() *fakeCache { return &fakeCache{store: map[string][]byte{}} }

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func (c *fakeCache) has(key string) bool {
	_, ok := c.store[key]
	return ok
}

type fakeIndex struct {
	refs map[string]domain.OrderRef
}

func newFakeIndex() *fakeIndex { return &fakeIndex{refs: map[string]domain.OrderRef{}} }

func (f *fakeIndex) UpsertOrder(ctx context.Context, ref domain.OrderRef) error {
	f.refs[ref.ID] = ref
	return nil
}

func (f *fakeIndex) ListOrders(ctx context.Context, limit int) ([]domain.OrderRef, error) {
	var out []domain.OrderRef
	for _, r := range f.refs {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeIndex) ListOrderIDs(ctx context.Context) ([]string, error) {
	var out []string
	for id := range f.refs {
		out = append(out, id)
	}
	return out, nil
}
