package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"experiences_portal/internal/domain"
)

const orderListKey = "orders:index"

func orderKey(id string) string { return "order:" + id }

// OrderService owns the order cache entries and the local order index.
// Every successful mutation writes the platform's returned order into the
// cache entry for that order id; nothing is written optimistically.
type OrderService struct {
	platform domain.BookingPlatform
	cache    domain.Cache
	index    domain.OrderIndex
	cacheTTL time.Duration
}

func NewOrderService(p domain.BookingPlatform, c domain.Cache, idx domain.OrderIndex, ttl time.Duration) *OrderService {
	return &OrderService{platform: p, cache: c, index: idx, cacheTTL: ttl}
}

// store records a freshly fetched or mutated order: cache entry plus a
// best-effort index refresh. Index failures are logged, not surfaced; the
// order itself lives upstream.
func (s *OrderService) store(ctx context.Context, o domain.Order) {
	_ = s.cache.Set(ctx, orderKey(o.ID), o, s.cacheTTL)
	if s.index != nil {
		if err := s.index.UpsertOrder(ctx, domain.NewOrderRef(o)); err != nil {
			log.Warn().Str("order", o.ID).Err(err).Msg("order index upsert failed")
		}
	}
}

func (s *OrderService) Create(ctx context.Context, req domain.OrderRequest) (domain.Order, error) {
	o, err := s.platform.CreateOrder(ctx, req)
	if err != nil {
		return domain.Order{}, err
	}
	s.store(ctx, o)
	// A new order changes what the placed-orders listing shows.
	_ = s.cache.Del(ctx, orderListKey)
	return o, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (domain.Order, error) {
	if id == "" {
		return domain.Order{}, fmt.Errorf("%w: order id", ErrMissingParam)
	}
	var out domain.Order
	if ok, _ := s.cache.Get(ctx, orderKey(id), &out); ok {
		return out, nil
	}
	out, err := s.platform.GetOrder(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	s.store(ctx, out)
	return out, nil
}

// Refresh busts the cache entry before re-reading, for the order view's
// manual refresh action.
func (s *OrderService) Refresh(ctx context.Context, id string) (domain.Order, error) {
	if id == "" {
		return domain.Order{}, fmt.Errorf("%w: order id", ErrMissingParam)
	}
	_ = s.cache.Del(ctx, orderKey(id))
	return s.Get(ctx, id)
}

func (s *OrderService) AddBooking(ctx context.Context, orderID string, booking domain.BookingRequest) (domain.Order, error) {
	o, err := s.platform.AddBooking(ctx, orderID, booking)
	if err != nil {
		return domain.Order{}, err
	}
	s.store(ctx, o)
	return o, nil
}

func (s *OrderService) RemoveBookings(ctx context.Context, orderID string, bookingIDs []string) (domain.Order, error) {
	if len(bookingIDs) == 0 {
		return domain.Order{}, fmt.Errorf("%w: booking ids", ErrMissingParam)
	}
	o, err := s.platform.RemoveBookings(ctx, orderID, bookingIDs)
	if err != nil {
		return domain.Order{}, err
	}
	s.store(ctx, o)
	return o, nil
}

// Confirm re-reads the current order and sends the platform the
// reconstructed create payload, booking ids preserved.
func (s *OrderService) Confirm(ctx context.Context, orderID string) (domain.Order, error) {
	current, err := s.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if !current.CanConfirm() {
		return domain.Order{}, fmt.Errorf("order %s is %s and cannot be confirmed", orderID, current.Status)
	}
	o, err := s.platform.ConfirmOrder(ctx, orderID, current.ConfirmRequest())
	if err != nil {
		return domain.Order{}, err
	}
	s.store(ctx, o)
	return o, nil
}

// Placed lists the orders this reseller created, from the local index,
// cached until the next order creation invalidates it.
func (s *OrderService) Placed(ctx context.Context, limit int) ([]domain.OrderRef, error) {
	if s.index == nil {
		return nil, nil
	}
	var out []domain.OrderRef
	if ok, _ := s.cache.Get(ctx, orderListKey, &out); ok {
		return out, nil
	}
	out, err := s.index.ListOrders(ctx, limit)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, orderListKey, out, s.cacheTTL)
	return out, nil
}

// SyncOrder refreshes one indexed order from the platform. The ordersync
// worker fans this out over every indexed id.
func (s *OrderService) SyncOrder(ctx context.Context, id string) error {
	o, err := s.platform.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	s.store(ctx, o)
	return nil
}

// IndexedOrderIDs exposes the index ids for the sync worker.
func (s *OrderService) IndexedOrderIDs(ctx context.Context) ([]string, error) {
	if s.index == nil {
		return nil, nil
	}
	return s.index.ListOrderIDs(ctx)
}
