package domain

import (
	"context"
	"time"
)

// BookingPlatform is the upstream API surface this application consumes.
// One method per remote operation; implementations perform exactly one
// outbound call per invocation.
type BookingPlatform interface {
	ListExperiences(ctx context.Context, page int) (ExperiencePage, error)
	GetExperience(ctx context.Context, id string) (Experience, error)
	ListRates(ctx context.Context, experienceID, from, until string, page int) (RatePage, error)
	GetRate(ctx context.Context, experienceID, rateID string) (Rate, error)

	CreateOrder(ctx context.Context, req OrderRequest) (Order, error)
	GetOrder(ctx context.Context, id string) (Order, error)
	AddBooking(ctx context.Context, orderID string, booking BookingRequest) (Order, error)
	RemoveBookings(ctx context.Context, orderID string, bookingIDs []string) (Order, error)
	ConfirmOrder(ctx context.Context, orderID string, req OrderRequest) (Order, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// OrderIndex is the reseller-side record of orders this process created.
type OrderIndex interface {
	UpsertOrder(ctx context.Context, ref OrderRef) error
	ListOrders(ctx context.Context, limit int) ([]OrderRef, error)
	ListOrderIDs(ctx context.Context) ([]string, error)
}
