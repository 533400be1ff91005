// Package order wires cart normalization, the two-pass estimation flow,
// promo resolution, document numbering, and persistence into the booking
// use case.
package order

import (
	"context"
	"time"

	"github.com/umzugwerk/booking-api/internal/domain/booking"
	"github.com/umzugwerk/booking-api/internal/domain/pricing"
	"github.com/umzugwerk/booking-api/internal/domain/promo"
)

// Customer is the booking contact.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Booking is a committed, numbered, priced booking.
type Booking struct {
	ID          string
	OrderNo     string
	OfferNo     string
	ServiceType booking.ServiceType
	Context     booking.Context
	Cart        []booking.CartItem
	Breakdown   *pricing.Breakdown
	PromoCode   string
	Customer    Customer
	CreatedAt   time.Time
}

// Repository defines persistence operations for bookings.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
}

// PolicySource loads the active pricing configuration snapshot.
type PolicySource interface {
	ActivePolicy(ctx context.Context) (pricing.Policy, error)
}

// CatalogSource loads the active service option catalog.
type CatalogSource interface {
	ActiveServiceOptions(ctx context.Context) ([]pricing.ServiceOption, error)
}

// PromoSource loads the active, non-deleted promo rules.
type PromoSource interface {
	ActivePromoRules(ctx context.Context) ([]promo.Rule, error)
}
