package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/umzugwerk/booking-api/internal/distance"
	"github.com/umzugwerk/booking-api/internal/domain/booking"
	"github.com/umzugwerk/booking-api/internal/domain/document"
	"github.com/umzugwerk/booking-api/internal/domain/pricing"
	"github.com/umzugwerk/booking-api/internal/domain/promo"
)

// NumberSource allocates document numbers.
type NumberSource interface {
	Next(ctx context.Context, scope document.Scope) (string, error)
}

// Request holds the input for an estimate or a committed booking.
type Request struct {
	Items       []booking.CartItem
	ServiceType booking.ServiceType
	Context     booking.Context

	MoveVolumeM3     float64
	DisposalVolumeM3 float64

	Access          []booking.AccessProfile
	Addons          []pricing.Addon
	SelectedOptions []pricing.SelectedOption
	Distance        *distance.Result
	Tier            pricing.Tier
	PromoCode       string

	Customer Customer
}

// Service encapsulates the booking business logic: it loads one immutable
// policy snapshot per request, runs the baseline and discount-aware
// estimation passes, and on commit allocates the order number and derives
// the offer number from it.
type Service struct {
	policies PolicySource
	catalog  CatalogSource
	promos   PromoSource
	numbers  NumberSource
	bookings Repository
	now      func() time.Time
}

// NewService creates a booking Service with the required dependencies.
func NewService(
	policies PolicySource,
	catalog CatalogSource,
	promos PromoSource,
	numbers NumberSource,
	bookings Repository,
) *Service {
	return &Service{
		policies: policies,
		catalog:  catalog,
		promos:   promos,
		numbers:  numbers,
		bookings: bookings,
		now:      time.Now,
	}
}

// Estimate runs the two-pass pricing flow: a baseline pass without discount
// produces the subtotal the promo code is resolved against, then a second
// pass applies the resolved rule. Both passes share one policy snapshot and
// one "now".
func (s *Service) Estimate(ctx context.Context, req Request) (*pricing.Breakdown, error) {
	cart, err := booking.NormalizeCart(req.Items, req.ServiceType, req.Context)
	if err != nil {
		return nil, err
	}

	policy, err := s.policies.ActivePolicy(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load pricing policy")
	}
	options, err := s.catalog.ActiveServiceOptions(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load service options")
	}

	engine := pricing.NewEngine(policy, options)
	in := pricing.Input{
		Cart:             cart,
		ServiceType:      booking.CartServiceType(cart, req.ServiceType),
		Context:          req.Context,
		MoveVolumeM3:     req.MoveVolumeM3,
		DisposalVolumeM3: req.DisposalVolumeM3,
		Access:           req.Access,
		Addons:           req.Addons,
		SelectedOptions:  req.SelectedOptions,
		Distance:         req.Distance,
		Tier:             req.Tier,
	}

	baseline, err := engine.Estimate(in)
	if err != nil {
		return nil, errors.Wrap(err, "baseline estimate")
	}

	rule, err := s.resolvePromo(ctx, req, cart, baseline)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return baseline, nil
	}

	in.Promo = rule
	final, err := engine.Estimate(in)
	if err != nil {
		return nil, errors.Wrap(err, "discount estimate")
	}
	return final, nil
}

// PlaceBooking commits a booking: it prices the request, allocates an order
// number through the sequencer, derives the offer number purely from that
// string, and persists the result.
func (s *Service) PlaceBooking(ctx context.Context, req Request) (*Booking, error) {
	cart, err := booking.NormalizeCart(req.Items, req.ServiceType, req.Context)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.Estimate(ctx, req)
	if err != nil {
		return nil, err
	}

	orderNo, err := s.numbers.Next(ctx, document.ScopeOrder)
	if err != nil {
		return nil, errors.Wrap(err, "allocate order number")
	}

	// The offer number is derived, not allocated: a second sequencer call
	// would break the permanent order/offer linkage.
	offerNo, err := document.DeriveOfferNo(orderNo)
	if err != nil {
		return nil, errors.Wrap(err, "derive offer number")
	}

	b := &Booking{
		ID:          uuid.New().String(),
		OrderNo:     orderNo,
		OfferNo:     offerNo,
		ServiceType: booking.CartServiceType(cart, req.ServiceType),
		Context:     req.Context,
		Cart:        cart,
		Breakdown:   breakdown,
		PromoCode:   breakdown.PromoCode,
		Customer:    req.Customer,
		CreatedAt:   s.now(),
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, errors.Wrap(err, "create booking")
	}

	return b, nil
}

// resolvePromo loads the active rules and resolves the request's code
// against the baseline pass. No code means no lookup.
func (s *Service) resolvePromo(ctx context.Context, req Request, cart []booking.CartItem, baseline *pricing.Breakdown) (*promo.Rule, error) {
	if promo.NormalizeCode(req.PromoCode) == "" {
		return nil, nil
	}

	rules, err := s.promos.ActivePromoRules(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load promo rules")
	}

	resolver := promo.NewResolverAt(s.now())
	return resolver.Resolve(req.PromoCode, promo.Context{
		Module:        booking.ContextModule(cart, req.Context),
		ServiceType:   booking.CartServiceType(cart, req.ServiceType),
		SubtotalCents: baseline.TotalCents,
	}, rules), nil
}
