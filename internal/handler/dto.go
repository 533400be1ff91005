package handler

import (
	"github.com/umzugwerk/booking-api/internal/distance"
	"github.com/umzugwerk/booking-api/internal/domain/booking"
	"github.com/umzugwerk/booking-api/internal/domain/order"
	"github.com/umzugwerk/booking-api/internal/domain/pricing"
)

type cartItemDTO struct {
	Kind       string `json:"kind"`
	Qty        int    `json:"qty"`
	ModuleSlug string `json:"moduleSlug,omitempty"`
	Title      string `json:"title,omitempty"`
}

type accessDTO struct {
	Floor             int    `json:"floor"`
	Elevator          string `json:"elevator"`
	Stairs            string `json:"stairs"`
	Parking           string `json:"parking"`
	NeedNoParkingZone bool   `json:"needNoParkingZone"`
	CarryDistanceM    int    `json:"carryDistanceM"`
}

type selectedOptionDTO struct {
	Code string `json:"code"`
	Qty  int    `json:"qty"`
}

type customerDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// estimateRequest is the wire shape shared by the estimate and booking
// endpoints. Everything beyond the cart is optional.
type estimateRequest struct {
	ServiceType    string        `json:"serviceType"`
	BookingContext string        `json:"bookingContext"`
	Cart           []cartItemDTO `json:"cart"`

	MoveVolumeM3     float64 `json:"moveVolumeM3"`
	DisposalVolumeM3 float64 `json:"disposalVolumeM3"`

	AccessStart       *accessDTO `json:"accessStart"`
	AccessDestination *accessDTO `json:"accessDestination"`
	AccessPickup      *accessDTO `json:"accessPickup"`

	Addons          []string            `json:"addons"`
	SelectedOptions []selectedOptionDTO `json:"selectedOptions"`

	DistanceKm     *float64 `json:"distanceKm"`
	DistanceSource string   `json:"distanceSource"`

	Tier      string      `json:"tier"`
	PromoCode string      `json:"promoCode"`
	Customer  customerDTO `json:"customer"`
}

// toDomain maps the wire request onto the booking service request.
func (r estimateRequest) toDomain() order.Request {
	req := order.Request{
		ServiceType:      booking.ServiceType(r.ServiceType),
		Context:          booking.Context(r.BookingContext),
		MoveVolumeM3:     r.MoveVolumeM3,
		DisposalVolumeM3: r.DisposalVolumeM3,
		Tier:             pricing.Tier(r.Tier),
		PromoCode:        r.PromoCode,
		Customer: order.Customer{
			Name:  r.Customer.Name,
			Email: r.Customer.Email,
			Phone: r.Customer.Phone,
		},
	}

	for _, item := range r.Cart {
		req.Items = append(req.Items, booking.CartItem{
			Kind:       booking.ServiceKind(item.Kind),
			Qty:        item.Qty,
			ModuleSlug: booking.ModuleSlug(item.ModuleSlug),
			Title:      item.Title,
		})
	}

	for _, a := range []*accessDTO{r.AccessStart, r.AccessDestination, r.AccessPickup} {
		if a == nil {
			continue
		}
		req.Access = append(req.Access, booking.AccessProfile{
			Floor:             a.Floor,
			Elevator:          booking.Elevator(a.Elevator),
			Stairs:            booking.Stairs(a.Stairs),
			Parking:           booking.Parking(a.Parking),
			NeedNoParkingZone: a.NeedNoParkingZone,
			CarryDistanceM:    a.CarryDistanceM,
		})
	}

	for _, addon := range r.Addons {
		req.Addons = append(req.Addons, pricing.Addon(addon))
	}
	for _, sel := range r.SelectedOptions {
		req.SelectedOptions = append(req.SelectedOptions, pricing.SelectedOption{
			Code: sel.Code,
			Qty:  sel.Qty,
		})
	}

	if r.DistanceKm != nil {
		source := distance.Source(r.DistanceSource)
		if source == "" {
			source = distance.SourceFallback
		}
		req.Distance = &distance.Result{Km: *r.DistanceKm, Source: source}
	}

	return req
}
