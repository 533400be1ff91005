package pricing

import (
	"fmt"

	"github.com/umzugwerk/booking-api/internal/domain/booking"
)

// PricingType controls how a service option's default price combines with
// the selected quantity.
type PricingType string

const (
	// PricingFlat charges the default price once; quantity is ignored.
	// Flat options are never duplicated by raising quantity.
	PricingFlat    PricingType = "FLAT"
	PricingPerUnit PricingType = "PER_UNIT"
	PricingPerM3   PricingType = "PER_M3"
	PricingPerHour PricingType = "PER_HOUR"
)

// Selected quantities are clamped into [1, 50].
const (
	minOptionQty = 1
	maxOptionQty = 50
)

// ServiceOption is one entry of a module's option catalog.
type ServiceOption struct {
	Code                string
	ModuleSlug          booking.ModuleSlug
	PricingType         PricingType
	DefaultPriceCents   int64
	DefaultLaborMinutes int
	IsHeavy             bool
	RequiresQuantity    bool
}

// SelectedOption is a caller-chosen option instance with its quantity.
type SelectedOption struct {
	Code string
	Qty  int
}

// UnknownOptionError indicates a selected option code that is missing from
// the catalog. This is a configuration error: a missing price table entry
// means the business has not finished configuring a service, not that the
// service costs zero.
type UnknownOptionError struct {
	Code string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("service option %q not found in catalog", e.Code)
}

// effectiveQty clamps the selected quantity to the allowed range. Options
// that do not require a quantity always count once.
func (o ServiceOption) effectiveQty(qty int) int64 {
	if !o.RequiresQuantity {
		return 1
	}
	if qty < minOptionQty {
		qty = minOptionQty
	}
	if qty > maxOptionQty {
		qty = maxOptionQty
	}
	return int64(qty)
}
