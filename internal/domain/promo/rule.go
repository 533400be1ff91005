// Package promo implements promo code resolution against the active rule set.
package promo

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/umzugwerk/booking-api/internal/domain/booking"
)

// DiscountType enumerates the supported promo discount strategies.
type DiscountType string

const (
	// DiscountPercent applies a percentage of the pre-discount subtotal.
	DiscountPercent DiscountType = "PERCENT"
	// DiscountFlatCents subtracts a fixed amount of cents.
	DiscountFlatCents DiscountType = "FLAT_CENTS"
)

// Rule defines one promo code's discount behaviour and eligibility scope.
// Zero-value scope fields mean "unconstrained".
type Rule struct {
	ID               string
	Code             string
	ModuleSlug       booking.ModuleSlug
	ServiceTypeScope booking.ServiceType
	DiscountType     DiscountType
	// DiscountValue is a percentage for PERCENT rules and a cent amount for
	// FLAT_CENTS rules.
	DiscountValue    decimal.Decimal
	MinOrderCents    int64
	MaxDiscountCents *int64
	ValidFrom        *time.Time
	ValidTo          *time.Time
}

// NormalizeCode trims and uppercases a promo code for case-insensitive
// matching. Empty input stays empty.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// validAt reports whether the rule's validity window contains t.
// Open-ended bounds are unconstrained.
func (r Rule) validAt(t time.Time) bool {
	if r.ValidFrom != nil && r.ValidFrom.After(t) {
		return false
	}
	if r.ValidTo != nil && r.ValidTo.Before(t) {
		return false
	}
	return true
}

// matchesScope reports whether every present scope constraint matches the
// booking context.
func (r Rule) matchesScope(module booking.ModuleSlug, serviceType booking.ServiceType) bool {
	if r.ModuleSlug != "" && r.ModuleSlug != module {
		return false
	}
	if r.ServiceTypeScope != "" && r.ServiceTypeScope != serviceType {
		return false
	}
	return true
}
