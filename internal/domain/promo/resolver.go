package promo

import (
	"time"

	"github.com/umzugwerk/booking-api/internal/domain/booking"
)

// Context carries the booking facts a rule is matched against.
// SubtotalCents is the pre-discount subtotal of the baseline estimation pass;
// it is informational here — the minimum-order check happens inside the
// estimation engine's discount step, against the floored subtotal of the
// specific cart being priced.
type Context struct {
	Module        booking.ModuleSlug
	ServiceType   booking.ServiceType
	SubtotalCents int64
}

// Resolver selects at most one applicable promo rule for a code. The clock is
// injected so both estimation passes of a request share one "now".
type Resolver struct {
	now func() time.Time
}

// NewResolver creates a Resolver using the wall clock.
func NewResolver() *Resolver {
	return &Resolver{now: time.Now}
}

// NewResolverAt creates a Resolver pinned to a fixed instant. A request
// handler creates one per request so rule validity is not re-evaluated
// mid-request with a different "now".
func NewResolverAt(now time.Time) *Resolver {
	return &Resolver{now: func() time.Time { return now }}
}

// Resolve returns the first rule (in list order) whose code matches
// case-insensitively and whose scope constraints and validity window all
// hold, or nil when the code is empty or nothing matches. Codes are expected
// unique per scope; on duplicates the first by list order wins.
func (r *Resolver) Resolve(code string, ctx Context, rules []Rule) *Rule {
	normalized := NormalizeCode(code)
	if normalized == "" {
		return nil
	}

	now := r.now()
	for i := range rules {
		rule := &rules[i]
		if NormalizeCode(rule.Code) != normalized {
			continue
		}
		if !rule.matchesScope(ctx.Module, ctx.ServiceType) {
			continue
		}
		if !rule.validAt(now) {
			continue
		}
		return rule
	}
	return nil
}
