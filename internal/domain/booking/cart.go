// Package booking holds the normalized service cart and site access types
// shared by the estimation engine, the promo resolver, and the order service.
package booking

import (
	"github.com/go-faster/errors"
)

// ServiceKind identifies a bookable service line.
type ServiceKind string

const (
	KindUmzug      ServiceKind = "UMZUG"
	KindMontage    ServiceKind = "MONTAGE"
	KindEntsorgung ServiceKind = "ENTSORGUNG"
	KindSpecial    ServiceKind = "SPECIAL"
)

// ModuleSlug identifies a pluggable service family with its own option
// catalog, promo scope, and minimum-order floor.
type ModuleSlug string

const (
	ModuleMontage    ModuleSlug = "MONTAGE"
	ModuleEntsorgung ModuleSlug = "ENTSORGUNG"
	ModuleSpecial    ModuleSlug = "SPECIAL"
)

// ServiceType is the legacy coarse service classification kept for
// pre-cart bookings and promo rule scoping.
type ServiceType string

const (
	ServiceMoving   ServiceType = "MOVING"
	ServiceDisposal ServiceType = "DISPOSAL"
	ServiceBoth     ServiceType = "BOTH"
)

// Context narrows a booking to a single-purpose module flow. Standard
// bookings carry no module context.
type Context string

const (
	ContextStandard   Context = "STANDARD"
	ContextMontage    Context = "MONTAGE"
	ContextEntsorgung Context = "ENTSORGUNG"
	ContextSpecial    Context = "SPECIAL"
)

// ErrEmptyCart is returned when neither explicit cart items nor the legacy
// serviceType/bookingContext pair yield at least one service line.
var ErrEmptyCart = errors.New("service cart is empty")

// CartItem is one requested service line. ModuleSlug is only set for
// module-scoped kinds (MONTAGE, ENTSORGUNG, SPECIAL).
type CartItem struct {
	Kind       ServiceKind
	Qty        int
	ModuleSlug ModuleSlug
	Title      string
}

type cartKey struct {
	kind   ServiceKind
	module ModuleSlug
}

// NormalizeCart deduplicates cart items by (kind, moduleSlug) keeping the
// first occurrence, clamps quantities to at least 1, and fills module slugs
// implied by the kind. When items is empty the cart is inferred from the
// legacy serviceType/bookingContext pair. A cart is never empty: if no item
// can be derived, ErrEmptyCart is returned.
func NormalizeCart(items []CartItem, serviceType ServiceType, ctx Context) ([]CartItem, error) {
	out := make([]CartItem, 0, len(items))
	seen := make(map[cartKey]struct{}, len(items))

	for _, item := range items {
		if item.ModuleSlug == "" {
			item.ModuleSlug = moduleForKind(item.Kind)
		}
		key := cartKey{kind: item.Kind, module: item.ModuleSlug}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if item.Qty < 1 {
			item.Qty = 1
		}
		out = append(out, item)
	}

	if len(out) > 0 {
		return out, nil
	}
	return inferCart(serviceType, ctx)
}

// inferCart reconstructs a cart from the legacy serviceType/bookingContext
// pair. A single-purpose context wins over the service type.
func inferCart(serviceType ServiceType, ctx Context) ([]CartItem, error) {
	switch ctx {
	case ContextMontage:
		return []CartItem{{Kind: KindMontage, Qty: 1, ModuleSlug: ModuleMontage}}, nil
	case ContextEntsorgung:
		return []CartItem{{Kind: KindEntsorgung, Qty: 1, ModuleSlug: ModuleEntsorgung}}, nil
	case ContextSpecial:
		return []CartItem{{Kind: KindSpecial, Qty: 1, ModuleSlug: ModuleSpecial}}, nil
	}

	switch serviceType {
	case ServiceMoving:
		return []CartItem{{Kind: KindUmzug, Qty: 1}}, nil
	case ServiceDisposal:
		return []CartItem{{Kind: KindEntsorgung, Qty: 1, ModuleSlug: ModuleEntsorgung}}, nil
	case ServiceBoth:
		return []CartItem{
			{Kind: KindUmzug, Qty: 1},
			{Kind: KindEntsorgung, Qty: 1, ModuleSlug: ModuleEntsorgung},
		}, nil
	}
	return nil, ErrEmptyCart
}

// moduleForKind returns the module slug implied by a service kind, or empty
// for plain moving lines.
func moduleForKind(kind ServiceKind) ModuleSlug {
	switch kind {
	case KindMontage:
		return ModuleMontage
	case KindEntsorgung:
		return ModuleEntsorgung
	case KindSpecial:
		return ModuleSpecial
	}
	return ""
}

// ContextModule resolves the single module slug governing promo scope and
// minimum-order floors. An explicit module context wins; otherwise a cart
// whose items all belong to one module resolves to that module. Mixed or
// plain moving carts have no module.
func ContextModule(cart []CartItem, ctx Context) ModuleSlug {
	switch ctx {
	case ContextMontage:
		return ModuleMontage
	case ContextEntsorgung:
		return ModuleEntsorgung
	case ContextSpecial:
		return ModuleSpecial
	}

	var module ModuleSlug
	for _, item := range cart {
		if item.ModuleSlug == "" {
			return ""
		}
		if module == "" {
			module = item.ModuleSlug
			continue
		}
		if module != item.ModuleSlug {
			return ""
		}
	}
	return module
}

// CartServiceType derives the coarse service type from a normalized cart.
// It is used when only explicit items were supplied.
func CartServiceType(cart []CartItem, fallback ServiceType) ServiceType {
	var moving, disposal bool
	for _, item := range cart {
		switch item.Kind {
		case KindUmzug:
			moving = true
		case KindEntsorgung:
			disposal = true
		}
	}
	switch {
	case moving && disposal:
		return ServiceBoth
	case moving:
		return ServiceMoving
	case disposal:
		return ServiceDisposal
	}
	if fallback != "" {
		return fallback
	}
	return ServiceMoving
}
