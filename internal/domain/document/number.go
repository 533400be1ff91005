// Package document issues durable, human-readable reference numbers for
// orders, offers, and contracts, and derives dependent numbers purely from
// an order number.
package document

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

// Scope identifies the document family a number belongs to.
type Scope string

const (
	ScopeOrder    Scope = "ORDER"
	ScopeOffer    Scope = "OFFER"
	ScopeContract Scope = "CONTRACT"
)

// Customer-facing number prefixes (German document abbreviations).
const (
	PrefixOrder    = "AUF"
	PrefixOffer    = "ANG"
	PrefixContract = "VER"
)

// ErrEmptyOrderNo is returned when a derivation is attempted on a blank
// order number.
var ErrEmptyOrderNo = errors.New("order number is required to derive a document number")

// Prefix returns the customer-facing prefix of a scope.
func Prefix(scope Scope) string {
	switch scope {
	case ScopeOffer:
		return PrefixOffer
	case ScopeContract:
		return PrefixContract
	default:
		return PrefixOrder
	}
}

// bucketLayout renders an instant to minute granularity: yyyyMMddHHmm.
const bucketLayout = "200601021504"

// FormatNumber renders a document number from its parts:
// PREFIX-YYYYMMDD-HHMM-NNN with the counter zero-padded to three digits.
func FormatNumber(scope Scope, bucket string, counter int64) string {
	date := bucket
	hm := ""
	if len(bucket) >= 12 {
		date = bucket[:8]
		hm = bucket[8:12]
	}
	return fmt.Sprintf("%s-%s-%s-%03d", Prefix(scope), date, hm, counter)
}

// suffixFromOrderNo strips the order prefix from an order number. For
// legacy or unrecognized formats the first WORD- token is stripped once so
// pre-migration numbers stay derivable.
func suffixFromOrderNo(orderNo string) (string, error) {
	trimmed := strings.TrimSpace(orderNo)
	if trimmed == "" {
		return "", ErrEmptyOrderNo
	}

	if rest, ok := strings.CutPrefix(trimmed, PrefixOrder+"-"); ok {
		return rest, nil
	}

	rest := stripLeadingWordToken(trimmed)
	if rest == "" {
		return "", errors.Errorf("cannot derive document suffix from order number %q", orderNo)
	}
	return rest, nil
}

// stripLeadingWordToken removes a leading run of uppercase letters followed
// by a dash. Input without such a token is returned unchanged.
func stripLeadingWordToken(s string) string {
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	if i == 0 || i >= len(s) || s[i] != '-' {
		return s
	}
	return s[i+1:]
}

// DeriveOfferNo computes the offer number belonging to an order number.
// Pure string transform, no I/O: offer and order numbers stay permanently
// linkable even if the offer record is created later or regenerated.
func DeriveOfferNo(orderNo string) (string, error) {
	suffix, err := suffixFromOrderNo(orderNo)
	if err != nil {
		return "", err
	}
	return PrefixOffer + "-" + suffix, nil
}

// DeriveContractNo computes the contract number belonging to an order number.
func DeriveContractNo(orderNo string) (string, error) {
	suffix, err := suffixFromOrderNo(orderNo)
	if err != nil {
		return "", err
	}
	return PrefixContract + "-" + suffix, nil
}

// Ref carries the identifying fields a display number is computed from.
type Ref struct {
	// Number is the entity's own persisted document number, if any.
	Number string
	// OrderNo is the related order's document number, if any.
	OrderNo string
	// OrderPublicID is the related order's opaque public identifier.
	OrderPublicID string
	// ID is the entity's own opaque internal identifier, the fallback of
	// last resort.
	ID string
}

// OfferDisplayNo returns a displayable offer number: the persisted number if
// set, otherwise one derived from the related order, otherwise the opaque
// id. It never fails; every document must be displayable even mid-migration
// or under partial data.
func OfferDisplayNo(ref Ref) string {
	return displayNo(ref, DeriveOfferNo)
}

// ContractDisplayNo returns a displayable contract number, with the same
// fallback chain as OfferDisplayNo.
func ContractDisplayNo(ref Ref) string {
	return displayNo(ref, DeriveContractNo)
}

// OrderDisplayNo returns the order's own number, falling back to its public
// identifier.
func OrderDisplayNo(orderNo, publicID string) string {
	if orderNo != "" {
		return orderNo
	}
	return publicID
}

func displayNo(ref Ref, derive func(string) (string, error)) string {
	if ref.Number != "" {
		return ref.Number
	}

	orderRef := ref.OrderNo
	if orderRef == "" {
		orderRef = ref.OrderPublicID
	}
	if orderRef != "" {
		if derived, err := derive(orderRef); err == nil {
			return derived
		}
	}
	return ref.ID
}
