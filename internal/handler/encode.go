package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/umzugwerk/booking-api/internal/domain/booking"
	"github.com/umzugwerk/booking-api/internal/domain/pricing"
)

const timeLayout = time.RFC3339

// encodeBreakdown writes the breakdown fields into an already-open object.
// Monetary values stay integer cents on the wire; the tier multiplier is a
// decimal string so clients never see float noise.
func encodeBreakdown(e *jx.Encoder, b *pricing.Breakdown) {
	e.Field("currency", func(e *jx.Encoder) { e.Str(b.Currency) })

	e.Field("lines", func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, line := range b.Lines {
				e.Obj(func(e *jx.Encoder) {
					e.Field("kind", func(e *jx.Encoder) { e.Str(string(line.Kind)) })
					e.Field("moduleSlug", func(e *jx.Encoder) { e.Str(string(line.ModuleSlug)) })
					if line.Title != "" {
						e.Field("title", func(e *jx.Encoder) { e.Str(line.Title) })
					}
					e.Field("baseFeeCents", func(e *jx.Encoder) { e.Int64(line.BaseFeeCents) })
					e.Field("volumeCents", func(e *jx.Encoder) { e.Int64(line.VolumeCents) })
					e.Field("driveChargeCents", func(e *jx.Encoder) { e.Int64(line.DriveChargeCents) })
					e.Field("totalCents", func(e *jx.Encoder) { e.Int64(line.TotalCents) })
				})
			}
		})
	})

	e.Field("moveVolumeM3", func(e *jx.Encoder) { e.Float64(b.MoveVolumeM3) })
	e.Field("disposalVolumeM3", func(e *jx.Encoder) { e.Float64(b.DisposalVolumeM3) })
	e.Field("totalVolumeM3", func(e *jx.Encoder) { e.Float64(b.TotalVolumeM3) })

	e.Field("distanceKm", func(e *jx.Encoder) { e.Float64(b.DistanceKm) })
	if b.DistanceSource != "" {
		e.Field("distanceSource", func(e *jx.Encoder) { e.Str(string(b.DistanceSource)) })
	}
	e.Field("driveChargeCents", func(e *jx.Encoder) { e.Int64(b.DriveChargeCents) })

	e.Field("floorSurchargeCents", func(e *jx.Encoder) { e.Int64(b.FloorSurchargeCents) })
	e.Field("parkingSurchargeCents", func(e *jx.Encoder) { e.Int64(b.ParkingSurchargeCents) })
	e.Field("carrySurchargeCents", func(e *jx.Encoder) { e.Int64(b.CarrySurchargeCents) })
	e.Field("heavyItemSurchargeCents", func(e *jx.Encoder) { e.Int64(b.HeavyItemSurchargeCents) })
	e.Field("elevatorDiscountCents", func(e *jx.Encoder) { e.Int64(b.ElevatorDiscountCents) })

	e.Field("serviceOptionsCents", func(e *jx.Encoder) { e.Int64(b.ServiceOptionsCents) })
	e.Field("addonsCents", func(e *jx.Encoder) { e.Int64(b.AddonsCents) })

	e.Field("subtotalCents", func(e *jx.Encoder) { e.Int64(b.SubtotalCents) })

	e.Field("tier", func(e *jx.Encoder) { e.Str(string(b.Tier)) })
	e.Field("tierMultiplier", func(e *jx.Encoder) { e.Str(b.TierMultiplier.String()) })
	e.Field("packageAdjustmentCents", func(e *jx.Encoder) { e.Int64(b.PackageAdjustmentCents) })

	e.Field("minimumOrderAppliedCents", func(e *jx.Encoder) { e.Int64(b.MinimumOrderAppliedCents) })

	if b.PromoCode != "" {
		e.Field("promoCode", func(e *jx.Encoder) { e.Str(b.PromoCode) })
	}
	e.Field("discountCents", func(e *jx.Encoder) { e.Int64(b.DiscountCents) })

	e.Field("totalCents", func(e *jx.Encoder) { e.Int64(b.TotalCents) })
	e.Field("priceMinCents", func(e *jx.Encoder) { e.Int64(b.PriceMinCents) })
	e.Field("priceMaxCents", func(e *jx.Encoder) { e.Int64(b.PriceMaxCents) })

	e.Field("heavyItemCount", func(e *jx.Encoder) { e.Int(b.HeavyItemCount) })
	e.Field("laborMinutes", func(e *jx.Encoder) { e.Int(b.LaborMinutes) })
	e.Field("laborHours", func(e *jx.Encoder) { e.Float64(b.LaborHours) })
}

// writeJSON flushes an encoder with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(e.Bytes()); err != nil {
		zctx.From(r.Context()).Debug("Write response", zap.Error(err))
	}
}

// writeError writes a JSON error body with the given status.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	e.Obj(func(e *jx.Encoder) {
		e.Field("error", func(e *jx.Encoder) { e.Str(msg) })
	})
	writeJSON(w, r, status, e)
}

// writeDomainError maps domain failures onto HTTP statuses. Catalog and
// policy problems are server-side faults; everything the client can fix is
// a 4xx.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var unknownOption *pricing.UnknownOptionError

	switch {
	case errors.Is(err, booking.ErrEmptyCart):
		writeError(w, r, http.StatusBadRequest, "cart must contain at least one service")
	case errors.As(err, &unknownOption):
		writeError(w, r, http.StatusUnprocessableEntity, unknownOption.Error())
	case errors.Is(err, pricing.ErrNoActivePolicy):
		zctx.From(r.Context()).Error("No active pricing policy", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "pricing unavailable")
	default:
		zctx.From(r.Context()).Error("Handle request", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
