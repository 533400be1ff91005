package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/jx"
)

// PlaceBooking prices the request, allocates the order number and persists
// the booking. The offer number in the response is derived from the order
// number, never allocated separately.
func (h *Handler) PlaceBooking(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.bookings.PlaceBooking(r.Context(), req.toDomain())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(b.ID) })
		e.Field("orderNo", func(e *jx.Encoder) { e.Str(b.OrderNo) })
		e.Field("offerNo", func(e *jx.Encoder) { e.Str(b.OfferNo) })
		e.Field("serviceType", func(e *jx.Encoder) { e.Str(string(b.ServiceType)) })
		if b.Context != "" {
			e.Field("bookingContext", func(e *jx.Encoder) { e.Str(string(b.Context)) })
		}
		if b.PromoCode != "" {
			e.Field("promoCode", func(e *jx.Encoder) { e.Str(b.PromoCode) })
		}
		e.Field("createdAt", func(e *jx.Encoder) { e.Str(b.CreatedAt.Format(timeLayout)) })
		e.Field("breakdown", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				encodeBreakdown(e, b.Breakdown)
			})
		})
	})
	writeJSON(w, r, http.StatusCreated, e)
}
