package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/jx"
)

// Estimate prices a cart without committing anything. The same request shape
// with a customer attached is what PlaceBooking consumes.
func (h *Handler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	breakdown, err := h.bookings.Estimate(r.Context(), req.toDomain())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	e.Obj(func(e *jx.Encoder) {
		encodeBreakdown(e, breakdown)
	})
	writeJSON(w, r, http.StatusOK, e)
}
