// Package handler exposes the estimation and booking use cases over a thin
// JSON HTTP surface. Routing and validation are plumbing; the pricing and
// numbering semantics live in the domain packages.
package handler

import (
	"net/http"

	"github.com/umzugwerk/booking-api/internal/domain/order"
)

// Handler serves the booking API endpoints.
type Handler struct {
	bookings *order.Service
}

// NewHandler constructs a Handler around the booking service.
func NewHandler(bookings *order.Service) *Handler {
	return &Handler{bookings: bookings}
}

// Register mounts the API routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/estimate", h.Estimate)
	mux.HandleFunc("POST /api/v1/bookings", h.PlaceBooking)
}
