package handler

import (
	"encoding/json"
	"net/http"

	"cloudbase/internal/flights/repository"
	"cloudbase/internal/flights/service"
	httputil "cloudbase/pkg/http"
	"cloudbase/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type FlightHandler struct {
	service service.FlightService
	log     *logger.Logger
}

func NewFlightHandler(service service.FlightService, log *logger.Logger) *FlightHandler {
	return &FlightHandler{
		service: service,
		log:     log,
	}
}

func (h *FlightHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	minPrice, err := httputil.ExtractOptionalFloat(r, "min_price")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	maxPrice, err := httputil.ExtractOptionalFloat(r, "max_price")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	flights, err := h.service.Search(r.Context(), repository.SearchQuery{
		Source:      query.Get("source"),
		Destination: query.Get("destination"),
		Date:        query.Get("date"),
		MinPrice:    minPrice,
		MaxPrice:    maxPrice,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"flights": flights})
}

func (h *FlightHandler) GetStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	flight, err := h.service.GetStatus(r.Context(), ps.ByName("flight_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, flight)
}

func (h *FlightHandler) Alternatives(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		CancelledFlightID string `json:"cancelled_flight_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Message: "Invalid request body",
		})
		return
	}

	flights, err := h.service.FindAlternatives(r.Context(), req.CancelledFlightID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"alternate_flights": flights})
}

func (h *FlightHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/bookings/available-flights", h.Search)
	router.GET("/bookings/flight-status/:flight_id", h.GetStatus)
	router.POST("/bookings/alternate-flights", h.Alternatives)
}
