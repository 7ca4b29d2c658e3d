package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	adminservice "cloudbase/internal/admin/service"
	flightsservice "cloudbase/internal/flights/service"
	"cloudbase/pkg/config"
	apperrors "cloudbase/pkg/errors"
	httputil "cloudbase/pkg/http"
	"cloudbase/pkg/middleware"
	"cloudbase/pkg/model"
	"cloudbase/pkg/token"
)

type ScheduleHandler struct {
	service adminservice.ScheduleService
	flights flightsservice.FlightService
	sealer  *token.Sealer
	cfg     *config.Config
}

func NewScheduleHandler(
	service adminservice.ScheduleService,
	flights flightsservice.FlightService,
	sealer *token.Sealer,
	cfg *config.Config,
) *ScheduleHandler {
	return &ScheduleHandler{
		service: service,
		flights: flights,
		sealer:  sealer,
		cfg:     cfg,
	}
}

func (h *ScheduleHandler) ScheduleFlight(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var flight model.Flight
	if err := json.NewDecoder(r.Body).Decode(&flight); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.ScheduleFlight(r.Context(), &flight); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreatedMessage(w, "Flight scheduled successfully", flight)
}

type editScheduleRequest struct {
	FlightID string `json:"flight_id"`
	model.FlightUpdate
}

func (h *ScheduleHandler) EditSchedule(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req editScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	flight, err := h.service.EditSchedule(r.Context(), req.FlightID, &req.FlightUpdate)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccessMessage(w, "Flight schedule updated successfully", flight)
}

func (h *ScheduleHandler) FlightRoutes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	flights, total, err := h.flights.GetRoutes(r.Context(), limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WritePaginated(w, flights, total, limit, int(offset))
}

type adjustPricingRequest struct {
	FlightID string `json:"flight_id"`
}

func (h *ScheduleHandler) AdjustPricing(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req adjustPricingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.AdjustPricing(r.Context(), req.FlightID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccessMessage(w, "Pricing recalculation requested", map[string]string{"flight_id": req.FlightID})
}

func (h *ScheduleHandler) RegisterRoutes(router *httprouter.Router) {
	admin := middleware.RequireAdmin(h.sealer, h.cfg.AdminEmails, h.cfg.Log)

	router.POST("/admin/schedule-flight", admin(h.ScheduleFlight))
	router.PUT("/admin/edit-schedule", admin(h.EditSchedule))
	router.GET("/admin/flight-routes", admin(h.FlightRoutes))
	router.POST("/admin/adjust-pricing", admin(h.AdjustPricing))
}
