package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"cloudbase/internal/payments/service"
	"cloudbase/pkg/config"
	apperrors "cloudbase/pkg/errors"
	httputil "cloudbase/pkg/http"
	"cloudbase/pkg/middleware"
	"cloudbase/pkg/token"
)

type PaymentHandler struct {
	service service.PaymentService
	sealer  *token.Sealer
	cfg     *config.Config
}

func NewPaymentHandler(paymentService service.PaymentService, sealer *token.Sealer, cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{
		service: paymentService,
		sealer:  sealer,
		cfg:     cfg,
	}
}

type createIntentRequest struct {
	FlightID       string `json:"flight_id"`
	PassengerCount int    `json:"passenger_count"`
	TravelClass    string `json:"travel_class"`
}

func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req createIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	result, err := h.service.CreateIntent(r.Context(), req.FlightID, req.PassengerCount, req.TravelClass)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	auth := middleware.RequireBearer(h.sealer, h.cfg.Log)
	router.POST("/payment/create-intent", auth(h.CreateIntent))
}
