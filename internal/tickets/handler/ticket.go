package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"cloudbase/internal/tickets/service"
	"cloudbase/pkg/config"
	apperrors "cloudbase/pkg/errors"
	httputil "cloudbase/pkg/http"
	"cloudbase/pkg/middleware"
	"cloudbase/pkg/model"
	"cloudbase/pkg/token"
)

type TicketHandler struct {
	service service.TicketService
	sealer  *token.Sealer
	cfg     *config.Config
}

func NewTicketHandler(ticketService service.TicketService, sealer *token.Sealer, cfg *config.Config) *TicketHandler {
	return &TicketHandler{
		service: ticketService,
		sealer:  sealer,
		cfg:     cfg,
	}
}

func (h *TicketHandler) Book(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var ticket model.Ticket
	if err := json.NewDecoder(r.Body).Decode(&ticket); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	// The booking belongs to the authenticated user regardless of what
	// the body claims.
	if email, ok := middleware.UserEmail(r.Context()); ok {
		ticket.UserEmail = email
	}

	if err := h.service.Book(r.Context(), &ticket); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreatedMessage(w, "Ticket booked successfully", ticket)
}

func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ticket, err := h.service.GetByID(r.Context(), ps.ByName("ticket_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, ticket)
}

func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	email, ok := middleware.UserEmail(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	tickets, err := h.service.ListByEmail(r.Context(), email, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tickets": tickets})
}

func (h *TicketHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	refund, err := h.service.Cancel(r.Context(), ps.ByName("ticket_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Ticket canceled successfully",
		"refund":  refund,
	})
}

func (h *TicketHandler) RegisterRoutes(router *httprouter.Router) {
	auth := middleware.RequireBearer(h.sealer, h.cfg.Log)

	router.POST("/bookings", auth(h.Book))
	router.GET("/bookings/my-tickets", auth(h.List))
	router.GET("/bookings/ticket/:ticket_id", auth(h.Get))
	router.DELETE("/bookings/:ticket_id", auth(h.Cancel))
}
