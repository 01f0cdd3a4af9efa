package bookingflow

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/tecmax-dev/sisvida-sub008/pkg/httputil"
	"github.com/tecmax-dev/sisvida-sub008/pkg/logger"
)

type FlowHandler struct {
	service FlowService
	log     *logger.Logger
}

func NewFlowHandler(service FlowService, log *logger.Logger) *FlowHandler {
	return &FlowHandler{
		service: service,
		log:     log,
	}
}

type selectProfessionalRequest struct {
	ProfessionalID string `json:"professional_id"`
	ServiceTypeID  string `json:"service_type_id,omitempty"`
	DurationMin    int    `json:"duration_min,omitempty"`
}

type selectDateRequest struct {
	Date string `json:"date"`
}

type selectTimeRequest struct {
	Time string `json:"time"`
}

func (h *FlowHandler) Start(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	flow, err := h.service.Start(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Start", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, flow); err != nil {
		h.log.Error("failed to write created response", "handler", "Start", "operation", "WriteCreated", "error", err)
	}
}

func (h *FlowHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	flow, err := h.service.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Get", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, flow); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *FlowHandler) SelectProfessional(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req selectProfessionalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadBody(w, "SelectProfessional")
		return
	}

	flow, err := h.service.SelectProfessional(r.Context(), ps.ByName("id"), req.ProfessionalID, req.ServiceTypeID, req.DurationMin)
	h.writeFlow(w, "SelectProfessional", flow, err)
}

func (h *FlowHandler) SelectDate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req selectDateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadBody(w, "SelectDate")
		return
	}

	flow, err := h.service.SelectDate(r.Context(), ps.ByName("id"), req.Date)
	h.writeFlow(w, "SelectDate", flow, err)
}

func (h *FlowHandler) SelectTime(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req selectTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadBody(w, "SelectTime")
		return
	}

	flow, err := h.service.SelectTime(r.Context(), ps.ByName("id"), req.Time)
	h.writeFlow(w, "SelectTime", flow, err)
}

func (h *FlowHandler) SetRequester(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req RequesterDetails
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadBody(w, "SetRequester")
		return
	}

	flow, err := h.service.SetRequester(r.Context(), ps.ByName("id"), req)
	h.writeFlow(w, "SetRequester", flow, err)
}

func (h *FlowHandler) Back(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	flow, err := h.service.Back(r.Context(), ps.ByName("id"))
	h.writeFlow(w, "Back", flow, err)
}

func (h *FlowHandler) Submit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	flow, err := h.service.Submit(r.Context(), ps.ByName("id"))
	h.writeFlow(w, "Submit", flow, err)
}

func (h *FlowHandler) writeFlow(w http.ResponseWriter, handler string, flow *Flow, err error) {
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if writeErr := httputil.WriteSuccess(w, flow); writeErr != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", writeErr)
	}
}

func (h *FlowHandler) writeBadBody(w http.ResponseWriter, handler string) {
	if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", err)
	}
}

func (h *FlowHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/booking-flow", h.Start)
	router.GET("/api/v1/booking-flow/:id", h.Get)
	router.POST("/api/v1/booking-flow/:id/professional", h.SelectProfessional)
	router.POST("/api/v1/booking-flow/:id/date", h.SelectDate)
	router.POST("/api/v1/booking-flow/:id/time", h.SelectTime)
	router.POST("/api/v1/booking-flow/:id/requester", h.SetRequester)
	router.POST("/api/v1/booking-flow/:id/back", h.Back)
	router.POST("/api/v1/booking-flow/:id/submit", h.Submit)
}
