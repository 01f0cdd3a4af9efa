package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/tecmax-dev/sisvida-sub008/internal/availability/service"
	apperrors "github.com/tecmax-dev/sisvida-sub008/pkg/errors"
	"github.com/tecmax-dev/sisvida-sub008/pkg/httputil"
	"github.com/tecmax-dev/sisvida-sub008/pkg/logger"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

func (h *AvailabilityHandler) GetSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	professionalID := strings.TrimSpace(query.Get("professional_id"))
	date := strings.TrimSpace(query.Get("date"))

	intervalMin := 0
	if s := strings.TrimSpace(query.Get("interval_min")); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			if writeErr := httputil.WriteError(w, apperrors.InvalidInput("invalid interval_min parameter: "+s)); writeErr != nil {
				h.log.Error("failed to write error response", "handler", "GetSlots", "operation", "WriteError", "error", writeErr)
			}
			return
		}
		intervalMin = v
	}

	result, err := h.service.GetSlots(r.Context(), professionalID, date, intervalMin)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetSlots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSlots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) GetDays(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	professionalID := strings.TrimSpace(query.Get("professional_id"))
	month := strings.TrimSpace(query.Get("month"))

	result, err := h.service.GetDays(r.Context(), professionalID, month)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetDays", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "GetDays", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability/slots", h.GetSlots)
	router.GET("/api/v1/availability/days", h.GetDays)
}
