package expire_slots

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/VMS-VisitService/internal/api/handlers"
	"github.com/m04kA/VMS-VisitService/internal/domain"
	"github.com/m04kA/VMS-VisitService/internal/service/slots/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректный формат даты отсчёта, ожидается YYYY-MM-DD"
)

// ExpireSlotsRequest HTTP request model
type ExpireSlotsRequest struct {
	ReferenceDate *string `json:"referenceDate,omitempty"` // "2026-09-15"
}

type Handler struct {
	service SlotsService
	logger  Logger
}

func NewHandler(service SlotsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/slots/expire
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req ExpireSlotsRequest
	// Тело опционально: пустое означает sweep от текущей даты
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("POST /slots/expire - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	serviceReq := &models.ExpireSlotsRequest{}
	if req.ReferenceDate != nil {
		referenceDate, err := time.Parse(domain.DateFormat, *req.ReferenceDate)
		if err != nil {
			h.logger.Warn("POST /slots/expire - Invalid reference date: %q", *req.ReferenceDate)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		serviceReq.ReferenceDate = &referenceDate
	}

	result, err := h.service.ExpirePastUnbookedSlots(r.Context(), serviceReq)
	if err != nil {
		h.logger.Error("POST /slots/expire - Failed to expire slots: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("POST /slots/expire - Expired %d slots, cutoff=%s", result.ExpiredCount, result.CutoffDate)
	handlers.RespondJSON(w, http.StatusOK, result)
}
