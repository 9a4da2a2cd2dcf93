package get_available_slots

import (
	"net/http"
	"net/url"
	"time"

	"github.com/m04kA/VMS-VisitService/internal/api/handlers"
	"github.com/m04kA/VMS-VisitService/internal/domain"
)

const (
	msgInvalidDate = "некорректный формат даты, ожидается YYYY-MM-DD"
)

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

// Handle GET /api/v1/slots/available
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	dateFrom, err := parseDateParam(query, "dateFrom")
	if err != nil {
		h.logger.Warn("GET /slots/available - Invalid dateFrom: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	dateTo, err := parseDateParam(query, "dateTo")
	if err != nil {
		h.logger.Warn("GET /slots/available - Invalid dateTo: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.GetPublicAvailableSlots(r.Context(), dateFrom, dateTo)
	if err != nil {
		h.logger.Error("GET /slots/available - Failed to list slots: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /slots/available - Listed %d available slots", len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, result)
}

func parseDateParam(query url.Values, name string) (*time.Time, error) {
	raw := query.Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := time.Parse(domain.DateFormat, raw)
	if err != nil {
		return nil, err
	}
	return &value, nil
}
