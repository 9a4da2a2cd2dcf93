package get_visitor_bookings

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/VMS-VisitService/internal/api/handlers"
	"github.com/m04kA/VMS-VisitService/internal/domain"
)

const (
	msgInvalidVisitorID  = "некорректный идентификатор посетителя"
	msgInvalidPagination = "некорректные параметры пагинации"
)

type Handler struct {
	service BookingsService
	logger  Logger
}

func NewHandler(service BookingsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/visitors/{visitorId}/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	visitorID, err := strconv.ParseInt(mux.Vars(r)["visitorId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /visitors/{visitorId}/bookings - Invalid visitor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVisitorID)
		return
	}

	page := domain.Pagination{}
	query := r.URL.Query()
	if raw := query.Get("page"); raw != "" {
		if page.Page, err = strconv.Atoi(raw); err != nil {
			h.logger.Warn("GET /visitors/{visitorId}/bookings - Invalid page: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidPagination)
			return
		}
	}
	if raw := query.Get("limit"); raw != "" {
		if page.Limit, err = strconv.Atoi(raw); err != nil {
			h.logger.Warn("GET /visitors/{visitorId}/bookings - Invalid limit: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidPagination)
			return
		}
	}

	result, err := h.service.GetByVisitorID(r.Context(), visitorID, page)
	if err != nil {
		h.logger.Error("GET /visitors/{visitorId}/bookings - Failed to list bookings: visitor_id=%d, error=%v",
			visitorID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /visitors/{visitorId}/bookings - Listed %d bookings for visitor_id=%d",
		len(result.Bookings), visitorID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
