package get_bookings

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/VMS-VisitService/internal/domain"
	"github.com/m04kA/VMS-VisitService/internal/service/bookings/models"
)

// ParseListRequest разбирает фильтры списка бронирований из query-параметров
func ParseListRequest(query url.Values) (*models.ListBookingsRequest, error) {
	req := &models.ListBookingsRequest{}

	var err error
	if req.SlotID, err = parseInt64Param(query, "slotId"); err != nil {
		return nil, err
	}
	if req.VisitorID, err = parseInt64Param(query, "visitorId"); err != nil {
		return nil, err
	}
	if req.CreatedBy, err = parseInt64Param(query, "createdBy"); err != nil {
		return nil, err
	}

	if raw := query.Get("status"); raw != "" {
		req.Status = &raw
	}
	if raw := query.Get("paymentStatus"); raw != "" {
		req.PaymentStatus = &raw
	}
	if raw := query.Get("paymentMethod"); raw != "" {
		req.PaymentMethod = &raw
	}

	if req.DateFrom, err = parseDateParam(query, "dateFrom"); err != nil {
		return nil, err
	}
	if req.DateTo, err = parseDateParam(query, "dateTo"); err != nil {
		return nil, err
	}

	if req.GroupSizeMin, err = parseIntParam(query, "groupSizeMin"); err != nil {
		return nil, err
	}
	if req.GroupSizeMax, err = parseIntParam(query, "groupSizeMax"); err != nil {
		return nil, err
	}

	if req.AmountMin, err = parseFloatParam(query, "amountMin"); err != nil {
		return nil, err
	}
	if req.AmountMax, err = parseFloatParam(query, "amountMax"); err != nil {
		return nil, err
	}

	if page, err := parseIntParam(query, "page"); err != nil {
		return nil, err
	} else if page != nil {
		req.Page = *page
	}
	if limit, err := parseIntParam(query, "limit"); err != nil {
		return nil, err
	} else if limit != nil {
		req.Limit = *limit
	}

	return req, nil
}

func parseInt64Param(query url.Values, name string) (*int64, error) {
	raw := query.Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return &value, nil
}

func parseIntParam(query url.Values, name string) (*int, error) {
	raw := query.Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return &value, nil
}

func parseFloatParam(query url.Values, name string) (*float64, error) {
	raw := query.Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return &value, nil
}

func parseDateParam(query url.Values, name string) (*time.Time, error) {
	raw := query.Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := time.Parse(domain.DateFormat, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q, expected YYYY-MM-DD", name, raw)
	}
	return &value, nil
}
