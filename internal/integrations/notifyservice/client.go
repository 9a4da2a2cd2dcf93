package notifyservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с NotificationService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента NotificationService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// NotifyBookingEvent отправляет сигнал о событии бронирования
// Fire-and-report: вызывается после коммита транзакции, ошибка отдается
// вызывающему только для логирования и не влияет на результат операции
func (c *Client) NotifyBookingEvent(ctx context.Context, bookingID int64, eventType EventType) error {
	url := fmt.Sprintf("%s/internal/notifications/booking-events", c.baseURL)

	body, err := json.Marshal(notifyRequest{
		BookingID: bookingID,
		EventType: string(eventType),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted, http.StatusNoContent:
		c.log.Info("NotifyBookingEvent: dispatched event=%s for booking_id=%d", eventType, bookingID)
		return nil
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}
}
