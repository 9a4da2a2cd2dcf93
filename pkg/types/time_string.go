package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// TimeFormat формат времени HH:MM
const TimeFormat = "15:04"

var (
	// ErrInvalidTimeString возвращается при некорректном формате времени
	ErrInvalidTimeString = errors.New("invalid time string format")
)

// TimeString время в формате "HH:MM" (локальное время слота, без даты и таймзоны)
// Хранится в БД как text/time, сравнивается лексикографически корректно
type TimeString string

// NewTimeString создает TimeString из time.Time (берёт только часы и минуты)
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format(TimeFormat))
}

// NewTimeStringFromString создает TimeString из строки с валидацией формата
func NewTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(s)
	if err := ts.Validate(); err != nil {
		return "", err
	}
	return ts, nil
}

// String возвращает строковое представление времени
func (t TimeString) String() string {
	return string(t)
}

// IsZero возвращает true, если время не задано
func (t TimeString) IsZero() bool {
	return t == ""
}

// Validate проверяет, что строка соответствует формату HH:MM
func (t TimeString) Validate() error {
	if _, err := time.Parse(TimeFormat, string(t)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return nil
}

// Minutes возвращает количество минут с начала суток
func (t TimeString) Minutes() (int, error) {
	parsed, err := time.Parse(TimeFormat, string(t))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// AddMinutes возвращает время, сдвинутое на указанное число минут
// Переход через полночь не поддерживается - возвращается ошибка
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	total, err := t.Minutes()
	if err != nil {
		return "", err
	}

	total += minutes
	if total < 0 || total >= 24*60 {
		return "", fmt.Errorf("%w: %q + %d minutes is out of day range", ErrInvalidTimeString, string(t), minutes)
	}

	return TimeString(fmt.Sprintf("%02d:%02d", total/60, total%60)), nil
}

// MinutesUntil возвращает количество минут от t до other
func (t TimeString) MinutesUntil(other TimeString) (int, error) {
	from, err := t.Minutes()
	if err != nil {
		return 0, err
	}
	to, err := other.Minutes()
	if err != nil {
		return 0, err
	}
	return to - from, nil
}

// IsBefore возвращает true, если t раньше other
// Формат HH:MM с ведущими нулями сравнивается лексикографически
func (t TimeString) IsBefore(other TimeString) bool {
	return string(t) < string(other)
}

// IsAfter возвращает true, если t позже other
func (t TimeString) IsAfter(other TimeString) bool {
	return string(t) > string(other)
}

// Value реализует driver.Valuer для записи в БД
func (t TimeString) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return string(t), nil
}

// Scan реализует sql.Scanner для чтения из БД
// Поддерживает text ("10:00") и time без таймзоны ("10:00:00")
func (t *TimeString) Scan(src interface{}) error {
	if src == nil {
		*t = ""
		return nil
	}

	switch v := src.(type) {
	case string:
		*t = truncateSeconds(v)
	case []byte:
		*t = truncateSeconds(string(v))
	case time.Time:
		*t = NewTimeString(v)
	default:
		return fmt.Errorf("%w: unsupported scan type %T", ErrInvalidTimeString, src)
	}

	return t.Validate()
}

// truncateSeconds отбрасывает секунды из "HH:MM:SS"
func truncateSeconds(s string) TimeString {
	if len(s) > 5 {
		return TimeString(s[:5])
	}
	return TimeString(s)
}
