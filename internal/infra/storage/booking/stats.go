package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/VMS-VisitService/internal/domain"
	"github.com/m04kA/VMS-VisitService/pkg/dbmetrics"
	"github.com/m04kA/VMS-VisitService/pkg/psqlbuilder"
)

// topPaymentMethodsLimit количество способов оплаты в топе статистики
const topPaymentMethodsLimit = 5

// GetStats собирает агрегированную статистику бронирований
// за trailing-окно в windowDays дней, заканчивающееся в now
func (r *Repository) GetStats(ctx context.Context, windowDays int, now time.Time) (*domain.BookingStats, error) {
	since := now.AddDate(0, 0, -windowDays)

	stats := &domain.BookingStats{
		ByStatus:        make(map[domain.BookingStatus]int64),
		ByPaymentStatus: make(map[domain.PaymentStatus]int64),
	}

	if err := r.countByStatus(ctx, stats); err != nil {
		return nil, err
	}
	if err := r.countByPaymentStatus(ctx, stats); err != nil {
		return nil, err
	}
	if err := r.revenueAndGroupSize(ctx, stats); err != nil {
		return nil, err
	}
	if err := r.dailyStats(ctx, stats, since); err != nil {
		return nil, err
	}
	if err := r.topPaymentMethods(ctx, stats); err != nil {
		return nil, err
	}

	return stats, nil
}

// countByStatus считает бронирования по статусам
func (r *Repository) countByStatus(ctx context.Context, stats *domain.BookingStats) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("status", "COUNT(*)").
		From("bookings").
		GroupBy("status").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: countByStatus - build query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: countByStatus - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var status domain.BookingStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return fmt.Errorf("%w: countByStatus - scan row: %v", ErrScanRow, err)
		}
		stats.ByStatus[status] = count
		stats.TotalBookings += count
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: countByStatus - rows error: %v", ErrScanRow, err)
	}

	return nil
}

// countByPaymentStatus считает бронирования по статусам оплаты
func (r *Repository) countByPaymentStatus(ctx context.Context, stats *domain.BookingStats) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("payment_status", "COUNT(*)").
		From("bookings").
		GroupBy("payment_status").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: countByPaymentStatus - build query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: countByPaymentStatus - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var status domain.PaymentStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return fmt.Errorf("%w: countByPaymentStatus - scan row: %v", ErrScanRow, err)
		}
		stats.ByPaymentStatus[status] = count
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: countByPaymentStatus - rows error: %v", ErrScanRow, err)
	}

	return nil
}

// revenueAndGroupSize считает общую выручку и средний размер группы
// Выручка - только по оплаченным бронированиям
func (r *Repository) revenueAndGroupSize(ctx context.Context, stats *domain.BookingStats) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select().
		Column(squirrel.Expr(
			"COALESCE(SUM(total_amount) FILTER (WHERE payment_status = ?), 0)",
			string(domain.PaymentPaid),
		)).
		Column("COALESCE(AVG(group_size), 0)").
		From("bookings").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: revenueAndGroupSize - build query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&stats.TotalRevenue,
		&stats.AverageGroupSize,
	)
	if err != nil {
		return fmt.Errorf("%w: revenueAndGroupSize - scan row: %v", ErrScanRow, err)
	}

	return nil
}

// dailyStats считает бронирования и выручку по дням за окно
func (r *Repository) dailyStats(ctx context.Context, stats *domain.BookingStats, since time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"DATE(created_at) AS day",
		"COUNT(*)",
		"COALESCE(SUM(total_amount) FILTER (WHERE payment_status = 'paid'), 0)",
	).
		From("bookings").
		Where(squirrel.GtOrEq{"created_at": since}).
		GroupBy("day").
		OrderBy("day ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: dailyStats - build query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: dailyStats - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	stats.Daily = make([]domain.DailyBookingStats, 0)
	for rows.Next() {
		var day domain.DailyBookingStats
		if err := rows.Scan(&day.Date, &day.Bookings, &day.Revenue); err != nil {
			return fmt.Errorf("%w: dailyStats - scan row: %v", ErrScanRow, err)
		}
		stats.Daily = append(stats.Daily, day)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: dailyStats - rows error: %v", ErrScanRow, err)
	}

	return nil
}

// topPaymentMethods возвращает самые используемые способы оплаты
func (r *Repository) topPaymentMethods(ctx context.Context, stats *domain.BookingStats) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("payment_method", "COUNT(*) AS cnt").
		From("bookings").
		Where(squirrel.NotEq{"payment_method": nil}).
		GroupBy("payment_method").
		OrderBy("cnt DESC").
		Limit(topPaymentMethodsLimit).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: topPaymentMethods - build query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: topPaymentMethods - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	stats.TopPaymentMethods = make([]domain.PaymentMethodCount, 0)
	for rows.Next() {
		var pm domain.PaymentMethodCount
		if err := rows.Scan(&pm.Method, &pm.Count); err != nil {
			return fmt.Errorf("%w: topPaymentMethods - scan row: %v", ErrScanRow, err)
		}
		stats.TopPaymentMethods = append(stats.TopPaymentMethods, pm)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: topPaymentMethods - rows error: %v", ErrScanRow, err)
	}

	return nil
}
