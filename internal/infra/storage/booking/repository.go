package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/VMS-VisitService/internal/domain"
	"github.com/m04kA/VMS-VisitService/pkg/dbmetrics"
	"github.com/m04kA/VMS-VisitService/pkg/psqlbuilder"
)

// bookingColumns полный набор колонок таблицы bookings (с префиксом для join'ов)
var bookingColumns = []string{
	"bookings.id",
	"bookings.slot_id",
	"bookings.visitor_id",
	"bookings.group_size",
	"bookings.status",
	"bookings.total_amount",
	"bookings.payment_status",
	"bookings.payment_method",
	"bookings.notes",
	"bookings.special_requests",
	"bookings.cancellation_reason",
	"bookings.confirmed_at",
	"bookings.cancelled_at",
	"bookings.created_by",
	"bookings.created_at",
	"bookings.updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Проверка вместимости и вставка должны выполняться в одной транзакции
// (через контекст с активной транзакцией), иначе две конкурентные заявки
// могут обе пройти проверку и переполнить слот
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"slot_id",
			"visitor_id",
			"group_size",
			"status",
			"total_amount",
			"payment_status",
			"payment_method",
			"notes",
			"special_requests",
			"created_by",
		).
		Values(
			booking.SlotID,
			booking.VisitorID,
			booking.GroupSize,
			booking.Status,
			booking.TotalAmount,
			booking.PaymentStatus,
			booking.PaymentMethod,
			booking.Notes,
			booking.SpecialRequests,
			booking.CreatedBy,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"bookings.id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// SumActiveGroupSize возвращает сумму group_size активных бронирований слота
// (status IN tentative, confirmed) - живой агрегат, канонический источник
// для проверки вместимости; кэш booked_count здесь не используется
// excludeBookingID исключает собственный вклад бронирования при ревалидации
// его изменения
func (r *Repository) SumActiveGroupSize(ctx context.Context, slotID int64, excludeBookingID *int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("COALESCE(SUM(group_size), 0)").
		From("bookings").
		Where(squirrel.Eq{"slot_id": slotID}).
		Where(squirrel.Eq{"status": activeStatusStrings()})

	if excludeBookingID != nil {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": *excludeBookingID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: SumActiveGroupSize - build select query: %v", ErrBuildQuery, err)
	}

	var sum int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&sum); err != nil {
		return 0, fmt.Errorf("%w: SumActiveGroupSize - scan sum: %v", ErrScanRow, err)
	}

	return sum, nil
}

// CountActiveBySlotID возвращает количество активных бронирований слота
// Используется при проверке удаления слота и в sweep'е истечения
func (r *Repository) CountActiveBySlotID(ctx context.Context, slotID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{"slot_id": slotID}).
		Where(squirrel.Eq{"status": activeStatusStrings()}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountActiveBySlotID - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountActiveBySlotID - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// List получает бронирования с фильтрацией и пагинацией
// Возвращает страницу и общее количество строк под фильтром
// Сортировка: по времени создания DESC; при фильтре по слоту - ASC
// (порядок очереди бронирований этого слота)
func (r *Repository) List(ctx context.Context, filter domain.BookingsFilter, page domain.Pagination) ([]*domain.Booking, int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)
	page = page.Normalize()

	countBuilder := applyFilter(psqlbuilder.Select("COUNT(*)").From("bookings"), filter)

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: List - build count query: %v", ErrBuildQuery, err)
	}

	var total int64
	if err := executor.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: List - scan total: %v", ErrScanRow, err)
	}

	selectBuilder := applyFilter(psqlbuilder.Select(bookingColumns...).From("bookings"), filter)

	if filter.SlotID != nil {
		selectBuilder = selectBuilder.OrderBy("bookings.created_at ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("bookings.created_at DESC")
	}

	selectBuilder = selectBuilder.
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset()))

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings, err := scanBookings(rows)
	if err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// applyFilter накладывает условия фильтра на builder
// Диапазон дат фильтрует по дате слота через join на visit_slots
func applyFilter(b squirrel.SelectBuilder, filter domain.BookingsFilter) squirrel.SelectBuilder {
	if filter.DateFrom != nil || filter.DateTo != nil {
		b = b.Join("visit_slots ON visit_slots.id = bookings.slot_id")
		if filter.DateFrom != nil {
			b = b.Where(squirrel.GtOrEq{"visit_slots.slot_date": *filter.DateFrom})
		}
		if filter.DateTo != nil {
			b = b.Where(squirrel.LtOrEq{"visit_slots.slot_date": *filter.DateTo})
		}
	}

	if filter.SlotID != nil {
		b = b.Where(squirrel.Eq{"bookings.slot_id": *filter.SlotID})
	}
	if filter.VisitorID != nil {
		b = b.Where(squirrel.Eq{"bookings.visitor_id": *filter.VisitorID})
	}
	if filter.Status != nil {
		b = b.Where(squirrel.Eq{"bookings.status": *filter.Status})
	}
	if filter.PaymentStatus != nil {
		b = b.Where(squirrel.Eq{"bookings.payment_status": *filter.PaymentStatus})
	}
	if filter.PaymentMethod != nil {
		b = b.Where(squirrel.Eq{"bookings.payment_method": *filter.PaymentMethod})
	}
	if filter.CreatedBy != nil {
		b = b.Where(squirrel.Eq{"bookings.created_by": *filter.CreatedBy})
	}
	if filter.GroupSizeMin != nil {
		b = b.Where(squirrel.GtOrEq{"bookings.group_size": *filter.GroupSizeMin})
	}
	if filter.GroupSizeMax != nil {
		b = b.Where(squirrel.LtOrEq{"bookings.group_size": *filter.GroupSizeMax})
	}
	if filter.AmountMin != nil {
		b = b.Where(squirrel.GtOrEq{"bookings.total_amount": *filter.AmountMin})
	}
	if filter.AmountMax != nil {
		b = b.Where(squirrel.LtOrEq{"bookings.total_amount": *filter.AmountMax})
	}

	return b
}

// Update сохраняет изменённые поля бронирования
func (r *Repository) Update(ctx context.Context, booking *domain.Booking) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("group_size", booking.GroupSize).
		Set("status", booking.Status).
		Set("total_amount", booking.TotalAmount).
		Set("payment_status", booking.PaymentStatus).
		Set("payment_method", booking.PaymentMethod).
		Set("notes", booking.Notes).
		Set("special_requests", booking.SpecialRequests).
		Set("cancellation_reason", booking.CancellationReason).
		Set("confirmed_at", booking.ConfirmedAt).
		Set("cancelled_at", booking.CancelledAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": booking.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Update - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// Confirm переводит бронирование в статус confirmed с меткой времени
func (r *Repository) Confirm(ctx context.Context, id int64, confirmedAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusConfirmed).
		Set("confirmed_at", confirmedAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Confirm - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Confirm - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Confirm - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// Cancel отменяет бронирование с указанием причины и метки времени
func (r *Repository) Cancel(ctx context.Context, id int64, reason string, cancelledAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", cancelledAt).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// Delete удаляет бронирование (физическое удаление, административная операция)
// Для обычных сценариев использовать Cancel - история сохраняется
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// activeStatusStrings статусы, удерживающие вместимость, в виде строк для SQL
func activeStatusStrings() []string {
	statuses := make([]string, len(domain.ActiveBookingStatuses))
	for i, s := range domain.ActiveBookingStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanBooking сканирует одну строку в доменную модель бронирования
func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.SlotID,
		&booking.VisitorID,
		&booking.GroupSize,
		&booking.Status,
		&booking.TotalAmount,
		&booking.PaymentStatus,
		&booking.PaymentMethod,
		&booking.Notes,
		&booking.SpecialRequests,
		&booking.CancellationReason,
		&booking.ConfirmedAt,
		&booking.CancelledAt,
		&booking.CreatedBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}
