package slot

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

// slotColumns полный набор колонок таблицы visit_slots
var slotColumns = []string{
	"id",
	"slot_date",
	"start_time",
	"end_time",
	"duration_minutes",
	"capacity",
	"booked_count",
	"status",
	"description",
	"created_by",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы со слотами посещений
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новый слот
func (r *Repository) Create(ctx context.Context, slot *domain.VisitSlot) (*domain.VisitSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("visit_slots").
		Columns(
			"slot_date",
			"start_time",
			"end_time",
			"duration_minutes",
			"capacity",
			"booked_count",
			"status",
			"description",
			"created_by",
		).
		Values(
			slot.Date,
			slot.StartTime,
			slot.EndTime,
			slot.DurationMinutes,
			slot.Capacity,
			slot.BookedCount,
			slot.Status,
			slot.Description,
			slot.CreatedBy,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&slot.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	return slot, nil
}

// GetByID получает слот по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.VisitSlot, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate получает слот по ID с блокировкой строки (FOR UPDATE)
// Используется внутри транзакции перед проверкой вместимости, чтобы
// конкурентные бронирования одного слота сериализовались на этой строке
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.VisitSlot, error) {
	return r.getByID(ctx, id, true)
}

func (r *Repository) getByID(ctx context.Context, id int64, forUpdate bool) (*domain.VisitSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(slotColumns...).
		From("visit_slots").
		Where(squirrel.Eq{"id": id})

	// Блокировка имеет смысл только внутри транзакции
	if forUpdate && dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan slot: %v", ErrScanRow, err)
	}

	return slot, nil
}

// ListByDate получает все нетерминальные слоты на указанную дату
// Используется для проверки пересечений при создании/изменении слота;
// внутри транзакции строки блокируются (FOR UPDATE)
func (r *Repository) ListByDate(ctx context.Context, date time.Time) ([]*domain.VisitSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(slotColumns...).
		From("visit_slots").
		Where(squirrel.Eq{"slot_date": date}).
		Where(squirrel.NotEq{"status": []string{
			string(domain.SlotStatusCancelled),
			string(domain.SlotStatusExpired),
		}}).
		OrderBy("start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByDate - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByDate - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanSlots(rows)
}

// List получает слоты с фильтрацией
// OnlyBookable оставляет слоты со статусом available и свободной вместимостью -
// это публичный read path для неаутентифицированного поиска слотов
func (r *Repository) List(ctx context.Context, filter domain.SlotsFilter) ([]*domain.VisitSlot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(slotColumns...).
		From("visit_slots").
		OrderBy("slot_date ASC, start_time ASC")

	if filter.DateFrom != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"slot_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"slot_date": *filter.DateTo})
	}
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.CreatedBy != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"created_by": *filter.CreatedBy})
	}
	if filter.OnlyBookable {
		selectBuilder = selectBuilder.
			Where(squirrel.Eq{"status": domain.SlotStatusAvailable}).
			Where(squirrel.Expr("booked_count < capacity"))
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanSlots(rows)
}

// Update сохраняет изменённые поля слота
func (r *Repository) Update(ctx context.Context, slot *domain.VisitSlot) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("visit_slots").
		Set("slot_date", slot.Date).
		Set("start_time", slot.StartTime).
		Set("end_time", slot.EndTime).
		Set("duration_minutes", slot.DurationMinutes).
		Set("capacity", slot.Capacity).
		Set("status", slot.Status).
		Set("description", slot.Description).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": slot.ID}).
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
		return ErrSlotNotFound
	}

	return nil
}

// UpdateBookedCount перезаписывает кэш booked_count слота
// Вызывается только внутри той же транзакции, что и мутация бронирований
func (r *Repository) UpdateBookedCount(ctx context.Context, id int64, bookedCount int) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("visit_slots").
		Set("booked_count", bookedCount).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateBookedCount - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateBookedCount - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateBookedCount - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotFound
	}

	return nil
}

// Delete удаляет слот (физическое удаление)
// Сервисный слой гарантирует отсутствие активных бронирований перед вызовом
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("visit_slots").
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
		return ErrSlotNotFound
	}

	return nil
}

// ExpirePastUnbooked переводит в статус expired все слоты с датой раньше cutoff,
// не имеющие активных бронирований и ещё не находящиеся в терминальном статусе
// Возвращает количество затронутых слотов; данные не удаляются
func (r *Repository) ExpirePastUnbooked(ctx context.Context, cutoff time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("visit_slots").
		Set("status", domain.SlotStatusExpired).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Lt{"slot_date": cutoff}).
		Where(squirrel.NotEq{"status": []string{
			string(domain.SlotStatusCancelled),
			string(domain.SlotStatusExpired),
		}}).
		Where(squirrel.Expr(
			"NOT EXISTS (SELECT 1 FROM bookings b WHERE b.slot_id = visit_slots.id AND b.status IN (?, ?))",
			string(domain.StatusTentative),
			string(domain.StatusConfirmed),
		)).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: ExpirePastUnbooked - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: ExpirePastUnbooked - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: ExpirePastUnbooked - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanSlot сканирует одну строку в доменную модель слота
func scanSlot(row rowScanner) (*domain.VisitSlot, error) {
	var slot domain.VisitSlot
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&slot.ID,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.DurationMinutes,
		&slot.Capacity,
		&slot.BookedCount,
		&slot.Status,
		&slot.Description,
		&slot.CreatedBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	slot.CreatedAt = createdAt.Time
	slot.UpdatedAt = updatedAt.Time

	return &slot, nil
}

// scanSlots сканирует результаты запроса в слайс слотов
func scanSlots(rows *sql.Rows) ([]*domain.VisitSlot, error) {
	slots := make([]*domain.VisitSlot, 0)

	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanSlots - scan row: %v", ErrScanRow, err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanSlots - rows error: %v", ErrScanRow, err)
	}

	return slots, nil
}
