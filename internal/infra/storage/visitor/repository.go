package visitor

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/VMS-VisitService/internal/domain"
	"github.com/m04kA/VMS-VisitService/pkg/dbmetrics"
	"github.com/m04kA/VMS-VisitService/pkg/psqlbuilder"
)

// Repository репозиторий посетителей
// Регистрацией посетителей занимается внешний контур; здесь только чтение
// для проверки существования при создании бронирования
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория посетителей
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает посетителя по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Visitor, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"full_name",
		"email",
		"phone",
		"created_at",
	).
		From("visitors").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var visitor domain.Visitor
	var createdAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&visitor.ID,
		&visitor.FullName,
		&visitor.Email,
		&visitor.Phone,
		&createdAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrVisitorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan visitor: %v", ErrScanRow, err)
	}

	visitor.CreatedAt = createdAt.Time

	return &visitor, nil
}
