package dbmetrics

import (
	"context"
	"database/sql"
)

// DBExecutor минимальный интерфейс для выполнения запросов
// Реализуется *sql.DB, *sql.Tx, *dbmetrics.DB и *dbmetrics.Tx
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// TxExecutor интерфейс транзакции
type TxExecutor interface {
	DBExecutor
	Commit() error
	Rollback() error
}

type ctxKey int

const txCtxKey ctxKey = iota

// WithExecutor кладет активную транзакцию в контекст
// Репозитории достают её через GetExecutor и выполняют запросы внутри транзакции
func WithExecutor(ctx context.Context, tx TxExecutor) context.Context {
	return context.WithValue(ctx, txCtxKey, tx)
}

// GetExecutor возвращает транзакцию из контекста, если она там есть,
// иначе переданный executor по умолчанию
func GetExecutor(ctx context.Context, fallback DBExecutor) DBExecutor {
	if tx, ok := ctx.Value(txCtxKey).(TxExecutor); ok && tx != nil {
		return tx
	}
	return fallback
}

// IsInTransaction возвращает true, если в контексте есть активная транзакция
func IsInTransaction(ctx context.Context) bool {
	tx, ok := ctx.Value(txCtxKey).(TxExecutor)
	return ok && tx != nil
}
