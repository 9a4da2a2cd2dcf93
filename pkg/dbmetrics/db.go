package dbmetrics

import (
	"context"
	"database/sql"
	"time"

	"github.com/m04kA/VMS-VisitService/pkg/metrics"
)

// DB обёртка над *sql.DB, снимающая метрики времени выполнения запросов
// и состояния connection pool
type DB struct {
	db      *sql.DB
	metrics *metrics.Metrics
	service string
}

// defaultPoolStatsInterval интервал опроса состояния connection pool
const defaultPoolStatsInterval = 15 * time.Second

// Wrap оборачивает *sql.DB сбором метрик запросов
func Wrap(db *sql.DB, m *metrics.Metrics, service string) *DB {
	return &DB{db: db, metrics: m, service: service}
}

// WrapWithDefault оборачивает *sql.DB и запускает фоновый сбор метрик
// connection pool с дефолтным интервалом; остановка через закрытие stopCh
func WrapWithDefault(db *sql.DB, m *metrics.Metrics, service string, stopCh <-chan struct{}) *DB {
	wrapped := Wrap(db, m, service)
	go wrapped.collectPoolStats(defaultPoolStatsInterval, stopCh)
	return wrapped
}

// ExecContext выполняет запрос с фиксацией метрик
func (d *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := d.db.ExecContext(ctx, query, args...)
	d.metrics.ObserveDBQuery("exec", err, time.Since(start))
	return res, err
}

// QueryContext выполняет запрос с фиксацией метрик
func (d *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := d.db.QueryContext(ctx, query, args...)
	d.metrics.ObserveDBQuery("query", err, time.Since(start))
	return rows, err
}

// QueryRowContext выполняет запрос с фиксацией метрик
// Ошибка будет видна только при Scan, поэтому фиксируем только длительность
func (d *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := d.db.QueryRowContext(ctx, query, args...)
	d.metrics.ObserveDBQuery("query_row", nil, time.Since(start))
	return row
}

// BeginTx начинает транзакцию; сами запросы транзакции тоже попадают в метрики
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (TxExecutor, error) {
	start := time.Now()
	tx, err := d.db.BeginTx(ctx, opts)
	d.metrics.ObserveDBQuery("begin_tx", err, time.Since(start))
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, metrics: d.metrics}, nil
}

// collectPoolStats периодически публикует состояние connection pool
func (d *DB) collectPoolStats(interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.metrics.SetDBConnections(d.db.Stats())
		case <-stopCh:
			return
		}
	}
}

// Tx обёртка над *sql.Tx с метриками
type Tx struct {
	tx      *sql.Tx
	metrics *metrics.Metrics
}

// ExecContext выполняет запрос внутри транзакции с фиксацией метрик
func (t *Tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	res, err := t.tx.ExecContext(ctx, query, args...)
	t.metrics.ObserveDBQuery("tx_exec", err, time.Since(start))
	return res, err
}

// QueryContext выполняет запрос внутри транзакции с фиксацией метрик
func (t *Tx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.tx.QueryContext(ctx, query, args...)
	t.metrics.ObserveDBQuery("tx_query", err, time.Since(start))
	return rows, err
}

// QueryRowContext выполняет запрос внутри транзакции с фиксацией метрик
func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := t.tx.QueryRowContext(ctx, query, args...)
	t.metrics.ObserveDBQuery("tx_query_row", nil, time.Since(start))
	return row
}

// Commit фиксирует транзакцию
func (t *Tx) Commit() error {
	start := time.Now()
	err := t.tx.Commit()
	t.metrics.ObserveDBQuery("commit", err, time.Since(start))
	return err
}

// Rollback откатывает транзакцию
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}
