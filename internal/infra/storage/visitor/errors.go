package visitor

import "errors"

var (
	// ErrVisitorNotFound возвращается, когда посетитель не найден
	ErrVisitorNotFound = errors.New("visitor.repository: visitor not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("visitor.repository: failed to build query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("visitor.repository: failed to scan row")
)
