package supplyorder

import "errors"

var (
	// ErrSupplyOrderNotFound возвращается, когда заказ поставки не найден
	ErrSupplyOrderNotFound = errors.New("supplyorder.repository: supply order not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("supplyorder.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("supplyorder.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("supplyorder.repository: failed to scan row")
)
