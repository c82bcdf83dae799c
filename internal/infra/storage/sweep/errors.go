package sweep

import "errors"

var (
	// ErrConnect возвращается при ошибке подключения к БД
	ErrConnect = errors.New("sweep.repository: failed to connect")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("sweep.repository: failed to execute query")
)
