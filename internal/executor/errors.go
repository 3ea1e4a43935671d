package executor

import "errors"

// Ошибки executor.
var (
	// ErrEmptyFlow — flow без узлов. Запуск отклоняется до старта:
	// ни журнала, ни результата.
	ErrEmptyFlow = errors.New("cannot execute empty flow")
)
