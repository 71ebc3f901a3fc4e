// Package tx реализует транзакционный декоратор обработчиков команд:
// обработка выполняется внутри транзакции, которая фиксируется при успешном
// завершении и откатывается при любой ошибке. Вместо неявного (thread-local)
// амбиентного состояния транзакция переносится явно через контекст вызова,
// что делает модель переносимой между кооперативными моделями конкурентности.
package tx

import (
	"context"

	"github.com/google/uuid"
)

// Tx представляет начатую транзакцию. Транзакция завершается ровно одним из
// двух путей: Commit при успехе или Rollback при ошибке. Повторное завершение
// не поддерживается.
type Tx interface {
	// ID возвращает уникальный идентификатор транзакции для диагностики.
	ID() uuid.UUID

	// Commit фиксирует транзакцию.
	Commit(ctx context.Context) error

	// Rollback откатывает транзакцию.
	Rollback(ctx context.Context) error
}

// Transactor определяет контракт для сменных менеджеров транзакций
// (PostgreSQL, in-memory и т.д.). Реализация обязана быть потокобезопасной:
// каждая конкурентная единица работы получает собственную транзакцию.
type Transactor interface {
	// Begin начинает новую транзакцию с указанными параметрами.
	Begin(ctx context.Context, opts Options) (Tx, error)
}
