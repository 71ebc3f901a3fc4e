// Package query реализует сторону запросов CQRS: контракты обработчиков
// чтения, их регистрацию в контейнере, построение цепочек декораторов и
// процессор запросов (QueryProcessor), который находит и вызывает обработчик
// по типу запроса. Запрос всегда возвращает значение и не меняет состояние.
package query

import (
	"context"

	"github.com/x-research-team/cqrs-framework/cqrs/container"
)

// Family - семейство контрактов обработчиков запросов в контейнере.
const Family = "query"

// infraFamily - семейство инфраструктурных регистраций (сам процессор).
const infraFamily = "infra"

// Handler определяет строго типизированную функцию-обработчик для запроса Q,
// возвращающую результат типа R.
type Handler[Q any, R any] func(ctx context.Context, q Q) (R, error)

// Invoker - это стертый по типу контракт вызова обработчика запроса.
type Invoker interface {
	// Invoke выполняет обработчик для указанного запроса и возвращает результат.
	Invoke(ctx context.Context, q any) (any, error)
}

// InvokerFunc является адаптером, позволяющим использовать обычные функции как Invoker.
type InvokerFunc func(ctx context.Context, q any) (any, error)

// Invoke реализует интерфейс Invoker.
func (f InvokerFunc) Invoke(ctx context.Context, q any) (any, error) {
	return f(ctx, q)
}

// Decorator оборачивает обработчик запросов сквозной функциональностью,
// не меняя его контракт. Декоратор с индексом 0 становится самым внутренним,
// последний - самым внешним и вызывается первым.
type Decorator interface {
	Wrap(next Invoker) Invoker
}

// DecoratorFunc является адаптером, позволяющим использовать обычные функции как Decorator.
type DecoratorFunc func(next Invoker) Invoker

// Wrap реализует интерфейс Decorator.
func (f DecoratorFunc) Wrap(next Invoker) Invoker {
	return f(next)
}

// DecoratorFactory создает декоратор, разрешая его дополнительные зависимости
// из контейнера в момент разрешения обработчика.
type DecoratorFactory func(ctx context.Context, r container.Resolver) (Decorator, error)

// Metadatable определяет интерфейс для запросов, которые могут нести метаданные.
type Metadatable interface {
	Metadata() map[string]string
}
