// Package command реализует сторону команд CQRS: контракты обработчиков,
// регистрацию обработчиков в контейнере, построение цепочек декораторов и
// шину команд (CommandBus), которая находит и вызывает обработчик по типу
// команды. Диспетчеризация строго внутрипроцессная и синхронная: одна
// попытка на отправку, без повторов и без очередей.
package command

import (
	"context"

	"github.com/x-research-team/cqrs-framework/cqrs/container"
)

// Family - семейство контрактов обработчиков команд в контейнере.
const Family = "command"

// infraFamily - семейство инфраструктурных регистраций (сама шина).
// Декорирование обработчиков никогда не затрагивает это семейство.
const infraFamily = "infra"

// Handler определяет строго типизированную функцию-обработчик для команды C,
// не возвращающую значения.
type Handler[C any] func(ctx context.Context, cmd C) error

// HandlerR определяет строго типизированную функцию-обработчик для команды C,
// возвращающую результат типа R. Пара (R, error) играет роль контейнера
// успех/неудача: ошибка никогда не передается через результат.
type HandlerR[C any, R any] func(ctx context.Context, cmd C) (R, error)

// Invoker - это стертый по типу контракт вызова обработчика команды.
// За этим интерфейсом неразличимы базовый обработчик и любая глубина
// обернувших его декораторов.
type Invoker interface {
	// Invoke выполняет обработчик для указанной команды.
	// Для обработчиков без результата возвращаемое значение равно nil.
	Invoke(ctx context.Context, cmd any) (any, error)
}

// InvokerFunc является адаптером, позволяющим использовать обычные функции как Invoker.
type InvokerFunc func(ctx context.Context, cmd any) (any, error)

// Invoke реализует интерфейс Invoker.
func (f InvokerFunc) Invoke(ctx context.Context, cmd any) (any, error) {
	return f(ctx, cmd)
}

// Decorator оборачивает обработчик команд сквозной функциональностью
// (логирование, транзакции), не меняя его контракт. Декоратор, примененный
// первым, оказывается самым внутренним; примененный последним - самым
// внешним и вызывается первым.
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

// Metadatable определяет интерфейс для команд, которые могут нести метаданные
// (например, контекст трассировки).
type Metadatable interface {
	Metadata() map[string]string
}
