package command

import (
	"context"
	"fmt"
	"reflect"

	"github.com/x-research-team/cqrs-framework/cqrs/container"
)

// HandlerFactory создает обработчик команды C, разрешая его зависимости из контейнера.
type HandlerFactory[C any] func(ctx context.Context, r container.Resolver) (Handler[C], error)

// HandlerFactoryR создает обработчик команды C с результатом R.
type HandlerFactoryR[C any, R any] func(ctx context.Context, r container.Resolver) (HandlerR[C, R], error)

// KeyFor возвращает ключ контракта обработчика для типа команды C.
func KeyFor[C any]() container.Key {
	return container.Key{Family: Family, Type: reflect.TypeOf((*C)(nil)).Elem()}
}

// keyForValue возвращает ключ контракта по значению команды.
func keyForValue(cmd any) container.Key {
	return container.Key{Family: Family, Type: reflect.TypeOf(cmd)}
}

// RegisterHandler регистрирует фабрику обработчика команды C в контейнере.
// Время жизни по умолчанию - transient; оно задает и время жизни всей цепочки
// декораторов, построенной поверх этого обработчика.
func RegisterHandler[C any](c *container.Container, factory HandlerFactory[C], opts ...RegisterOption) error {
	if factory == nil {
		return fmt.Errorf("регистрация обработчика команды '%s': фабрика не может быть nil", KeyFor[C]().Type)
	}

	cfg := &registerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return c.Register(KeyFor[C](), func(ctx context.Context, r container.Resolver) (any, error) {
		handler, err := factory(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("не удалось создать обработчик команды '%s': %w", KeyFor[C]().Type, err)
		}
		if handler == nil {
			return nil, fmt.Errorf("фабрика обработчика команды '%s' вернула nil", KeyFor[C]().Type)
		}
		return &handlerInvoker[C]{handler: handler}, nil
	}, cfg.lifetime)
}

// RegisterHandlerR регистрирует фабрику обработчика команды C с результатом R.
func RegisterHandlerR[C any, R any](c *container.Container, factory HandlerFactoryR[C, R], opts ...RegisterOption) error {
	if factory == nil {
		return fmt.Errorf("регистрация обработчика команды '%s': фабрика не может быть nil", KeyFor[C]().Type)
	}

	cfg := &registerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return c.Register(KeyFor[C](), func(ctx context.Context, r container.Resolver) (any, error) {
		handler, err := factory(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("не удалось создать обработчик команды '%s': %w", KeyFor[C]().Type, err)
		}
		if handler == nil {
			return nil, fmt.Errorf("фабрика обработчика команды '%s' вернула nil", KeyFor[C]().Type)
		}
		return &handlerInvokerR[C, R]{handler: handler}, nil
	}, cfg.lifetime)
}

// handlerInvoker адаптирует типизированный обработчик без результата к
// стертому контракту Invoker. Это самое внутреннее звено цепочки декораторов.
type handlerInvoker[C any] struct {
	handler Handler[C]
}

// Invoke выполняет обработчик, проверяя тип команды.
func (i *handlerInvoker[C]) Invoke(ctx context.Context, cmd any) (any, error) {
	typed, ok := cmd.(C)
	if !ok {
		return nil, fmt.Errorf("команда имеет неожиданный тип %T, ожидался %s", cmd, reflect.TypeOf((*C)(nil)).Elem())
	}
	return nil, i.handler(ctx, typed)
}

// handlerInvokerR адаптирует типизированный обработчик с результатом к Invoker.
type handlerInvokerR[C any, R any] struct {
	handler HandlerR[C, R]
}

// Invoke выполняет обработчик, проверяя тип команды.
func (i *handlerInvokerR[C, R]) Invoke(ctx context.Context, cmd any) (any, error) {
	typed, ok := cmd.(C)
	if !ok {
		return nil, fmt.Errorf("команда имеет неожиданный тип %T, ожидался %s", cmd, reflect.TypeOf((*C)(nil)).Elem())
	}
	result, err := i.handler(ctx, typed)
	if err != nil {
		return nil, err
	}
	return result, nil
}
