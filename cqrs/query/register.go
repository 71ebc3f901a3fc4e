package query

import (
	"context"
	"fmt"
	"reflect"

	"github.com/x-research-team/cqrs-framework/cqrs/container"
)

// HandlerFactory создает обработчик запроса Q с результатом R, разрешая его
// зависимости из контейнера.
type HandlerFactory[Q any, R any] func(ctx context.Context, r container.Resolver) (Handler[Q, R], error)

// KeyFor возвращает ключ контракта обработчика для типа запроса Q.
func KeyFor[Q any]() container.Key {
	return container.Key{Family: Family, Type: reflect.TypeOf((*Q)(nil)).Elem()}
}

// keyForValue возвращает ключ контракта по значению запроса.
func keyForValue(q any) container.Key {
	return container.Key{Family: Family, Type: reflect.TypeOf(q)}
}

// RegisterHandler регистрирует фабрику обработчика запроса Q в контейнере.
// Время жизни по умолчанию - transient.
func RegisterHandler[Q any, R any](c *container.Container, factory HandlerFactory[Q, R], opts ...RegisterOption) error {
	if factory == nil {
		return fmt.Errorf("регистрация обработчика запроса '%s': фабрика не может быть nil", KeyFor[Q]().Type)
	}

	cfg := &registerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	return c.Register(KeyFor[Q](), func(ctx context.Context, r container.Resolver) (any, error) {
		handler, err := factory(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("не удалось создать обработчик запроса '%s': %w", KeyFor[Q]().Type, err)
		}
		if handler == nil {
			return nil, fmt.Errorf("фабрика обработчика запроса '%s' вернула nil", KeyFor[Q]().Type)
		}
		return &handlerInvoker[Q, R]{handler: handler}, nil
	}, cfg.lifetime)
}

// handlerInvoker адаптирует типизированный обработчик запроса к стертому
// контракту Invoker. Это самое внутреннее звено цепочки декораторов.
type handlerInvoker[Q any, R any] struct {
	handler Handler[Q, R]
}

// Invoke выполняет обработчик, проверяя тип запроса.
func (i *handlerInvoker[Q, R]) Invoke(ctx context.Context, q any) (any, error) {
	typed, ok := q.(Q)
	if !ok {
		return nil, fmt.Errorf("запрос имеет неожиданный тип %T, ожидался %s", q, reflect.TypeOf((*Q)(nil)).Elem())
	}
	result, err := i.handler(ctx, typed)
	if err != nil {
		return nil, err
	}
	return result, nil
}
