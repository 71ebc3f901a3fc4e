package query

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/x-research-team/cqrs-framework/cqrs/container"
)

// Processor - это процессор запросов: находит обработчик по типу запроса в
// контейнере и вызывает его. Процессор не хранит изменяемого состояния и
// безопасен для конкурентного использования при любом времени жизни.
type Processor struct {
	container *container.Container
}

// NewProcessor создает новый процессор запросов поверх контейнера.
func NewProcessor(c *container.Container) *Processor {
	return &Processor{container: c}
}

// Process выполняет запрос и возвращает результат типа R.
// Nil-запрос отклоняется до какого-либо разрешения из контейнера.
// Ошибка обработчика возвращается вызывающей стороне без изменений.
// Функция является обобщенной оберткой над процессором, обходя ограничение
// на отсутствие обобщенных методов в Go.
func Process[R any](ctx context.Context, p *Processor, q any) (R, error) {
	var zero R

	if q == nil {
		return zero, errors.New("аргумент 'q' обязателен: запрос не может быть nil")
	}

	key := keyForValue(q)
	resolved, err := p.container.Resolve(ctx, key)
	if err != nil {
		if errors.Is(err, container.ErrNotRegistered) {
			return zero, fmt.Errorf("обработчик для запроса '%s' не найден: %w", key.Type, err)
		}
		return zero, err
	}

	invoker, ok := resolved.(Invoker)
	if !ok {
		return zero, fmt.Errorf("регистрация запроса '%s' не является обработчиком: %T", key.Type, resolved)
	}

	result, err := invoker.Invoke(ctx, q)
	if err != nil {
		return zero, err
	}

	typed, ok := result.(R)
	if !ok {
		return zero, fmt.Errorf("результат запроса '%s' имеет неожиданный тип %T, ожидался %s",
			key.Type, result, reflect.TypeOf((*R)(nil)).Elem())
	}
	return typed, nil
}

// processorKey возвращает ключ инфраструктурной регистрации процессора запросов.
func processorKey() container.Key {
	return container.Key{Family: infraFamily, Type: reflect.TypeOf((*Processor)(nil))}
}

// RegisterProcessor регистрирует процессор запросов в контейнере с временем
// жизни transient. Процессор зависит только от самого контейнера.
func RegisterProcessor(c *container.Container) error {
	return c.Register(processorKey(), func(ctx context.Context, r container.Resolver) (any, error) {
		return NewProcessor(c), nil
	}, container.Transient)
}

// ResolveProcessor возвращает зарегистрированный процессор запросов из контейнера.
func ResolveProcessor(ctx context.Context, c *container.Container) (*Processor, error) {
	resolved, err := c.Resolve(ctx, processorKey())
	if err != nil {
		return nil, fmt.Errorf("процессор запросов не зарегистрирован: %w", err)
	}

	processor, ok := resolved.(*Processor)
	if !ok {
		return nil, fmt.Errorf("инфраструктурная регистрация процессора запросов имеет неожиданный тип %T", resolved)
	}
	return processor, nil
}
