package command

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/x-research-team/cqrs-framework/cqrs/container"
)

// Bus - это шина команд: находит обработчик по типу команды в контейнере и
// вызывает его. Шина не хранит изменяемого состояния и безопасна для
// конкурентного использования при любом времени жизни.
type Bus struct {
	container *container.Container
}

// NewBus создает новую шину команд поверх контейнера.
func NewBus(c *container.Container) *Bus {
	return &Bus{container: c}
}

// Send отправляет команду без результата ее обработчику.
// Nil-команда отклоняется до какого-либо разрешения из контейнера.
// Ошибка обработчика возвращается вызывающей стороне без изменений.
func (b *Bus) Send(ctx context.Context, cmd any) error {
	invoker, err := b.invokerFor(ctx, cmd)
	if err != nil {
		return err
	}

	_, err = invoker.Invoke(ctx, cmd)
	return err
}

// SendR отправляет команду с результатом типа R ее обработчику.
// Функция является обобщенной оберткой над шиной, обходя ограничение
// на отсутствие обобщенных методов в Go.
func SendR[R any](ctx context.Context, b *Bus, cmd any) (R, error) {
	var zero R

	invoker, err := b.invokerFor(ctx, cmd)
	if err != nil {
		return zero, err
	}

	result, err := invoker.Invoke(ctx, cmd)
	if err != nil {
		return zero, err
	}

	typed, ok := result.(R)
	if !ok {
		return zero, fmt.Errorf("результат команды '%s' имеет неожиданный тип %T, ожидался %s",
			reflect.TypeOf(cmd), result, reflect.TypeOf((*R)(nil)).Elem())
	}
	return typed, nil
}

// invokerFor проверяет команду и разрешает ее обработчик из контейнера.
func (b *Bus) invokerFor(ctx context.Context, cmd any) (Invoker, error) {
	if cmd == nil {
		return nil, errors.New("аргумент 'cmd' обязателен: команда не может быть nil")
	}

	key := keyForValue(cmd)
	resolved, err := b.container.Resolve(ctx, key)
	if err != nil {
		if errors.Is(err, container.ErrNotRegistered) {
			return nil, fmt.Errorf("обработчик для команды '%s' не найден: %w", key.Type, err)
		}
		return nil, err
	}

	invoker, ok := resolved.(Invoker)
	if !ok {
		return nil, fmt.Errorf("регистрация команды '%s' не является обработчиком: %T", key.Type, resolved)
	}
	return invoker, nil
}

// busKey возвращает ключ инфраструктурной регистрации шины команд.
func busKey() container.Key {
	return container.Key{Family: infraFamily, Type: reflect.TypeOf((*Bus)(nil))}
}

// RegisterBus регистрирует шину команд в контейнере с временем жизни transient.
// Шина зависит только от самого контейнера.
func RegisterBus(c *container.Container) error {
	return c.Register(busKey(), func(ctx context.Context, r container.Resolver) (any, error) {
		return NewBus(c), nil
	}, container.Transient)
}

// ResolveBus возвращает зарегистрированную шину команд из контейнера.
func ResolveBus(ctx context.Context, c *container.Container) (*Bus, error) {
	resolved, err := c.Resolve(ctx, busKey())
	if err != nil {
		return nil, fmt.Errorf("шина команд не зарегистрирована: %w", err)
	}

	bus, ok := resolved.(*Bus)
	if !ok {
		return nil, fmt.Errorf("инфраструктурная регистрация шины команд имеет неожиданный тип %T", resolved)
	}
	return bus, nil
}
