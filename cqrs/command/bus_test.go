package command_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-research-team/cqrs-framework/cqrs/command"
	"github.com/x-research-team/cqrs-framework/cqrs/container"
)

// Тестовая команда без результата.
type testCommand struct {
	Value string
}

// Тестовая команда с результатом.
type createOrderCommand struct {
	ID string
}

// newBusWithHandler регистрирует обработчик testCommand и возвращает шину
// вместе со счетчиком вызовов обработчика.
func newBusWithHandler(t *testing.T) (*command.Bus, *atomic.Int64) {
	t.Helper()

	c := container.New()
	calls := &atomic.Int64{}

	err := command.RegisterHandler(c, func(ctx context.Context, r container.Resolver) (command.Handler[testCommand], error) {
		return func(ctx context.Context, cmd testCommand) error {
			calls.Add(1)
			return nil
		}, nil
	})
	require.NoError(t, err, "Регистрация обработчика не должна вызывать ошибку")

	return command.NewBus(c), calls
}

// Тест успешной отправки команды: обработчик вызывается ровно один раз.
func TestBus_Send_Success(t *testing.T) {
	t.Parallel()

	bus, calls := newBusWithHandler(t)

	err := bus.Send(context.Background(), testCommand{Value: "test"})
	require.NoError(t, err, "Отправка команды не должна вызывать ошибку")
	assert.Equal(t, int64(1), calls.Load(), "Обработчик должен быть вызван ровно один раз")
}

// Тест отправки команды с результатом.
func TestBus_SendR_Success(t *testing.T) {
	t.Parallel()

	c := container.New()
	err := command.RegisterHandlerR(c, func(ctx context.Context, r container.Resolver) (command.HandlerR[createOrderCommand, string], error) {
		return func(ctx context.Context, cmd createOrderCommand) (string, error) {
			return "order:" + cmd.ID, nil
		}, nil
	})
	require.NoError(t, err, "Регистрация обработчика не должна вызывать ошибку")

	bus := command.NewBus(c)
	result, err := command.SendR[string](context.Background(), bus, createOrderCommand{ID: "42"})

	require.NoError(t, err, "Отправка команды не должна вызывать ошибку")
	assert.Equal(t, "order:42", result, "Результат выполнения команды некорректен")
}

// Тест отклонения nil-команды: ошибка аргумента до вызова обработчика.
func TestBus_Send_NilCommand(t *testing.T) {
	t.Parallel()

	bus, calls := newBusWithHandler(t)

	err := bus.Send(context.Background(), nil)
	require.Error(t, err, "Отправка nil-команды должна вызывать ошибку")
	assert.Contains(t, err.Error(), "'cmd'", "Текст ошибки должен называть параметр")
	assert.Equal(t, int64(0), calls.Load(), "Обработчик не должен вызываться для nil-команды")
}

// Тест отклонения nil-команды с результатом.
func TestBus_SendR_NilCommand(t *testing.T) {
	t.Parallel()

	bus, calls := newBusWithHandler(t)

	_, err := command.SendR[string](context.Background(), bus, nil)
	require.Error(t, err, "Отправка nil-команды должна вызывать ошибку")
	assert.Contains(t, err.Error(), "'cmd'", "Текст ошибки должен называть параметр")
	assert.Equal(t, int64(0), calls.Load(), "Обработчик не должен вызываться для nil-команды")
}

// Тест ошибки при отправке команды без зарегистрированного обработчика.
func TestBus_Send_HandlerNotFound(t *testing.T) {
	t.Parallel()

	bus := command.NewBus(container.New())

	err := bus.Send(context.Background(), testCommand{Value: "test"})
	require.Error(t, err, "Отправка команды без обработчика должна вызывать ошибку")
	assert.Contains(t, err.Error(), "не найден", "Текст ошибки должен сообщать об отсутствующем обработчике")
	assert.ErrorIs(t, err, container.ErrNotRegistered, "Ошибка должна сохранять причину из контейнера")
}

// Тест распространения ошибки обработчика без изменений.
func TestBus_Send_HandlerError(t *testing.T) {
	t.Parallel()

	c := container.New()
	handlerErr := errors.New("недостаточно средств")

	err := command.RegisterHandler(c, func(ctx context.Context, r container.Resolver) (command.Handler[testCommand], error) {
		return func(ctx context.Context, cmd testCommand) error {
			return handlerErr
		}, nil
	})
	require.NoError(t, err, "Регистрация обработчика не должна вызывать ошибку")

	bus := command.NewBus(c)
	err = bus.Send(context.Background(), testCommand{Value: "test"})

	require.Error(t, err, "Ошибка обработчика должна распространяться")
	assert.Same(t, handlerErr, err, "Ошибка обработчика должна возвращаться без оборачивания")
}

// Тест несовпадения типа результата при отправке через SendR.
func TestBus_SendR_ResultTypeMismatch(t *testing.T) {
	t.Parallel()

	c := container.New()
	err := command.RegisterHandlerR(c, func(ctx context.Context, r container.Resolver) (command.HandlerR[createOrderCommand, string], error) {
		return func(ctx context.Context, cmd createOrderCommand) (string, error) {
			return "order", nil
		}, nil
	})
	require.NoError(t, err, "Регистрация обработчика не должна вызывать ошибку")

	bus := command.NewBus(c)
	_, err = command.SendR[int](context.Background(), bus, createOrderCommand{ID: "42"})

	require.Error(t, err, "Несовпадение типа результата должно вызывать ошибку")
	assert.Contains(t, err.Error(), "неожиданный тип", "Текст ошибки должен сообщать о несовпадении типа результата")
}

// Тест ошибки при повторной регистрации обработчика для той же команды.
func TestRegisterHandler_AlreadyRegistered(t *testing.T) {
	t.Parallel()

	c := container.New()
	factory := func(ctx context.Context, r container.Resolver) (command.Handler[testCommand], error) {
		return func(ctx context.Context, cmd testCommand) error { return nil }, nil
	}

	require.NoError(t, command.RegisterHandler(c, factory), "Первая регистрация не должна вызывать ошибку")

	err := command.RegisterHandler(c, factory)
	require.Error(t, err, "Повторная регистрация должна вызывать ошибку")
	assert.ErrorIs(t, err, container.ErrAlreadyRegistered, "Ошибка должна быть ErrAlreadyRegistered")
}

// Тест singleton-обработчика: экземпляр разделяется между отправками.
func TestBus_Send_SingletonLifetime(t *testing.T) {
	t.Parallel()

	c := container.New()
	created := &atomic.Int64{}

	err := command.RegisterHandler(c, func(ctx context.Context, r container.Resolver) (command.Handler[testCommand], error) {
		created.Add(1)
		return func(ctx context.Context, cmd testCommand) error { return nil }, nil
	}, command.WithLifetime(container.Singleton))
	require.NoError(t, err, "Регистрация обработчика не должна вызывать ошибку")

	bus := command.NewBus(c)
	require.NoError(t, bus.Send(context.Background(), testCommand{}))
	require.NoError(t, bus.Send(context.Background(), testCommand{}))

	assert.Equal(t, int64(1), created.Load(), "Singleton-обработчик должен создаваться ровно один раз")
}

// Тест регистрации и разрешения шины как инфраструктурного контракта.
func TestRegisterBus_ResolveBus(t *testing.T) {
	t.Parallel()

	c := container.New()
	require.NoError(t, command.RegisterBus(c), "Регистрация шины не должна вызывать ошибку")

	bus, err := command.ResolveBus(context.Background(), c)
	require.NoError(t, err, "Разрешение шины не должно вызывать ошибку")
	require.NotNil(t, bus, "Шина не должна быть nil")
}
