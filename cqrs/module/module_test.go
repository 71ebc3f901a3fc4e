package module_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-research-team/cqrs-framework/cqrs/command"
	"github.com/x-research-team/cqrs-framework/cqrs/container"
	"github.com/x-research-team/cqrs-framework/cqrs/module"
	"github.com/x-research-team/cqrs-framework/cqrs/query"
)

// Тестовая команда без результата.
type pingCommand struct{}

// Тестовая команда с результатом.
type echoCommand struct {
	Text string
}

// Тестовый запрос.
type versionQuery struct{}

// Тест массовой регистрации: модуль регистрирует обработчики команд и
// запросов одним применением.
func TestModule_Apply(t *testing.T) {
	t.Parallel()

	pinged := false

	m := module.New()
	module.AddCommandHandler(m, func(ctx context.Context, r container.Resolver) (command.Handler[pingCommand], error) {
		return func(ctx context.Context, cmd pingCommand) error {
			pinged = true
			return nil
		}, nil
	})
	module.AddCommandHandlerR(m, func(ctx context.Context, r container.Resolver) (command.HandlerR[echoCommand, string], error) {
		return func(ctx context.Context, cmd echoCommand) (string, error) {
			return cmd.Text, nil
		}, nil
	})
	module.AddQueryHandler(m, func(ctx context.Context, r container.Resolver) (query.Handler[versionQuery, string], error) {
		return func(ctx context.Context, q versionQuery) (string, error) {
			return "1.0.0", nil
		}, nil
	})

	c := container.New()
	require.NoError(t, m.Apply(c), "Применение модуля не должно вызывать ошибку")

	bus := command.NewBus(c)
	require.NoError(t, bus.Send(context.Background(), pingCommand{}), "Отправка команды не должна вызывать ошибку")
	assert.True(t, pinged, "Обработчик команды должен быть вызван")

	echoed, err := command.SendR[string](context.Background(), bus, echoCommand{Text: "hello"})
	require.NoError(t, err, "Отправка команды с результатом не должна вызывать ошибку")
	assert.Equal(t, "hello", echoed, "Результат команды некорректен")

	processor := query.NewProcessor(c)
	version, err := query.Process[string](context.Background(), processor, versionQuery{})
	require.NoError(t, err, "Выполнение запроса не должно вызывать ошибку")
	assert.Equal(t, "1.0.0", version, "Результат запроса некорректен")
}

// Тест применения модуля с конфликтующей регистрацией: первая ошибка
// прерывает применение.
func TestModule_Apply_Duplicate(t *testing.T) {
	t.Parallel()

	factory := func(ctx context.Context, r container.Resolver) (command.Handler[pingCommand], error) {
		return func(ctx context.Context, cmd pingCommand) error { return nil }, nil
	}

	m := module.New()
	module.AddCommandHandler(m, factory)
	module.AddCommandHandler(m, factory)

	err := m.Apply(container.New())
	require.Error(t, err, "Конфликт регистраций должен вызывать ошибку")
	assert.ErrorIs(t, err, container.ErrAlreadyRegistered, "Ошибка должна быть ErrAlreadyRegistered")
}

// Тест применения модуля к nil-контейнеру.
func TestModule_Apply_NilContainer(t *testing.T) {
	t.Parallel()

	err := module.New().Apply(nil)
	require.Error(t, err, "Применение к nil-контейнеру должно вызывать ошибку")
	assert.Contains(t, err.Error(), "'c'", "Текст ошибки должен называть параметр")
}
