// Package module предоставляет построитель для массовой регистрации
// обработчиков команд и запросов. Вместо сканирования загруженных двоичных
// файлов через рефлексию модуль - это явный, перечислимый список
// обработчиков, который приложение заполняет при старте и применяет к
// контейнеру одним вызовом.
package module

import (
	"errors"

	"github.com/x-research-team/cqrs-framework/cqrs/command"
	"github.com/x-research-team/cqrs-framework/cqrs/container"
	"github.com/x-research-team/cqrs-framework/cqrs/query"
)

// Module накапливает регистрации обработчиков до применения к контейнеру.
// Module не является потокобезопасным: он заполняется и применяется в одном
// потоке при старте приложения.
type Module struct {
	registrations []func(c *container.Container) error
}

// New создает новый пустой модуль.
func New() *Module {
	return &Module{}
}

// AddCommandHandler добавляет в модуль регистрацию обработчика команды C без результата.
func AddCommandHandler[C any](m *Module, factory command.HandlerFactory[C], opts ...command.RegisterOption) *Module {
	m.registrations = append(m.registrations, func(c *container.Container) error {
		return command.RegisterHandler(c, factory, opts...)
	})
	return m
}

// AddCommandHandlerR добавляет в модуль регистрацию обработчика команды C с результатом R.
func AddCommandHandlerR[C any, R any](m *Module, factory command.HandlerFactoryR[C, R], opts ...command.RegisterOption) *Module {
	m.registrations = append(m.registrations, func(c *container.Container) error {
		return command.RegisterHandlerR(c, factory, opts...)
	})
	return m
}

// AddQueryHandler добавляет в модуль регистрацию обработчика запроса Q с результатом R.
func AddQueryHandler[Q any, R any](m *Module, factory query.HandlerFactory[Q, R], opts ...query.RegisterOption) *Module {
	m.registrations = append(m.registrations, func(c *container.Container) error {
		return query.RegisterHandler(c, factory, opts...)
	})
	return m
}

// Apply регистрирует все накопленные обработчики в контейнере.
// Первая ошибка прерывает применение; уже выполненные регистрации остаются.
func (m *Module) Apply(c *container.Container) error {
	if c == nil {
		return errors.New("аргумент 'c' обязателен: контейнер не может быть nil")
	}

	for _, register := range m.registrations {
		if err := register(c); err != nil {
			return err
		}
	}
	return nil
}
