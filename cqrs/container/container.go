// Package container реализует минимальный контейнер внедрения зависимостей,
// на котором строится регистрация и разрешение обработчиков команд и запросов.
// Контейнер управляет временем жизни экземпляров (transient, scoped, singleton)
// и предоставляет примитив Decorate для перестроения графа фабрик без
// дублирования регистраций.
package container

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	// ErrNotRegistered возвращается при попытке разрешить незарегистрированный контракт.
	ErrNotRegistered = errors.New("контракт не зарегистрирован")

	// ErrAlreadyRegistered возвращается при попытке повторной регистрации контракта.
	ErrAlreadyRegistered = errors.New("контракт уже зарегистрирован")

	// ErrNilFactory возвращается при попытке зарегистрировать nil-фабрику.
	ErrNilFactory = errors.New("фабрика не может быть nil")

	// ErrNoScope возвращается при разрешении scoped-контракта вне области видимости.
	ErrNoScope = errors.New("для разрешения scoped-контракта требуется Scope в контексте")
)

// Key однозначно идентифицирует контракт в контейнере: семейство контрактов
// (например, "command" или "query") и тип сообщения, которым контракт
// параметризован.
type Key struct {
	Family string
	Type   reflect.Type
}

// String возвращает читаемое представление ключа для диагностики.
func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Family, k.Type)
}

// Factory создает экземпляр контракта. Фабрика получает Resolver для
// разрешения собственных зависимостей в рамках того же контекста.
type Factory func(ctx context.Context, r Resolver) (any, error)

// Resolver определяет контракт разрешения зависимостей по ключу.
type Resolver interface {
	Resolve(ctx context.Context, key Key) (any, error)
}

// registration хранит фабрику контракта и политику времени жизни.
// Кэш singleton-экземпляра привязан к регистрации: замена регистрации
// сбрасывает кэш. Ошибка фабрики не кэшируется: неудачное построение
// повторяется при следующем разрешении.
type registration struct {
	factory  Factory
	lifetime Lifetime

	mu       sync.Mutex
	instance any
	ready    bool
}

// Container - это потокобезопасный контейнер регистраций.
// Инвариант: на один ключ приходится не более одной активной регистрации;
// декорирование заменяет фабрику, а не добавляет вторую.
type Container struct {
	regs map[Key]*registration
	mu   sync.RWMutex
}

// New создает новый пустой контейнер.
func New() *Container {
	return &Container{
		regs: make(map[Key]*registration),
	}
}

// Register связывает ключ контракта с фабрикой и временем жизни.
// Возвращает ошибку, если контракт уже зарегистрирован.
func (c *Container) Register(key Key, factory Factory, lifetime Lifetime) error {
	if factory == nil {
		return fmt.Errorf("регистрация контракта '%s': %w", key, ErrNilFactory)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.regs[key]; exists {
		return fmt.Errorf("регистрация контракта '%s': %w", key, ErrAlreadyRegistered)
	}

	c.regs[key] = &registration{factory: factory, lifetime: lifetime}
	return nil
}

// Replace заменяет фабрику уже зарегистрированного контракта, сохраняя
// указанное время жизни. Возвращает ошибку, если контракт не зарегистрирован.
func (c *Container) Replace(key Key, factory Factory, lifetime Lifetime) error {
	if factory == nil {
		return fmt.Errorf("замена контракта '%s': %w", key, ErrNilFactory)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.regs[key]; !exists {
		return fmt.Errorf("замена контракта '%s': %w", key, ErrNotRegistered)
	}

	c.regs[key] = &registration{factory: factory, lifetime: lifetime}
	return nil
}

// Decorate перестраивает фабрику контракта: текущая фабрика передается в
// rewrap, а результат становится новой активной фабрикой. Время жизни
// контракта сохраняется. Это единственный примитив, который использует
// построитель цепочек декораторов.
func (c *Container) Decorate(key Key, rewrap func(base Factory) Factory) error {
	if rewrap == nil {
		return fmt.Errorf("декорирование контракта '%s': %w", key, ErrNilFactory)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	reg, exists := c.regs[key]
	if !exists {
		return fmt.Errorf("декорирование контракта '%s': %w", key, ErrNotRegistered)
	}

	c.regs[key] = &registration{factory: rewrap(reg.factory), lifetime: reg.lifetime}
	return nil
}

// Has сообщает, зарегистрирован ли контракт с указанным ключом.
func (c *Container) Has(key Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, exists := c.regs[key]
	return exists
}

// Keys возвращает ключи всех зарегистрированных контрактов указанного семейства.
func (c *Container) Keys(family string) []Key {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]Key, 0, len(c.regs))
	for key := range c.regs {
		if key.Family == family {
			keys = append(keys, key)
		}
	}
	return keys
}

// Lifetime возвращает время жизни зарегистрированного контракта.
func (c *Container) Lifetime(key Key) (Lifetime, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	reg, exists := c.regs[key]
	if !exists {
		return Transient, false
	}
	return reg.lifetime, true
}

// Resolve возвращает экземпляр контракта в соответствии с его временем жизни:
// singleton создается один раз и разделяется, scoped кэшируется в Scope из
// контекста, transient создается при каждом вызове.
func (c *Container) Resolve(ctx context.Context, key Key) (any, error) {
	c.mu.RLock()
	reg, exists := c.regs[key]
	c.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("разрешение контракта '%s': %w", key, ErrNotRegistered)
	}

	switch reg.lifetime {
	case Singleton:
		reg.mu.Lock()
		defer reg.mu.Unlock()

		if reg.ready {
			return reg.instance, nil
		}

		instance, err := reg.factory(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("разрешение контракта '%s': %w", key, err)
		}

		reg.instance = instance
		reg.ready = true
		return instance, nil

	case Scoped:
		scope := ScopeFromContext(ctx)
		if scope == nil {
			return nil, fmt.Errorf("разрешение контракта '%s': %w", key, ErrNoScope)
		}
		return scope.resolve(ctx, c, key, reg.factory)

	default:
		return reg.factory(ctx, c)
	}
}
