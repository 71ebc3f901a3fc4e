package container

import (
	"context"
	"sync"
)

// Scope - это явная область видимости для scoped-контрактов: кэш экземпляров
// на одну логическую единицу работы. Scope передается через контекст вызова
// и не должен переиспользоваться между конкурентными единицами работы.
type Scope struct {
	instances map[Key]any
	mu        sync.Mutex
}

// NewScope создает новую пустую область видимости.
func NewScope() *Scope {
	return &Scope{
		instances: make(map[Key]any),
	}
}

// resolve возвращает кэшированный экземпляр контракта или создает его через
// фабрику и кэширует. Кэш проверяется дважды: фабрика выполняется вне
// блокировки, чтобы она могла разрешать собственные scoped-зависимости через
// тот же Scope. При гонке конкурентных вызовов сохраняется экземпляр,
// записанный первым; проигравший экземпляр отбрасывается.
func (s *Scope) resolve(ctx context.Context, r Resolver, key Key, factory Factory) (any, error) {
	s.mu.Lock()
	if instance, ok := s.instances[key]; ok {
		s.mu.Unlock()
		return instance, nil
	}
	s.mu.Unlock()

	instance, err := factory(ctx, r)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.instances[key]; ok {
		return cached, nil
	}
	s.instances[key] = instance
	return instance, nil
}

// scopeContextKey - приватный тип ключа контекста для переноса Scope.
type scopeContextKey struct{}

// ContextWithScope возвращает контекст, несущий указанную область видимости.
func ContextWithScope(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, scopeContextKey{}, scope)
}

// ScopeFromContext извлекает область видимости из контекста.
// Возвращает nil, если область видимости не установлена.
func ScopeFromContext(ctx context.Context) *Scope {
	scope, _ := ctx.Value(scopeContextKey{}).(*Scope)
	return scope
}
