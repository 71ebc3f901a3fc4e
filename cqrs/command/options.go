package command

import "github.com/x-research-team/cqrs-framework/cqrs/container"

// registerConfig содержит неэкспортируемую конфигурацию регистрации обработчика.
type registerConfig struct {
	lifetime container.Lifetime
}

// RegisterOption определяет тип для функциональных опций регистрации обработчика.
type RegisterOption func(*registerConfig)

// WithLifetime возвращает опцию, которая устанавливает время жизни обработчика.
// По умолчанию используется container.Transient.
func WithLifetime(lifetime container.Lifetime) RegisterOption {
	return func(c *registerConfig) {
		c.lifetime = lifetime
	}
}
