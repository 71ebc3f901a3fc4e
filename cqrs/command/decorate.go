package command

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/x-research-team/cqrs-framework/cqrs/container"
)

// DecorateAllHandlers оборачивает каждый зарегистрированный на данный момент
// обработчик команд указанной цепочкой декораторов. Операция глобальна и
// ретроактивна: она применяется ко всем существующим регистрациям семейства
// команд и не создает регистраций для команд без обработчиков.
//
// Каждый элемент decorators обязан быть Decorator или DecoratorFactory.
// Структурная проверка выполняется до какого-либо изменения контейнера:
// недопустимый элемент приводит к немедленной ошибке, и ни одна регистрация
// не затрагивается.
//
// Порядок значим: декоратор с индексом 0 становится самым внутренним
// (ближайшим к базовому обработчику), последний - самым внешним и
// вызывается первым. Время жизни базового обработчика распространяется
// на всю цепочку.
func DecorateAllHandlers(c *container.Container, decorators ...any) error {
	factories, err := validateDecorators(decorators)
	if err != nil {
		return err
	}

	for _, key := range c.Keys(Family) {
		if err := c.Decorate(key, func(base container.Factory) container.Factory {
			return decoratedFactory(base, factories)
		}); err != nil {
			return err
		}
	}
	return nil
}

// validateDecorators выполняет структурную проверку декораторов и нормализует
// их к виду фабрик. Проверка выполняется один раз на вызов декорирования,
// а не на каждый контракт.
func validateDecorators(decorators []any) ([]DecoratorFactory, error) {
	factories := make([]DecoratorFactory, 0, len(decorators))

	for i, d := range decorators {
		switch v := d.(type) {
		case nil:
			return nil, fmt.Errorf("недопустимый декоратор на позиции %d: значение nil", i)
		case Decorator:
			decorator := v
			factories = append(factories, func(ctx context.Context, r container.Resolver) (Decorator, error) {
				return decorator, nil
			})
		case DecoratorFactory:
			if v == nil {
				return nil, fmt.Errorf("недопустимый декоратор на позиции %d: фабрика nil", i)
			}
			factories = append(factories, v)
		default:
			return nil, fmt.Errorf("недопустимый декоратор на позиции %d: тип %s не реализует command.Decorator",
				i, reflect.TypeOf(d))
		}
	}
	return factories, nil
}

// decoratedFactory строит фабрику, которая создает базовый обработчик и
// оборачивает его цепочкой декораторов в порядке возрастания индекса.
func decoratedFactory(base container.Factory, factories []DecoratorFactory) container.Factory {
	return func(ctx context.Context, r container.Resolver) (any, error) {
		resolved, err := base(ctx, r)
		if err != nil {
			return nil, err
		}

		invoker, ok := resolved.(Invoker)
		if !ok {
			return nil, fmt.Errorf("декорируемая регистрация не является обработчиком команды: %T", resolved)
		}

		for _, factory := range factories {
			decorator, err := factory(ctx, r)
			if err != nil {
				return nil, fmt.Errorf("не удалось создать декоратор команды: %w", err)
			}
			if decorator == nil {
				return nil, errors.New("фабрика декоратора команды вернула nil")
			}
			invoker = decorator.Wrap(invoker)
		}
		return invoker, nil
	}
}
