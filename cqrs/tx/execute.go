package tx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Execute выполняет функцию внутри новой транзакции с параметрами по
// умолчанию: фиксация при успешном завершении, откат при ошибке с возвратом
// исходной ошибки. Это вырожденный вариант транзакционного декоратора для
// кода вне шины команд.
func Execute(ctx context.Context, transactor Transactor, fn func(ctx context.Context) error) error {
	if fn == nil {
		return errors.New("аргумент 'fn' обязателен: функция не может быть nil")
	}

	t, err := transactor.Begin(ctx, Options{})
	if err != nil {
		return fmt.Errorf("не удалось начать транзакцию: %w", err)
	}

	if err := fn(ContextWithTx(ctx, t)); err != nil {
		if rbErr := t.Rollback(ctx); rbErr != nil {
			slog.Default().Error("ошибка отката транзакции",
				slog.String("tx_id", t.ID().String()),
				slog.Any("error", rbErr),
			)
		}
		// Исходная ошибка функции возвращается без изменений.
		return err
	}

	if err := t.Commit(ctx); err != nil {
		return fmt.Errorf("не удалось зафиксировать транзакцию: %w", err)
	}
	return nil
}
