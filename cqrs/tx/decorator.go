package tx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/x-research-team/cqrs-framework/cqrs/command"
)

// Decorator реализует command.Decorator: оборачивает обработчик команды в
// транзакцию. Машина состояний на один вызов: начать - выполнить - при успехе
// зафиксировать, при ошибке откатить и вернуть исходную ошибку без изменений.
// Повторов и частичной фиксации нет.
type Decorator struct {
	transactor Transactor
	opts       Options
	logger     *slog.Logger
}

// NewDecorator создает транзакционный декоратор с параметрами по умолчанию.
func NewDecorator(transactor Transactor) *Decorator {
	return NewDecoratorWithOptions(transactor, Options{}, nil)
}

// NewDecoratorWithOptions создает транзакционный декоратор с указанными
// параметрами транзакции. Если logger равен nil, используется slog.Default().
func NewDecoratorWithOptions(transactor Transactor, opts Options, logger *slog.Logger) *Decorator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decorator{
		transactor: transactor,
		opts:       opts,
		logger:     logger,
	}
}

// Wrap оборачивает обработчик для добавления транзакционной логики.
func (d *Decorator) Wrap(next command.Invoker) command.Invoker {
	return &txInvoker{
		next:       next,
		transactor: d.transactor,
		opts:       d.opts,
		logger:     d.logger,
	}
}

// txInvoker - это обертка над обработчиком команд, которая управляет транзакцией.
type txInvoker struct {
	next       command.Invoker
	transactor Transactor
	opts       Options
	logger     *slog.Logger
}

// Invoke выполняет обработчик внутри транзакции. Nil-команда отклоняется до
// того, как транзакция будет начата. Две конкурентные отправки никогда не
// разделяют транзакцию: каждая начинает и завершает собственную.
func (p *txInvoker) Invoke(ctx context.Context, cmd any) (any, error) {
	if cmd == nil {
		return nil, errors.New("аргумент 'cmd' обязателен: команда не может быть nil")
	}

	// Ограничение по времени действует на вызов целиком, включая
	// присоединение к уже начатой транзакции.
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	if p.opts.Propagation == PropagationRequired {
		if _, ok := FromContext(ctx); ok {
			// Присоединяемся к уже начатой транзакции: фиксацию и откат
			// выполняет ее владелец.
			return p.next.Invoke(ctx, cmd)
		}
	}

	t, err := p.transactor.Begin(ctx, p.opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось начать транзакцию: %w", err)
	}

	result, err := p.next.Invoke(ContextWithTx(ctx, t), cmd)
	if err != nil {
		if rbErr := t.Rollback(ctx); rbErr != nil {
			p.logger.Error("ошибка отката транзакции",
				slog.String("tx_id", t.ID().String()),
				slog.Any("error", rbErr),
			)
		}
		// Исходная ошибка обработчика возвращается без изменений.
		return nil, err
	}

	if err := t.Commit(ctx); err != nil {
		return nil, fmt.Errorf("не удалось зафиксировать транзакцию: %w", err)
	}
	return result, nil
}
