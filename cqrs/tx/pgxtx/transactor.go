// Package pgxtx реализует менеджер транзакций tx.Transactor поверх пула
// соединений PostgreSQL (pgxpool). Обработчики и репозитории получают доступ
// к текущей транзакции через QuerierFromContext.
package pgxtx

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/x-research-team/cqrs-framework/cqrs/tx"
)

// Transactor реализует tx.Transactor поверх пула соединений PostgreSQL.
type Transactor struct {
	pool *pgxpool.Pool
}

// NewTransactor создает новый менеджер транзакций поверх пула.
func NewTransactor(pool *pgxpool.Pool) (*Transactor, error) {
	if pool == nil {
		return nil, errors.New("аргумент 'pool' обязателен: пул соединений не может быть nil")
	}
	return &Transactor{pool: pool}, nil
}

// Begin начинает новую транзакцию PostgreSQL с указанным уровнем изоляции.
func (t *Transactor) Begin(ctx context.Context, opts tx.Options) (tx.Tx, error) {
	pgxTx, err := t.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel: isoLevel(opts.Isolation),
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось начать транзакцию PostgreSQL: %w", err)
	}

	return &pgxTransaction{
		id: uuid.New(),
		tx: pgxTx,
	}, nil
}

// isoLevel отображает уровень изоляции на уровень изоляции pgx.
func isoLevel(level tx.IsolationLevel) pgx.TxIsoLevel {
	switch level {
	case tx.IsolationReadUncommitted:
		return pgx.ReadUncommitted
	case tx.IsolationReadCommitted:
		return pgx.ReadCommitted
	case tx.IsolationRepeatableRead:
		return pgx.RepeatableRead
	case tx.IsolationSerializable:
		return pgx.Serializable
	default:
		// Пустой уровень оставляет выбор за сервером PostgreSQL.
		return pgx.TxIsoLevel("")
	}
}

// pgxTransaction адаптирует pgx.Tx к контракту tx.Tx.
type pgxTransaction struct {
	id uuid.UUID
	tx pgx.Tx
}

// ID возвращает уникальный идентификатор транзакции.
func (t *pgxTransaction) ID() uuid.UUID {
	return t.id
}

// Commit фиксирует транзакцию.
func (t *pgxTransaction) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback откатывает транзакцию.
func (t *pgxTransaction) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// Unwrap возвращает нижележащую транзакцию pgx.
func (t *pgxTransaction) Unwrap() pgx.Tx {
	return t.tx
}
