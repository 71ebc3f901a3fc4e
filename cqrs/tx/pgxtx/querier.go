package pgxtx

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/x-research-team/cqrs-framework/cqrs/tx"
)

// Querier определяет интерфейс, который абстрагирует выполнение SQL-запросов.
// Он совместим как с *pgxpool.Pool, так и с pgx.Tx, что позволяет выполнять
// запросы как в рамках транзакции, так и без нее.
type Querier interface {
	// Exec выполняет SQL-запрос, который не возвращает строк.
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)

	// Query выполняет SQL-запрос и возвращает результат в виде pgx.Rows.
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)

	// QueryRow выполняет SQL-запрос и возвращает одну строку результата.
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// unwrapper предоставляет доступ к нижележащей транзакции pgx.
type unwrapper interface {
	Unwrap() pgx.Tx
}

// QuerierFromContext возвращает Querier для текущего вызова: транзакцию из
// контекста, если она была начата этим пакетом, иначе пул соединений.
// Так репозитории включают свои операции в транзакцию декоратора, не зная
// о ее существовании.
func QuerierFromContext(ctx context.Context, pool *pgxpool.Pool) Querier {
	if t, ok := tx.FromContext(ctx); ok {
		if u, ok := t.(unwrapper); ok {
			return u.Unwrap()
		}
	}
	return pool
}
