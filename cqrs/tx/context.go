package tx

import "context"

// txContextKey - приватный тип ключа контекста для переноса транзакции.
type txContextKey struct{}

// ContextWithTx возвращает контекст, несущий указанную транзакцию.
// Вложенный код (репозитории, обработчики) извлекает ее через FromContext
// и включает свои операции в ту же транзакцию.
func ContextWithTx(ctx context.Context, t Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, t)
}

// FromContext извлекает транзакцию из контекста.
func FromContext(ctx context.Context) (Tx, bool) {
	t, ok := ctx.Value(txContextKey{}).(Tx)
	return t, ok
}
