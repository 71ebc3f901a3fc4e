package tx

import "time"

// IsolationLevel определяет уровень изоляции транзакции.
type IsolationLevel int

const (
	// IsolationDefault - уровень изоляции по умолчанию, выбранный менеджером транзакций.
	IsolationDefault IsolationLevel = iota
	// IsolationReadUncommitted - чтение незафиксированных данных.
	IsolationReadUncommitted
	// IsolationReadCommitted - чтение только зафиксированных данных.
	IsolationReadCommitted
	// IsolationRepeatableRead - повторяемое чтение.
	IsolationRepeatableRead
	// IsolationSerializable - сериализуемость, самый строгий уровень.
	IsolationSerializable
)

// String возвращает имя уровня изоляции.
func (l IsolationLevel) String() string {
	switch l {
	case IsolationReadUncommitted:
		return "read uncommitted"
	case IsolationReadCommitted:
		return "read committed"
	case IsolationRepeatableRead:
		return "repeatable read"
	case IsolationSerializable:
		return "serializable"
	default:
		return "default"
	}
}

// Propagation определяет поведение декоратора при наличии уже начатой
// транзакции в контексте вызова.
type Propagation int

const (
	// PropagationRequired - присоединиться к транзакции из контекста, если она
	// есть; иначе начать новую. Значение по умолчанию. При присоединении
	// фиксацию и откат выполняет владелец внешней транзакции.
	PropagationRequired Propagation = iota

	// PropagationRequiresNew - всегда начинать новую транзакцию, даже если в
	// контексте уже есть начатая.
	PropagationRequiresNew
)

// Options определяет параметры транзакции. Нулевое значение задает параметры
// по умолчанию: изоляция менеджера транзакций, без ограничения по времени,
// присоединение к существующей транзакции.
type Options struct {
	// Isolation - уровень изоляции транзакции.
	Isolation IsolationLevel

	// Timeout ограничивает длительность транзакции. Ноль - без ограничения.
	// Ограничение реализуется через контекст: обработчик обязан сам
	// наблюдать за отменой контекста.
	Timeout time.Duration

	// Propagation - поведение при наличии транзакции в контексте.
	Propagation Propagation
}
