package container

// Lifetime определяет политику владения и переиспользования созданного
// экземпляра контракта.
type Lifetime int

const (
	// Transient - новый экземпляр при каждом разрешении. Значение по умолчанию.
	Transient Lifetime = iota

	// Scoped - один экземпляр на логическую единицу работы (Scope).
	Scoped

	// Singleton - один разделяемый экземпляр на контейнер. Экземпляр обязан
	// быть либо неизменяемым, либо внутренне потокобезопасным: контейнер не
	// добавляет никакой синхронизации поверх него.
	Singleton
)

// String возвращает имя политики времени жизни.
func (l Lifetime) String() string {
	switch l {
	case Scoped:
		return "scoped"
	case Singleton:
		return "singleton"
	default:
		return "transient"
	}
}
