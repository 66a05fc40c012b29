package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotNotAvailable возвращается, когда интервал пересекается с активным бронированием (exclusion constraint)
	ErrSlotNotAvailable = errors.New("booking.repository: slot not available")

	// ErrDuplicateIdempotencyKey возвращается, когда бронирование с этим ключом идемпотентности уже есть
	ErrDuplicateIdempotencyKey = errors.New("booking.repository: duplicate idempotency key")

	// ErrStatusChanged возвращается, когда статус изменился между чтением и обновлением
	ErrStatusChanged = errors.New("booking.repository: status changed concurrently")

	// ErrSerialization возвращается, когда postgres отменил транзакцию из-за конфликта сериализации
	ErrSerialization = errors.New("booking.repository: serialization failure")

	// ErrTransaction возвращается, когда метод требует транзакцию, а её нет в контексте
	ErrTransaction = errors.New("booking.repository: transaction required")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)
