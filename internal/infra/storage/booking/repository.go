package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-MarketplaceBooking/pkg/psqlbuilder"
)

const (
	pqExclusionViolation   = "23P01"
	pqUniqueViolation      = "23505"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

var bookingColumns = []string{
	"id",
	"client_id",
	"professional_id",
	"service_id",
	"booking_start_time",
	"booking_end_time",
	"status",
	"amount_paid_in_cents",
	"notes",
	"payment_reference",
	"idempotency_key",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Пересечение с активным бронированием того же специалиста отсекается
// exclusion constraint'ом и возвращается как ErrSlotNotAvailable.
// Повтор ключа идемпотентности возвращается как ErrDuplicateIdempotencyKey.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"id",
			"client_id",
			"professional_id",
			"service_id",
			"booking_start_time",
			"booking_end_time",
			"status",
			"amount_paid_in_cents",
			"notes",
			"payment_reference",
			"idempotency_key",
		).
		Values(
			booking.ID,
			booking.ClientID,
			booking.ProfessionalID,
			booking.ServiceID,
			booking.BookingStartTime,
			booking.BookingEndTime,
			booking.Status,
			booking.AmountPaidInCents,
			booking.Notes,
			booking.PaymentReference,
			booking.IdempotencyKey,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err != nil {
		if mapped := mapPQError(err); mapped != nil {
			return nil, fmt.Errorf("%w: Create: %v", mapped, err)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetByIdempotencyKey получает бронирование, созданное с ключом идемпотентности
func (r *Repository) GetByIdempotencyKey(ctx context.Context, key uuid.UUID) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"idempotency_key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByIdempotencyKey - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByIdempotencyKey - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetByProfessionalWithFilter получает бронирования специалиста, пересекающие период [From, To).
// Без явных статусов возвращает только активные.
// Внутри транзакции строки блокируются FOR UPDATE.
func (r *Repository) GetByProfessionalWithFilter(ctx context.Context, filter domain.ProfessionalBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = domain.ActiveStatuses
	}

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"professional_id": filter.ProfessionalID}).
		Where(squirrel.Eq{"status": domain.StatusStrings(statuses)})

	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"booking_start_time": *filter.To})
	}
	if filter.From != nil {
		// Бронирование без окончания - точка в момент начала
		selectBuilder = selectBuilder.Where(squirrel.Or{
			squirrel.Gt{"booking_end_time": *filter.From},
			squirrel.And{
				squirrel.Eq{"booking_end_time": nil},
				squirrel.GtOrEq{"booking_start_time": *filter.From},
			},
		})
	}

	selectBuilder = selectBuilder.OrderBy("booking_start_time ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProfessionalWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProfessionalWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// GetByParticipant получает бронирования, где пользователь клиент или специалист
// Опционально фильтрует по статусу
func (r *Repository) GetByParticipant(ctx context.Context, filter domain.ParticipantBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Or{
			squirrel.Eq{"client_id": filter.UserID},
			squirrel.Eq{"professional_id": filter.UserID},
		}).
		OrderBy("booking_start_time DESC")

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByParticipant - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByParticipant - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// UpdateStatus меняет статус только если текущий статус равен from (compare-and-set).
// Проигравший гонку получает ErrStatusChanged. Остальные поля не меняются.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if mapped := mapPQError(err); mapped != nil {
			return fmt.Errorf("%w: UpdateStatus: %v", mapped, err)
		}
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrStatusChanged
	}

	return nil
}

// LockProfessionalCalendar берет транзакционную advisory-блокировку на календарь специалиста.
// Блокировка выстраивает писателей одного специалиста в очередь, но не делает
// их коммиты видимыми: снимок SERIALIZABLE транзакции уже взят. Пересечение
// надежно отсекают exclusion constraint и откат сериализации.
// Блокировка снимается при commit/rollback. Вне транзакции возвращает ErrTransaction.
func (r *Repository) LockProfessionalCalendar(ctx context.Context, professionalID uuid.UUID) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	_, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", professionalID.String())
	if err != nil {
		if mapped := mapPQError(err); mapped != nil {
			return fmt.Errorf("%w: LockProfessionalCalendar: %v", mapped, err)
		}
		return fmt.Errorf("%w: LockProfessionalCalendar: %v", ErrExecQuery, err)
	}

	return nil
}

// HasActiveByService проверяет наличие активных бронирований услуги
func (r *Repository) HasActiveByService(ctx context.Context, serviceID uuid.UUID) (bool, error) {
	return r.existsActive(ctx, "HasActiveByService", squirrel.Eq{"service_id": serviceID})
}

// HasActiveByProfessional проверяет наличие активных бронирований у специалиста
func (r *Repository) HasActiveByProfessional(ctx context.Context, professionalID uuid.UUID) (bool, error) {
	return r.existsActive(ctx, "HasActiveByProfessional", squirrel.Eq{"professional_id": professionalID})
}

func (r *Repository) existsActive(ctx context.Context, op string, pred squirrel.Eq) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("1").
		Prefix("SELECT EXISTS (").
		From("bookings").
		Where(pred).
		Where(squirrel.Eq{"status": domain.StatusStrings(domain.ActiveStatuses)}).
		Suffix(")").
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: %s - build exists query: %v", ErrBuildQuery, op, err)
	}

	var exists bool
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: %s - scan exists: %v", ErrScanRow, op, err)
	}

	return exists, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.ClientID,
		&booking.ProfessionalID,
		&booking.ServiceID,
		&booking.BookingStartTime,
		&booking.BookingEndTime,
		&booking.Status,
		&booking.AmountPaidInCents,
		&booking.Notes,
		&booking.PaymentReference,
		&booking.IdempotencyKey,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

// mapPQError переводит коды postgres в ошибки репозитория. nil - код не распознан.
func mapPQError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch pqErr.Code {
	case pqExclusionViolation:
		return ErrSlotNotAvailable
	case pqUniqueViolation:
		if pqErr.Constraint == "bookings_idempotency_key_key" {
			return ErrDuplicateIdempotencyKey
		}
	case pqSerializationFailure, pqDeadlockDetected:
		return ErrSerialization
	}
	return nil
}
