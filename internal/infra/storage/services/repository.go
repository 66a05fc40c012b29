package services

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

const pqForeignKeyViolation = "23503"

var serviceColumns = []string{
	"id",
	"professional_id",
	"title",
	"description",
	"service_type",
	"pricing_type",
	"delivery_time_value",
	"delivery_time_unit",
	"price_in_cents",
	"is_active",
	"created_at",
	"updated_at",
}

// Repository репозиторий описаний услуг
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория услуг
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новую услугу
func (r *Repository) Create(ctx context.Context, s *domain.ServiceDescriptor) (*domain.ServiceDescriptor, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	query, args, err := psqlbuilder.Insert("services").
		Columns(serviceColumns[:10]...).
		Values(
			s.ID,
			s.ProfessionalID,
			s.Title,
			s.Description,
			s.ServiceType,
			s.PricingType,
			s.DeliveryTimeValue,
			s.DeliveryTimeUnit,
			s.PriceInCents,
			s.IsActive,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	return s, nil
}

// GetByID получает услугу по ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceDescriptor, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(serviceColumns...).
		From("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var s domain.ServiceDescriptor
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&s.ID,
		&s.ProfessionalID,
		&s.Title,
		&s.Description,
		&s.ServiceType,
		&s.PricingType,
		&s.DeliveryTimeValue,
		&s.DeliveryTimeUnit,
		&s.PriceInCents,
		&s.IsActive,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan service: %v", ErrScanRow, err)
	}

	return &s, nil
}

// Update перезаписывает изменяемые поля услуги.
// Бронирования хранят снимок цены, поэтому их не трогаем.
func (r *Repository) Update(ctx context.Context, s *domain.ServiceDescriptor) (*domain.ServiceDescriptor, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("services").
		Set("title", s.Title).
		Set("description", s.Description).
		Set("service_type", s.ServiceType).
		Set("pricing_type", s.PricingType).
		Set("delivery_time_value", s.DeliveryTimeValue).
		Set("delivery_time_unit", s.DeliveryTimeUnit).
		Set("price_in_cents", s.PriceInCents).
		Set("is_active", s.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": s.ID}).
		Suffix("RETURNING updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	return s, nil
}

// Delete удаляет услугу. Бронирования ссылаются на услугу через FK, поэтому
// услугу с любой историей бронирований удалить нельзя: ErrHasBookings.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("services").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return fmt.Errorf("%w: Delete: %v", ErrHasBookings, err)
		}
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrServiceNotFound
	}

	return nil
}
