package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-MarketplaceBooking/internal/domain"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO services \(id,professional_id,title,description,service_type,pricing_type,delivery_time_value,delivery_time_unit,price_in_cents,is_active\)`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	s, err := repo.Create(context.Background(), &domain.ServiceDescriptor{
		ProfessionalID:    uuid.New(),
		Title:             "Portrait session",
		ServiceType:       domain.ServiceTypeTimeBased,
		PricingType:       domain.PricingHourly,
		DeliveryTimeValue: 1,
		DeliveryTimeUnit:  domain.DeliveryHours,
		PriceInCents:      9000,
		IsActive:          true,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.Equal(t, now, s.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	repo, mock := newRepo(t)
	id, pro := uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM services WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(serviceColumns).AddRow(
			id.String(), pro.String(), "Portrait session", "One hour studio portrait session.",
			"TIME_BASED", "HOURLY", 1, "HOURS", int64(9000), true, now, now,
		))

	s, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, pro, s.ProfessionalID)
	assert.Equal(t, domain.ServiceTypeTimeBased, s.ServiceType)
	assert.Equal(t, domain.DeliveryHours, s.DeliveryTimeUnit)
	assert.Equal(t, int64(9000), s.PriceInCents)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery("SELECT .+ FROM services").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(`UPDATE services SET .+ updated_at = NOW\(\) WHERE id = \$9 RETURNING updated_at`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), &domain.ServiceDescriptor{ID: uuid.New()})
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepo(t)
	id := uuid.New()

	mock.ExpectExec(`DELETE FROM services WHERE id = \$1`).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), id))

	mock.ExpectExec("DELETE FROM services").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), id), ErrServiceNotFound)

	mock.ExpectExec("DELETE FROM services").WillReturnError(&pq.Error{Code: "23503"})
	assert.ErrorIs(t, repo.Delete(context.Background(), id), ErrHasBookings)
}
