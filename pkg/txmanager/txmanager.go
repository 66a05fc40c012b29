package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-MarketplaceBooking/pkg/dbmetrics"
)

var (
	// ErrBeginTx не удалось открыть транзакцию
	ErrBeginTx = errors.New("txmanager: failed to begin transaction")

	// ErrCommitTx не удалось зафиксировать транзакцию
	ErrCommitTx = errors.New("txmanager: failed to commit transaction")

	// ErrSerializationFailure postgres отклонил транзакцию (SQLSTATE 40001 или 40P01)
	ErrSerializationFailure = errors.New("txmanager: serialization failure")
)

// TxBeginner источник транзакций. Реализуется *dbmetrics.DB.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// TransactionManager выполняет функцию в транзакции, переданной через контекст
type TransactionManager struct {
	db TxBeginner
}

// NewTransactionManager создает менеджер транзакций
func NewTransactionManager(db TxBeginner) *TransactionManager {
	return &TransactionManager{db: db}
}

// Do выполняет fn в транзакции READ COMMITTED
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

// DoSerializable выполняет fn в транзакции SERIALIZABLE.
// Повторов нет: ErrSerializationFailure возвращается вызывающему.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
}

// DoReadOnly выполняет fn в read-only транзакции
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted, ReadOnly: true}, fn)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	// Вложенный вызов присоединяется к внешней транзакции
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBeginTx, err)
	}

	return Run(ctx, tx, fn)
}

// Run выполняет fn в уже открытой транзакции tx: commit при успехе, rollback при ошибке или панике
func Run(ctx context.Context, tx dbmetrics.TxExecutor, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return classify(err)
	}

	if err = tx.Commit(); err != nil {
		if IsSerializationFailure(err) {
			return fmt.Errorf("%w: commit: %v", ErrSerializationFailure, err)
		}
		return fmt.Errorf("%w: %v", ErrCommitTx, err)
	}

	return nil
}

// IsSerializationFailure проверяет SQLSTATE 40001 (serialization_failure) и 40P01 (deadlock_detected)
func IsSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "40001" || pqErr.Code == "40P01"
}

// classify добавляет ErrSerializationFailure к ошибкам fn, за которыми стоит конфликт сериализации.
// Исходная цепочка ошибок сохраняется.
func classify(err error) error {
	if errors.Is(err, ErrSerializationFailure) || !IsSerializationFailure(err) {
		return err
	}
	return errors.Join(ErrSerializationFailure, err)
}
