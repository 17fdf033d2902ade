package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"whenworks/internal/domain"
)

type txManager struct {
	DB *sql.DB
}

// NewTxManager returns a domain.TxManager that opens one database/sql
// transaction per unit of work.
func NewTxManager(db *sql.DB) domain.TxManager {
	return &txManager{DB: db}
}

// tx bundles the repositories bound to one open transaction.
type tx struct {
	events         domain.EventRepository
	availabilities domain.AvailabilityRepository
}

func (t *tx) Events() domain.EventRepository                 { return t.events }
func (t *tx) Availabilities() domain.AvailabilityRepository { return t.availabilities }

func (m *txManager) WithinTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	sqlTx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(&tx{
		events:         NewEventRepository(sqlTx),
		availabilities: NewAvailabilityRepository(sqlTx),
	}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rollback transaction: %w", rbErr))
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
