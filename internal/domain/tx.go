package domain

import "context"

// Tx exposes the repositories bound to one open database transaction.
type Tx interface {
	Events() EventRepository
	Availabilities() AvailabilityRepository
}

// TxManager runs a function inside a single atomic transaction: either every
// write made through the Tx commits, or none do. If fn returns an error the
// transaction is rolled back and that error is returned; otherwise the
// transaction is committed and any commit error is returned.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}
