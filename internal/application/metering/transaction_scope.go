package metering

import (
	"context"

	"github.com/estateops/backend/internal/domain/metering"
)

// TransactionScope provides transactional access to the meter repository.
// The exclusivity check and the meter write must observe and modify the
// registry atomically; running them in separate transactions would let two
// concurrent registrations both pass the check.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the metering repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// MeterRepo returns the meter repository scoped to the current transaction
	MeterRepo() metering.MeterRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests and for stores without transaction support.
type NoOpTransactionScope struct {
	meterRepo metering.MeterRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repository
func NewNoOpTransactionScope(meterRepo metering.MeterRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{meterRepo: meterRepo}
}

// Execute runs the function directly without a transaction
func (s *NoOpTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// MeterRepo returns the wrapped meter repository
func (s *NoOpTransactionScope) MeterRepo() metering.MeterRepository {
	return s.meterRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
