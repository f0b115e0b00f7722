package persistence

import (
	"context"

	"gorm.io/gorm"

	appmetering "github.com/estateops/backend/internal/application/metering"
	"github.com/estateops/backend/internal/domain/metering"
)

// GormMeteringTransactionScope implements the metering transaction scope
// using GORM transactions. The exclusivity check and the meter write run
// against the same transaction.
type GormMeteringTransactionScope struct {
	db *gorm.DB
}

// NewGormMeteringTransactionScope creates a new GormMeteringTransactionScope
func NewGormMeteringTransactionScope(db *gorm.DB) *GormMeteringTransactionScope {
	return &GormMeteringTransactionScope{db: db}
}

var _ appmetering.TransactionScope = (*GormMeteringTransactionScope)(nil)

// Execute runs the given function within a database transaction
func (s *GormMeteringTransactionScope) Execute(ctx context.Context, fn func(repos appmetering.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormMeteringTxRepositories{tx: tx})
	})
}

type gormMeteringTxRepositories struct {
	tx *gorm.DB
}

func (r *gormMeteringTxRepositories) MeterRepo() metering.MeterRepository {
	return NewGormMeterRepository(r.tx)
}
