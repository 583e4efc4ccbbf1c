package aggregates

import (
	"context"

	"gorm.io/gorm"

	domainagg "github.com/quildacademy/quild-backend/internal/domain/aggregates"
	"github.com/quildacademy/quild-backend/internal/platform/dbctx"
)

const txOp = "aggregates.tx"

// TxRunner opens the transaction that ledger writes and curriculum seeding run
// in. fn returning an error rolls everything back.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewGormTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, txOp, "no database configured for writes", nil)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}
