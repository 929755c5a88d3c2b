package util

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
)

type TransactionCallback func(*sqlx.Tx) error

func Transaction(ctx context.Context, db *sqlx.DB, cb TransactionCallback) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	if err := cb(tx); err != nil {
		if err2 := tx.Rollback(); err2 != nil {
			return errors.Wrapf(err, "rollback error: %s", err2)
		}

		return err
	}

	return tx.Commit()
}
