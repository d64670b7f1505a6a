// tx.go — withTx: a CommitGuard-style transaction helper. The wrapped
// function returns an error (or calls guard.setRollback()) to abort; otherwise
// the transaction commits when fn returns.
package storage

import "database/sql"

// txGuard lets fn explicitly request a rollback without returning an error,
// mirroring CommitGuard::setRollback.
type txGuard struct {
	tx       *sql.Tx
	rollback bool
}

// setRollback marks the transaction to be rolled back instead of committed.
func (g *txGuard) setRollback() {
	g.rollback = true
}

// withTx begins a transaction on db, runs fn, and commits unless fn returns
// an error, calls guard.setRollback(), or panics.
func withTx(db *sql.DB, fn func(guard *txGuard, tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	guard := &txGuard{tx: tx}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(guard, tx); err != nil {
		tx.Rollback()
		return err
	}
	if guard.rollback {
		return tx.Rollback()
	}
	return tx.Commit()
}
