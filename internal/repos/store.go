package repos

import "github.com/jmoiron/sqlx"

// RunAtomic executes fn inside one transaction. Every cross-entity write in
// the checkout and lifecycle flows goes through here: either all of fn's
// writes become visible or none do.
func RunAtomic(db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
