package repos

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dikaproject/dk-mandiri-backend/internal/domain"
)

type AddressRepo struct{ db *sqlx.DB }

func NewAddressRepo(db *sqlx.DB) *AddressRepo { return &AddressRepo{db: db} }

const addressCols = `
  id, user_id, recipient_name, phone, province, city, district,
  postal_code, full_address, is_primary`

// GetOwned resolves an address only when it belongs to the user; a foreign
// address reads the same as a missing one.
func (r *AddressRepo) GetOwned(id, userID string) (domain.Address, error) {
	var a domain.Address
	err := r.db.Get(&a, `SELECT `+addressCols+` FROM addresses WHERE id = ? AND user_id = ?`, id, userID)
	return a, err
}

func (r *AddressRepo) ListByUser(userID string) ([]domain.Address, error) {
	var out []domain.Address
	err := r.db.Select(&out, `
	  SELECT `+addressCols+` FROM addresses
	  WHERE user_id = ?
	  ORDER BY is_primary DESC`, userID)
	return out, err
}

func (r *AddressRepo) Create(a *domain.Address) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	// First address for a user becomes primary; an explicit primary demotes
	// the others.
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.Get(&n, `SELECT COUNT(*) FROM addresses WHERE user_id = ?`, a.UserID); err != nil {
		return err
	}
	if n == 0 {
		a.IsPrimary = true
	} else if a.IsPrimary {
		if _, err := tx.Exec(`UPDATE addresses SET is_primary = 0 WHERE user_id = ?`, a.UserID); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO addresses(id, user_id, recipient_name, phone, province, city, district, postal_code, full_address, is_primary)
		VALUES(?,?,?,?,?,?,?,?,?,?)
	`, a.ID, a.UserID, a.RecipientName, a.Phone, a.Province, a.City, a.District, a.PostalCode, a.FullAddress, a.IsPrimary); err != nil {
		return err
	}
	return tx.Commit()
}
