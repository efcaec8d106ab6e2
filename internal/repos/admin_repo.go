package repos

import (
	"strings"

	"github.com/jmoiron/sqlx"

	"quickclean/internal/domain"
)

type AdminRepo struct{ DB *sqlx.DB }

func NewAdminRepo(db *sqlx.DB) *AdminRepo { return &AdminRepo{DB: db} }

const adminCols = `id, username, password_hash, role, whatsapp_number, last_login`

func (r *AdminRepo) ByUsername(username string) (*domain.Admin, error) {
	var a domain.Admin
	err := r.DB.Get(&a, r.DB.Rebind(`SELECT `+adminCols+` FROM admins WHERE username = ?`), strings.ToLower(strings.TrimSpace(username)))
	if isNoRows(err) {
		return nil, domain.NotFound("Admin")
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdminRepo) ByID(id string) (*domain.Admin, error) {
	var a domain.Admin
	err := r.DB.Get(&a, r.DB.Rebind(`SELECT `+adminCols+` FROM admins WHERE id = ?`), id)
	if isNoRows(err) {
		return nil, domain.NotFound("Admin")
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdminRepo) TouchLogin(id string) error {
	ts := now()
	_, err := r.DB.Exec(r.DB.Rebind(`UPDATE admins SET last_login = ?, updated_at = ? WHERE id = ?`), ts, ts, id)
	return err
}

// SetWhatsApp updates the contact number and returns the updated admin.
func (r *AdminRepo) SetWhatsApp(username, number string) (*domain.Admin, error) {
	var a domain.Admin
	err := r.DB.Get(&a, r.DB.Rebind(`
		UPDATE admins SET whatsapp_number = ?, updated_at = ?
		WHERE username = ?
		RETURNING `+adminCols), number, now(), strings.ToLower(strings.TrimSpace(username)))
	if isNoRows(err) {
		return nil, domain.NotFound("Admin")
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
