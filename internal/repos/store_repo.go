package repos

import (
	"github.com/jmoiron/sqlx"

	"quickclean/internal/domain"
)

type StoreRepo struct{ db *sqlx.DB }

func NewStoreRepo(db *sqlx.DB) *StoreRepo { return &StoreRepo{db: db} }

const storeCols = `id, name, location, address, active, created_at, updated_at`

func (r *StoreRepo) List() ([]domain.Store, error) {
	out := []domain.Store{}
	err := r.db.Select(&out, `
		SELECT `+storeCols+`
		FROM stores
		ORDER BY name
	`)
	return out, err
}

func (r *StoreRepo) Get(id string) (*domain.Store, error) {
	var s domain.Store
	err := r.db.Get(&s, r.db.Rebind(`SELECT `+storeCols+` FROM stores WHERE id = ?`), id)
	if isNoRows(err) {
		return nil, domain.NotFound("Store")
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ByName returns the oldest store carrying name. Names are unique by
// convention only.
func (r *StoreRepo) ByName(name string) (*domain.Store, error) {
	var s domain.Store
	err := r.db.Get(&s, r.db.Rebind(`
		SELECT `+storeCols+`
		FROM stores
		WHERE name = ?
		ORDER BY created_at
		LIMIT 1
	`), name)
	if isNoRows(err) {
		return nil, domain.NotFound("Store")
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StoreRepo) Create(s *domain.Store) error {
	s.ID = newID()
	s.CreatedAt = now()
	s.UpdatedAt = s.CreatedAt
	_, err := r.db.Exec(r.db.Rebind(`
		INSERT INTO stores(id, name, location, address, active, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)
	`), s.ID, s.Name, s.Location, s.Address, s.Active, s.CreatedAt, s.UpdatedAt)
	return err
}
