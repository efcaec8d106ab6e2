package repos

import (
	"strings"

	"github.com/jmoiron/sqlx"

	"quickclean/internal/domain"
)

type ServiceRepo struct{ db *sqlx.DB }

func NewServiceRepo(db *sqlx.DB) *ServiceRepo { return &ServiceRepo{db: db} }

const serviceCols = `id, name, price, description, is_active, icon, created_at, updated_at`

type ServicePatch struct {
	Price       *float64
	IsActive    *bool
	Description *string
}

func (r *ServiceRepo) List() ([]domain.Service, error) {
	out := []domain.Service{}
	err := r.db.Select(&out, `SELECT `+serviceCols+` FROM services ORDER BY name`)
	return out, err
}

func (r *ServiceRepo) ByName(name string) (*domain.Service, error) {
	var s domain.Service
	err := r.db.Get(&s, r.db.Rebind(`SELECT `+serviceCols+` FROM services WHERE name = ?`), name)
	if isNoRows(err) {
		return nil, domain.NotFound("Service")
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts s, returning domain.ErrConflict when the name is taken.
func (r *ServiceRepo) Create(s *domain.Service) error {
	s.ID = newID()
	s.CreatedAt = now()
	s.UpdatedAt = s.CreatedAt
	if s.Icon == "" {
		s.Icon = "MdCleaningServices"
	}
	res, err := r.db.Exec(r.db.Rebind(`
		INSERT INTO services(id, name, price, description, is_active, icon, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`), s.ID, s.Name, s.Price, s.Description, s.IsActive, s.Icon, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *ServiceRepo) Update(id string, patch ServicePatch) (*domain.Service, error) {
	sets := []string{"updated_at = ?"}
	args := []any{now()}
	if patch.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *patch.Price)
	}
	if patch.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *patch.IsActive)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	args = append(args, id)

	var s domain.Service
	err := r.db.Get(&s, r.db.Rebind(`
		UPDATE services SET `+strings.Join(sets, ", ")+`
		WHERE id = ?
		RETURNING `+serviceCols), args...)
	if isNoRows(err) {
		return nil, domain.NotFound("Service")
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
