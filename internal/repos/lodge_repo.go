package repos

import (
	"github.com/jmoiron/sqlx"

	"quickclean/internal/domain"
)

type LodgeRepo struct{ db *sqlx.DB }

func NewLodgeRepo(db *sqlx.DB) *LodgeRepo { return &LodgeRepo{db: db} }

func (r *LodgeRepo) List() ([]domain.Lodge, error) {
	out := []domain.Lodge{}
	err := r.db.Select(&out, `
		SELECT id, name, location, status, created_at, updated_at
		FROM lodges
		ORDER BY name
	`)
	return out, err
}

func (r *LodgeRepo) Create(l *domain.Lodge) error {
	l.ID = newID()
	l.CreatedAt = now()
	l.UpdatedAt = l.CreatedAt
	if l.Status == "" {
		l.Status = "pending"
	}
	_, err := r.db.Exec(r.db.Rebind(`
		INSERT INTO lodges(id, name, location, status, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?)
	`), l.ID, l.Name, l.Location, l.Status, l.CreatedAt, l.UpdatedAt)
	return err
}
