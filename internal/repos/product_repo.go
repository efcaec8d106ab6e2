package repos

import (
	"strings"

	"github.com/jmoiron/sqlx"

	"quickclean/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, store_id, name, price, is_available, image, description, created_at, updated_at`

// ProductPatch carries the fields an update may touch; nil means unchanged.
type ProductPatch struct {
	Name        *string
	Price       *float64
	IsAvailable *bool
	Image       *string
	Description *string
}

func (r *ProductRepo) Get(id string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, r.db.Rebind(`SELECT `+productCols+` FROM products WHERE id = ?`), id)
	if isNoRows(err) {
		return nil, domain.NotFound("Product")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) ListByStore(storeID string) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.Select(&out, r.db.Rebind(`
		SELECT `+productCols+`
		FROM products
		WHERE store_id = ?
		ORDER BY created_at DESC
	`), storeID)
	return out, err
}

// ByIDs loads products keyed by id. Missing ids are simply absent.
func (r *ProductRepo) ByIDs(ids []string) (map[string]*domain.Product, error) {
	out := make(map[string]*domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT `+productCols+` FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []domain.Product
	if err := r.db.Select(&rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

func (r *ProductRepo) Create(p *domain.Product) error {
	p.ID = newID()
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	_, err := r.db.Exec(r.db.Rebind(`
		INSERT INTO products(id, store_id, name, price, is_available, image, description, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), p.ID, p.StoreID, p.Name, p.Price, p.IsAvailable, p.Image, p.Description, p.CreatedAt, p.UpdatedAt)
	return err
}

// Update applies patch and returns the stored row in one statement.
func (r *ProductRepo) Update(id string, patch ProductPatch) (*domain.Product, error) {
	sets := []string{"updated_at = ?"}
	args := []any{now()}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *patch.Price)
	}
	if patch.IsAvailable != nil {
		sets = append(sets, "is_available = ?")
		args = append(args, *patch.IsAvailable)
	}
	if patch.Image != nil {
		sets = append(sets, "image = ?")
		args = append(args, *patch.Image)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	args = append(args, id)

	var p domain.Product
	err := r.db.Get(&p, r.db.Rebind(`
		UPDATE products SET `+strings.Join(sets, ", ")+`
		WHERE id = ?
		RETURNING `+productCols), args...)
	if isNoRows(err) {
		return nil, domain.NotFound("Product")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
