package repos

import (
	"github.com/jmoiron/sqlx"

	"quickclean/internal/domain"
)

type CustomerRepo struct{ db *sqlx.DB }

func NewCustomerRepo(db *sqlx.DB) *CustomerRepo { return &CustomerRepo{db: db} }

const customerCols = `id, name, phone, role, created_at, updated_at`

// GetOrCreate inserts a customer for phone unless one exists, then returns
// the stored row. The insert is a single conflict-tolerant statement so two
// concurrent first bookings for the same phone end up with one customer.
// An existing customer's name is left as is.
func (r *CustomerRepo) GetOrCreate(name, phone string) (*domain.Customer, error) {
	ts := now()
	if _, err := r.db.Exec(r.db.Rebind(`
		INSERT INTO customers(id, name, phone, role, created_at, updated_at)
		VALUES(?, ?, ?, 'customer', ?, ?)
		ON CONFLICT(phone) DO NOTHING
	`), newID(), name, phone, ts, ts); err != nil {
		return nil, err
	}
	return r.ByPhone(phone)
}

func (r *CustomerRepo) ByPhone(phone string) (*domain.Customer, error) {
	var c domain.Customer
	err := r.db.Get(&c, r.db.Rebind(`SELECT `+customerCols+` FROM customers WHERE phone = ?`), phone)
	if isNoRows(err) {
		return nil, domain.NotFound("Customer")
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ByIDs loads customers keyed by id. Missing ids are simply absent.
func (r *CustomerRepo) ByIDs(ids []string) (map[string]*domain.Customer, error) {
	out := make(map[string]*domain.Customer, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT `+customerCols+` FROM customers WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []domain.Customer
	if err := r.db.Select(&rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

func (r *CustomerRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM customers`)
	return n, err
}
