package repos

import (
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"quickclean/internal/domain"
)

type BookingRepo struct{ db *sqlx.DB }

func NewBookingRepo(db *sqlx.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingCols = `id, customer_id, service, price, date, items_json, order_summary_json, status,
  assigned_to, store, product_id, notes, additional_notes, created_at, updated_at`

type bookingRow struct {
	ID              string  `db:"id"`
	CustomerID      string  `db:"customer_id"`
	Service         string  `db:"service"`
	Price           float64 `db:"price"`
	Date            string  `db:"date"`
	ItemsJSON       string  `db:"items_json"`
	SummaryJSON     string  `db:"order_summary_json"`
	Status          string  `db:"status"`
	AssignedTo      string  `db:"assigned_to"`
	Store           string  `db:"store"`
	ProductID       string  `db:"product_id"`
	Notes           string  `db:"notes"`
	AdditionalNotes string  `db:"additional_notes"`
	CreatedAt       string  `db:"created_at"`
	UpdatedAt       string  `db:"updated_at"`
}

func (row bookingRow) booking() (domain.Booking, error) {
	b := domain.Booking{
		ID:              row.ID,
		CustomerID:      row.CustomerID,
		Service:         row.Service,
		Price:           row.Price,
		Date:            row.Date,
		Items:           []domain.LineItem{},
		Status:          domain.Status(row.Status),
		AssignedTo:      row.AssignedTo,
		Store:           row.Store,
		ProductID:       row.ProductID,
		Notes:           row.Notes,
		AdditionalNotes: row.AdditionalNotes,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
	if row.ItemsJSON != "" {
		if err := json.Unmarshal([]byte(row.ItemsJSON), &b.Items); err != nil {
			return b, err
		}
	}
	if row.SummaryJSON != "" {
		var s domain.OrderSummary
		if err := json.Unmarshal([]byte(row.SummaryJSON), &s); err != nil {
			return b, err
		}
		b.OrderSummary = &s
	}
	return b, nil
}

func encodeParts(b *domain.Booking) (items, summary string, err error) {
	if b.Items == nil {
		b.Items = []domain.LineItem{}
	}
	raw, err := json.Marshal(b.Items)
	if err != nil {
		return "", "", err
	}
	items = string(raw)
	if b.OrderSummary != nil {
		if b.OrderSummary.Items == nil {
			b.OrderSummary.Items = []domain.LineItem{}
		}
		raw, err = json.Marshal(b.OrderSummary)
		if err != nil {
			return "", "", err
		}
		summary = string(raw)
	}
	return items, summary, nil
}

// Create assigns id and timestamps, defaults the status to pending and
// inserts b.
func (r *BookingRepo) Create(b *domain.Booking) error {
	items, summary, err := encodeParts(b)
	if err != nil {
		return err
	}
	b.ID = newID()
	b.CreatedAt = now()
	b.UpdatedAt = b.CreatedAt
	if b.Status == "" {
		b.Status = domain.StatusPending
	}
	_, err = r.db.Exec(r.db.Rebind(`
		INSERT INTO bookings(id, customer_id, service, price, date, items_json, order_summary_json, status,
		  assigned_to, store, product_id, notes, additional_notes, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), b.ID, b.CustomerID, b.Service, b.Price, b.Date, items, summary, string(b.Status),
		b.AssignedTo, b.Store, b.ProductID, b.Notes, b.AdditionalNotes, b.CreatedAt, b.UpdatedAt)
	return err
}

func (r *BookingRepo) one(query string, args ...any) (*domain.Booking, error) {
	var row bookingRow
	err := r.db.Get(&row, r.db.Rebind(query), args...)
	if isNoRows(err) {
		return nil, domain.NotFound("Booking")
	}
	if err != nil {
		return nil, err
	}
	b, err := row.booking()
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepo) Get(id string) (*domain.Booking, error) {
	return r.one(`SELECT `+bookingCols+` FROM bookings WHERE id = ?`, id)
}

// Assign overwrites assignee and status and returns the updated row. It is a
// single statement, so concurrent callers never interleave a read and write.
func (r *BookingRepo) Assign(id, assignee string, status domain.Status) (*domain.Booking, error) {
	return r.one(`
		UPDATE bookings SET assigned_to = ?, status = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+bookingCols, assignee, string(status), now(), id)
}

func (r *BookingRepo) SetStatus(id string, status domain.Status) (*domain.Booking, error) {
	return r.one(`
		UPDATE bookings SET status = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+bookingCols, string(status), now(), id)
}

func (r *BookingRepo) Delete(id string) (*domain.Booking, error) {
	return r.one(`DELETE FROM bookings WHERE id = ? RETURNING `+bookingCols, id)
}

// BookingFilter fields are exact matches; empty fields are ignored.
type BookingFilter struct {
	Status     string
	Service    string
	Store      string
	AssignedTo string
	CustomerID string
}

func (f BookingFilter) where() (string, []any) {
	where := `1 = 1`
	args := []any{}
	if f.Status != "" {
		where += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.Service != "" {
		where += ` AND service = ?`
		args = append(args, f.Service)
	}
	if f.Store != "" {
		where += ` AND store = ?`
		args = append(args, f.Store)
	}
	if f.AssignedTo != "" {
		where += ` AND assigned_to = ?`
		args = append(args, f.AssignedTo)
	}
	if f.CustomerID != "" {
		where += ` AND customer_id = ?`
		args = append(args, f.CustomerID)
	}
	return where, args
}

func (r *BookingRepo) Count(f BookingFilter) (int, error) {
	where, args := f.where()
	var n int
	err := r.db.Get(&n, r.db.Rebind(`SELECT COUNT(*) FROM bookings WHERE `+where), args...)
	return n, err
}

// List returns one page of matching bookings, newest first.
func (r *BookingRepo) List(f BookingFilter, offset, limit int) ([]domain.Booking, error) {
	where, args := f.where()
	args = append(args, limit, offset)
	var rows []bookingRow
	if err := r.db.Select(&rows, r.db.Rebind(`
		SELECT `+bookingCols+`
		FROM bookings
		WHERE `+where+`
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`), args...); err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(rows))
	for _, row := range rows {
		b, err := row.booking()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
