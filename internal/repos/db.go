package repos

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"quickclean/internal/domain"
	applog "quickclean/internal/log"
)

// tsLayout is fixed-width so that text ordering matches time ordering.
const tsLayout = "2006-01-02T15:04:05.000000Z07:00"

func now() string { return time.Now().UTC().Format(tsLayout) }

func newID() string { return uuid.NewString() }

func isNoRows(err error) bool { return errors.Is(err, sql.ErrNoRows) }

// OpenDB connects with driver ("sqlite" or "pgx"), creates the schema and
// seeds the service catalog. Safe to run on every start.
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	if driver == "" {
		driver = "sqlite"
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// one connection keeps :memory: databases shared and serializes writers
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	if err := seedServices(db); err != nil {
		return nil, fmt.Errorf("seed services: %w", err)
	}
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT NOT NULL UNIQUE,
  role TEXT NOT NULL DEFAULT 'customer' CHECK (role IN ('customer','admin')),
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
)`,

	`CREATE TABLE IF NOT EXISTS stores(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  location TEXT NOT NULL,
  address TEXT NOT NULL DEFAULT '',
  active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_stores_name ON stores(name)`,

	`CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  price DOUBLE PRECISION NOT NULL CHECK (price >= 0),
  is_available BOOLEAN NOT NULL DEFAULT TRUE,
  image TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_products_store ON products(store_id)`,

	`CREATE TABLE IF NOT EXISTS services(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  price DOUBLE PRECISION NOT NULL CHECK (price >= 0),
  description TEXT NOT NULL DEFAULT '',
  is_active BOOLEAN NOT NULL DEFAULT TRUE,
  icon TEXT NOT NULL DEFAULT 'MdCleaningServices',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
)`,

	// product_id is a plain reference: bookings outlive catalog edits
	`CREATE TABLE IF NOT EXISTS bookings(
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL REFERENCES customers(id),
  service TEXT NOT NULL,
  price DOUBLE PRECISION NOT NULL CHECK (price > 0),
  date TEXT NOT NULL DEFAULT '',
  items_json TEXT NOT NULL DEFAULT '[]',
  order_summary_json TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','assigned','in-progress','completed','cancelled')),
  assigned_to TEXT NOT NULL DEFAULT '',
  store TEXT NOT NULL DEFAULT '',
  product_id TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT '',
  additional_notes TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_created_at ON bookings(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_customer ON bookings(customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,

	`CREATE TABLE IF NOT EXISTS admins(
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'admin' CHECK (role IN ('admin','superadmin')),
  whatsapp_number TEXT NOT NULL DEFAULT '',
  last_login TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
)`,

	`CREATE TABLE IF NOT EXISTS product_stats(
  product_id TEXT PRIMARY KEY,
  likes INTEGER NOT NULL DEFAULT 0,
  dislikes INTEGER NOT NULL DEFAULT 0,
  updated_at TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS store_stats(
  store_id TEXT PRIMARY KEY,
  likes INTEGER NOT NULL DEFAULT 0,
  dislikes INTEGER NOT NULL DEFAULT 0,
  completed_orders INTEGER NOT NULL DEFAULT 0,
  updated_at TEXT NOT NULL
)`,
	// one row per booking already counted in store_stats.completed_orders
	`CREATE TABLE IF NOT EXISTS store_credits(
  booking_id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  created_at TEXT NOT NULL
)`,

	`CREATE TABLE IF NOT EXISTS lodges(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  location TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','approved')),
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_lodges_name ON lodges(name)`,
}

func ensureSchema(db *sqlx.DB) error {
	if db.DriverName() == "sqlite" {
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			return err
		}
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%s: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// seedServices inserts the bookable services (idempotent).
func seedServices(db *sqlx.DB) error {
	type svc struct {
		Name, Desc string
		Price      float64
	}
	services := []svc{
		{domain.ServiceBuyPack, "We purchase and deliver groceries from our official partner store. Only groceries from their shelves are sold online.", 1500},
		{domain.ServiceLodgeClean, "Professional lodge and residence cleaning for short-stay accommodations.", 5000},
		{domain.ServiceHome, "Complete home cleaning: sweeping, mopping, and sanitizing all toilets and surfaces.", 15000},
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ts := now()
	for _, s := range services {
		if _, err := tx.Exec(tx.Rebind(`
			INSERT INTO services(id,name,price,description,is_active,icon,created_at,updated_at)
			VALUES(?,?,?,?,?,?,?,?)
			ON CONFLICT(name) DO NOTHING
		`), newID(), s.Name, s.Price, s.Desc, true, "MdCleaningServices", ts, ts); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SeedPartnerStore makes sure the partner store exists and, when it has no
// products yet, gives it a small demo shelf.
func SeedPartnerStore(db *sqlx.DB, name, location string) error {
	var storeID string
	err := db.Get(&storeID, db.Rebind(`SELECT id FROM stores WHERE name=? ORDER BY created_at LIMIT 1`), name)
	if err != nil && !isNoRows(err) {
		return err
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ts := now()
	if storeID == "" {
		storeID = newID()
		applog.Info(nil, "seed.store", map[string]any{"name": name})
		tx.MustExec(tx.Rebind(`INSERT INTO stores(id,name,location,address,active,created_at,updated_at) VALUES(?,?,?,?,?,?,?)`),
			storeID, name, location, location, true, ts, ts)
	}

	var n int
	if err := tx.Get(&n, tx.Rebind(`SELECT COUNT(*) FROM products WHERE store_id=?`), storeID); err != nil {
		return err
	}
	if n == 0 {
		applog.Info(nil, "seed.products", map[string]any{"store": name})
		for _, p := range []struct {
			Name  string
			Price float64
		}{
			{"Golden Penny Spaghetti 500g", 950},
			{"Mama Gold Rice 5kg", 9800},
			{"Peak Milk Powder 400g", 3200},
		} {
			tx.MustExec(tx.Rebind(`
				INSERT INTO products(id,store_id,name,price,is_available,image,description,created_at,updated_at)
				VALUES(?,?,?,?,?,?,?,?,?)
			`), newID(), storeID, p.Name, p.Price, true, "", "", ts, ts)
		}
	}
	return tx.Commit()
}

// SeedAdmin creates the admin account if missing, and otherwise refreshes its
// WhatsApp number. The password is only replaced when force is set.
func SeedAdmin(db *sqlx.DB, username, password, whatsapp string, force bool) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || password == "" {
		return nil
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ts := now()
	if _, err := tx.Exec(tx.Rebind(`
		INSERT INTO admins(id,username,password_hash,role,whatsapp_number,created_at,updated_at)
		VALUES(?,?,?,?,?,?,?)
		ON CONFLICT(username) DO UPDATE SET whatsapp_number=excluded.whatsapp_number, updated_at=excluded.updated_at
	`), newID(), username, string(h), domain.RoleAdmin, whatsapp, ts, ts); err != nil {
		return err
	}
	if force {
		if _, err := tx.Exec(tx.Rebind(`UPDATE admins SET password_hash=?, updated_at=? WHERE username=?`), string(h), ts, username); err != nil {
			return err
		}
	}
	return tx.Commit()
}
