package repos

import (
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrStale is returned when a conditional write lost against a concurrent writer.
var ErrStale = errors.New("stale write")

// OpenDB connects to the store and applies the schema. driver is "sqlite" or "postgres".
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case "", "sqlite":
		driver = "sqlite"
	case "postgres":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// One connection: ":memory:" databases are per-connection and sqlite serializes writers anyway.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(time.Hour)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

// isUniqueViolation reports whether err is a UNIQUE/primary key violation from either driver.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		return pe.Code == "23505"
	}
	return false
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

func ensureSchema(db *sqlx.DB) error {
	if db.DriverName() == "sqlite" {
		if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
			return err
		}
	}
	schema := `
-- Users
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

-- Categories
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

-- Products (category_id is a plain reference: deleting a category keeps its products)
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  description TEXT NOT NULL,
  price TEXT NOT NULL,
  category_id TEXT NOT NULL,
  image_url TEXT NOT NULL DEFAULT '',
  image_key TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);

-- Ordered product list owned by a category
CREATE TABLE IF NOT EXISTS category_products(
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
  product_id  TEXT NOT NULL,
  position INTEGER NOT NULL,
  PRIMARY KEY (category_id, product_id)
);

-- Carts
CREATE TABLE IF NOT EXISTS carts(
  id TEXT PRIMARY KEY,
  user_id TEXT UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  grand_total TEXT NOT NULL,
  version INTEGER NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS cart_items(
  cart_id    TEXT NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  unit_price TEXT NOT NULL,
  unit_total TEXT NOT NULL,
  position INTEGER NOT NULL,
  PRIMARY KEY (cart_id, product_id)
);

-- Payment attempts (audit trail, never deleted)
CREATE TABLE IF NOT EXISTS transactions(
  id TEXT PRIMARY KEY,
  reference TEXT NOT NULL UNIQUE,
  user_id TEXT NOT NULL REFERENCES users(id),
  amount TEXT NOT NULL,
  email TEXT NOT NULL,
  status TEXT NOT NULL CHECK (status IN ('Pending','Success','Failed')),
  payment_date TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id);
`
	_, err := db.Exec(schema)
	return err
}
