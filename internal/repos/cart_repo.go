package repos

import (
	"expressbuy/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

const cartCols = `id,user_id,grand_total,version,created_at,updated_at`

// ByUser loads the user's cart with its line items. sql.ErrNoRows when the user has none.
func (r *CartRepo) ByUser(userID string) (*domain.Cart, error) {
	var c domain.Cart
	if err := r.db.Get(&c, r.db.Rebind(`SELECT `+cartCols+` FROM carts WHERE user_id = ?`), userID); err != nil {
		return nil, err
	}
	items := []domain.LineItem{}
	if err := r.db.Select(&items, r.db.Rebind(`
	  SELECT product_id, quantity, unit_price, unit_total
	  FROM cart_items
	  WHERE cart_id = ?
	  ORDER BY position
	`), c.ID); err != nil {
		return nil, err
	}
	c.Products = items
	return &c, nil
}

// Save persists the whole ledger. A cart with Version 0 is inserted; otherwise the
// header update is conditional on the loaded version. ErrStale is returned when
// another request saved first, including a concurrent first insert for the same user. On success c.Version is advanced.
func (r *CartRepo) Save(c *domain.Cart) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ts := now()
	if c.Version == 0 {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if _, err := tx.Exec(tx.Rebind(`INSERT INTO carts(`+cartCols+`) VALUES(?,?,?,?,?,?)`),
			c.ID, c.UserID, c.GrandTotal, 1, ts, ts); err != nil {
			if isUniqueViolation(err) {
				return ErrStale
			}
			return err
		}
		c.CreatedAt = ts
	} else {
		res, err := tx.Exec(tx.Rebind(`
			UPDATE carts SET grand_total = ?, version = version + 1, updated_at = ?
			WHERE id = ? AND version = ?`),
			c.GrandTotal, ts, c.ID, c.Version)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrStale
		}
		if _, err := tx.Exec(tx.Rebind(`DELETE FROM cart_items WHERE cart_id = ?`), c.ID); err != nil {
			return err
		}
	}
	for i, it := range c.Products {
		if _, err := tx.Exec(tx.Rebind(`
			INSERT INTO cart_items(cart_id, product_id, quantity, unit_price, unit_total, position)
			VALUES(?,?,?,?,?,?)`),
			c.ID, it.ProductID, it.Quantity, it.UnitPrice, it.UnitTotal, i); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	c.Version++
	c.UpdatedAt = ts
	return nil
}

// All returns every cart with its lines; admin view, no pagination.
func (r *CartRepo) All() ([]domain.Cart, error) {
	carts := []domain.Cart{}
	if err := r.db.Select(&carts, `SELECT `+cartCols+` FROM carts ORDER BY created_at, id`); err != nil {
		return nil, err
	}
	var rows []struct {
		CartID string `db:"cart_id"`
		domain.LineItem
	}
	if err := r.db.Select(&rows, `
	  SELECT cart_id, product_id, quantity, unit_price, unit_total
	  FROM cart_items
	  ORDER BY cart_id, position
	`); err != nil {
		return nil, err
	}
	byCart := map[string][]domain.LineItem{}
	for _, row := range rows {
		byCart[row.CartID] = append(byCart[row.CartID], row.LineItem)
	}
	for i := range carts {
		carts[i].Products = byCart[carts[i].ID]
		if carts[i].Products == nil {
			carts[i].Products = []domain.LineItem{}
		}
	}
	return carts, nil
}
