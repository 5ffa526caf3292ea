package repos

import (
	"expressbuy/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) Create(c *domain.Category) error {
	if c.CreatedAt == "" {
		c.CreatedAt = now()
	}
	_, err := r.db.Exec(r.db.Rebind(`INSERT INTO categories(id,name,created_at) VALUES(?,?,?)`),
		c.ID, c.Name, c.CreatedAt)
	return err
}

func (r *CategoryRepo) ByName(name string) (*domain.Category, error) {
	var c domain.Category
	err := r.db.Get(&c, r.db.Rebind(`SELECT id,name,created_at FROM categories WHERE LOWER(name)=LOWER(?)`), name)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Get returns the category together with its ordered product id list.
func (r *CategoryRepo) Get(id string) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.Get(&c, r.db.Rebind(`SELECT id,name,created_at FROM categories WHERE id=?`), id); err != nil {
		return nil, err
	}
	ids := []string{}
	if err := r.db.Select(&ids, r.db.Rebind(`
		SELECT product_id FROM category_products
		WHERE category_id=?
		ORDER BY position`), id); err != nil {
		return nil, err
	}
	c.ProductIDs = ids
	return &c, nil
}

func (r *CategoryRepo) List() ([]domain.Category, error) {
	out := []domain.Category{}
	if err := r.db.Select(&out, `SELECT id,name,created_at FROM categories ORDER BY created_at, name`); err != nil {
		return nil, err
	}
	var links []struct {
		CategoryID string `db:"category_id"`
		ProductID  string `db:"product_id"`
	}
	if err := r.db.Select(&links, `SELECT category_id, product_id FROM category_products ORDER BY category_id, position`); err != nil {
		return nil, err
	}
	byCat := map[string][]string{}
	for _, l := range links {
		byCat[l.CategoryID] = append(byCat[l.CategoryID], l.ProductID)
	}
	for i := range out {
		out[i].ProductIDs = byCat[out[i].ID]
		if out[i].ProductIDs == nil {
			out[i].ProductIDs = []string{}
		}
	}
	return out, nil
}

// Delete removes the category and its product list; the products themselves stay.
func (r *CategoryRepo) Delete(id string) (bool, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(tx.Rebind(`DELETE FROM category_products WHERE category_id=?`), id); err != nil {
		return false, err
	}
	res, err := tx.Exec(tx.Rebind(`DELETE FROM categories WHERE id=?`), id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return false, nil
	}
	return true, tx.Commit()
}
