package repos

import (
	"expressbuy/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productSelect = `
  SELECT
    p.id, p.description, p.price, p.category_id, COALESCE(c.name,'') AS category_name,
    p.image_url, p.image_key, p.created_at
  FROM products p
  LEFT JOIN categories c ON c.id = p.category_id`

// CreateInCategory inserts the product and appends its id to the category's product list.
func (r *ProductRepo) CreateInCategory(p *domain.Product) error {
	if p.CreatedAt == "" {
		p.CreatedAt = now()
	}
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(tx.Rebind(`
		INSERT INTO products(id,description,price,category_id,image_url,image_key,created_at)
		VALUES(?,?,?,?,?,?,?)`),
		p.ID, p.Description, p.Price, p.CategoryID, p.Image.URL, p.Image.Key, p.CreatedAt); err != nil {
		return err
	}
	if _, err := tx.Exec(tx.Rebind(`
		INSERT INTO category_products(category_id, product_id, position)
		SELECT ?, ?, COALESCE(MAX(position), 0) + 1 FROM category_products WHERE category_id = ?`),
		p.CategoryID, p.ID, p.CategoryID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, r.db.Rebind(productSelect+` WHERE p.id = ?`), id)
	return p, err
}

func (r *ProductRepo) List() ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.Select(&out, productSelect+` ORDER BY p.created_at, p.id`)
	return out, err
}

// Delete drops the product and unlinks it from categoryID's product list in one transaction.
// It reports false when the product does not exist.
func (r *ProductRepo) Delete(productID, categoryID string) (bool, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(tx.Rebind(`DELETE FROM category_products WHERE category_id=? AND product_id=?`),
		categoryID, productID); err != nil {
		return false, err
	}
	res, err := tx.Exec(tx.Rebind(`DELETE FROM products WHERE id=?`), productID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return false, nil
	}
	return true, tx.Commit()
}
