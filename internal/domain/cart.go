package domain

import (
	"github.com/shopspring/decimal"
)

type LineItem struct {
	ProductID string          `db:"product_id" json:"productId"`
	Quantity  int             `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unitPrice"`
	UnitTotal decimal.Decimal `db:"unit_total" json:"unitTotal"`
}

// Cart is the per-user ledger. GrandTotal is always the sum of the line totals;
// every mutator below recomputes it before returning.
type Cart struct {
	ID         string          `db:"id" json:"id"`
	UserID     string          `db:"user_id" json:"user"`
	Products   []LineItem      `db:"-" json:"products"`
	GrandTotal decimal.Decimal `db:"grand_total" json:"grandTotal"`
	Version    int             `db:"version" json:"-"`
	CreatedAt  string          `db:"created_at" json:"createdAt"`
	UpdatedAt  string          `db:"updated_at" json:"updatedAt"`
}

func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Products: []LineItem{}, GrandTotal: decimal.Zero}
}

func (c *Cart) index(productID string) int {
	for i := range c.Products {
		if c.Products[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) Line(productID string) (LineItem, bool) {
	if i := c.index(productID); i >= 0 {
		return c.Products[i], true
	}
	return LineItem{}, false
}

// Add increments an existing line (repricing it at unitPrice) or appends a new one.
func (c *Cart) Add(productID string, qty int, unitPrice decimal.Decimal) {
	if qty < 1 {
		qty = 1
	}
	if i := c.index(productID); i >= 0 {
		l := &c.Products[i]
		l.Quantity += qty
		l.UnitPrice = unitPrice
		l.UnitTotal = unitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
	} else {
		c.Products = append(c.Products, LineItem{
			ProductID: productID,
			Quantity:  qty,
			UnitPrice: unitPrice,
			UnitTotal: unitPrice.Mul(decimal.NewFromInt(int64(qty))),
		})
	}
	c.recompute()
}

// Reduce takes one unit off a line and drops the line when it reaches zero.
// It reports false when the product is not in the cart.
func (c *Cart) Reduce(productID string) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	l := &c.Products[i]
	l.Quantity--
	if l.Quantity <= 0 {
		c.Products = append(c.Products[:i], c.Products[i+1:]...)
	} else {
		l.UnitTotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
	}
	c.recompute()
	return true
}

func (c *Cart) Remove(productID string) bool {
	i := c.index(productID)
	if i < 0 {
		return false
	}
	c.Products = append(c.Products[:i], c.Products[i+1:]...)
	c.recompute()
	return true
}

func (c *Cart) Clear() {
	c.Products = []LineItem{}
	c.recompute()
}

func (c *Cart) IsEmpty() bool { return len(c.Products) == 0 }

func (c *Cart) recompute() {
	total := decimal.Zero
	for _, l := range c.Products {
		total = total.Add(l.UnitTotal)
	}
	c.GrandTotal = total
}
