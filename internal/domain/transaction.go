package domain

import (
	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	StatusPending TransactionStatus = "Pending"
	StatusSuccess TransactionStatus = "Success"
	StatusFailed  TransactionStatus = "Failed"
)

// IsTerminal reports whether the status can no longer change.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

type Transaction struct {
	ID          string            `db:"id" json:"id"`
	Reference   string            `db:"reference" json:"reference"`
	UserID      string            `db:"user_id" json:"user"`
	Amount      decimal.Decimal   `db:"amount" json:"amount"`
	Email       string            `db:"email" json:"email"`
	Status      TransactionStatus `db:"status" json:"status"`
	PaymentDate string            `db:"payment_date" json:"paymentDate"`
	UpdatedAt   string            `db:"updated_at" json:"updatedAt"`
}
