package repos

import (
	"expressbuy/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TransactionRepo struct{ db *sqlx.DB }

func NewTransactionRepo(db *sqlx.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const txnCols = `id,reference,user_id,amount,email,status,payment_date,updated_at`

func (r *TransactionRepo) Create(t *domain.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.PaymentDate == "" {
		t.PaymentDate = now()
	}
	t.UpdatedAt = t.PaymentDate
	_, err := r.db.Exec(r.db.Rebind(`INSERT INTO transactions(`+txnCols+`) VALUES(?,?,?,?,?,?,?,?)`),
		t.ID, t.Reference, t.UserID, t.Amount, t.Email, t.Status, t.PaymentDate, t.UpdatedAt)
	return err
}

func (r *TransactionRepo) ByReference(ref string) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := r.db.Get(&t, r.db.Rebind(`SELECT `+txnCols+` FROM transactions WHERE reference = ?`), ref); err != nil {
		return nil, err
	}
	return &t, nil
}

// Resolve moves a Pending transaction to a terminal status. It only ever succeeds once
// per reference; a second attempt returns ErrStale.
func (r *TransactionRepo) Resolve(ref string, status domain.TransactionStatus) (*domain.Transaction, error) {
	res, err := r.db.Exec(r.db.Rebind(`
		UPDATE transactions SET status = ?, updated_at = ?
		WHERE reference = ? AND status = ?`),
		status, now(), ref, domain.StatusPending)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrStale
	}
	return r.ByReference(ref)
}

func (r *TransactionRepo) ListByUser(userID string) ([]domain.Transaction, error) {
	out := []domain.Transaction{}
	err := r.db.Select(&out, r.db.Rebind(`SELECT `+txnCols+` FROM transactions WHERE user_id = ? ORDER BY payment_date DESC`), userID)
	return out, err
}
