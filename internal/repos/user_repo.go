package repos

import (
	"expressbuy/internal/domain"

	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id,email,name,password_hash,role,created_at`

func (r *UserRepo) Create(u *domain.User) error {
	if u.CreatedAt == "" {
		u.CreatedAt = now()
	}
	_, err := r.DB.Exec(r.DB.Rebind(`INSERT INTO users(`+userCols+`) VALUES(?,?,?,?,?,?)`),
		u.ID, u.Email, u.Name, u.Hash, u.Role, u.CreatedAt)
	return err
}

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, r.DB.Rebind(`SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`), email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, r.DB.Rebind(`SELECT `+userCols+` FROM users WHERE id=?`), id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CountByRole is used to decide whether the open admin bootstrap route is still available.
func (r *UserRepo) CountByRole(role string) (int, error) {
	var n int
	err := r.DB.Get(&n, r.DB.Rebind(`SELECT COUNT(*) FROM users WHERE role=?`), role)
	return n, err
}
