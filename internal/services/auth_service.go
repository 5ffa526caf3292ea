package services

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"expressbuy/internal/domain"
	"expressbuy/internal/repos"
	"expressbuy/internal/validate"
)

type AuthService struct {
	Users  *repos.UserRepo
	Tokens *TokenService
}

func NewAuthService(users *repos.UserRepo, tokens *TokenService) *AuthService {
	return &AuthService{Users: users, Tokens: tokens}
}

// Registration is the sign-up form for users and admins alike.
type Registration struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (s *AuthService) Register(in Registration) (*domain.User, error) {
	return s.register(in, domain.RoleUser)
}

func (s *AuthService) RegisterAdmin(in Registration) (*domain.User, error) {
	return s.register(in, domain.RoleAdmin)
}

// AdminBootstrapOpen reports whether the unauthenticated admin sign-up is still allowed.
func (s *AuthService) AdminBootstrapOpen() (bool, error) {
	n, err := s.Users.CountByRole(domain.RoleAdmin)
	return n == 0, err
}

func (s *AuthService) register(in Registration, role string) (*domain.User, error) {
	name, ok := validate.Name(in.FullName)
	if !ok {
		return nil, invalid("Full name must be 2-60 letters")
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		return nil, invalid("Invalid email address")
	}
	if !validate.Password(in.Password) {
		return nil, invalid("Password must be 8-32 characters with upper, lower, digit and symbol")
	}
	if in.Password != in.ConfirmPassword {
		return nil, invalid("Passwords do not match")
	}
	_, err := s.Users.ByEmail(email)
	switch {
	case err == nil:
		return nil, conflict("User with this email already exists")
	case !errors.Is(err, sql.ErrNoRows):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{ID: uuid.NewString(), Email: email, Name: name, Hash: string(hash), Role: role}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks the credentials and returns the user with a signed bearer token.
func (s *AuthService) Login(email, password string) (*domain.User, string, error) {
	email, ok := validate.Email(email)
	if !ok || password == "" {
		return nil, "", invalid("Email and password are required")
	}
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, "", missing(err, "User not found")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, "", invalid("Incorrect password")
	}
	tok, err := s.Tokens.Issue(u)
	if err != nil {
		return nil, "", err
	}
	return u, tok, nil
}
