package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"expressbuy/internal/domain"
)

var ErrBadToken = errors.New("invalid or expired token")

// Claims is what a bearer token asserts about its holder.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string { return c.Subject }
func (c *Claims) IsAdmin() bool  { return c.Role == domain.RoleAdmin }

type TokenService struct {
	Secret []byte
	TTL    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{Secret: []byte(secret), TTL: ttl, now: time.Now}
}

// Issue signs an HS256 token for u.
func (s *TokenService) Issue(u *domain.User) (string, error) {
	now := s.clock()
	claims := Claims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    "expressbuy",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// Parse verifies signature, algorithm and expiry.
func (s *TokenService) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer("expressbuy"),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock),
	)
	if err != nil || !tok.Valid || claims.Subject == "" {
		return nil, ErrBadToken
	}
	return claims, nil
}

func (s *TokenService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
