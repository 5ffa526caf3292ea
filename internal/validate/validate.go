package validate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reName  = regexp.MustCompile(`^[\p{L} .'-]+$`)
	reRef   = regexp.MustCompile(`^[A-Za-z0-9_.=-]{1,100}$`)
)

// MaxQty caps a single add-to-cart request.
const MaxQty = 50

func Email(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 0 || len(s) > 100 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Name validates a person's full name.
func Name(s string) (string, bool) {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) < 2 || len(s) > 60 {
		return "", false
	}
	return s, reName.MatchString(s)
}

// Title validates a category name or product description.
func Title(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > max {
		return "", false
	}
	return s, true
}

// Password requires 8-32 chars with lower, upper, digit and symbol.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 32 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}

// Qty parses a quantity query value; empty or junk means 1.
func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > MaxQty {
		return MaxQty
	}
	return n
}

// ID validates a resource identifier (uuid or similar).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Reference validates a gateway transaction reference.
func Reference(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reRef.MatchString(s)
}

// Price parses a positive amount with at most two decimal places.
func Price(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Zero, false
	}
	return d.Round(2), true
}
