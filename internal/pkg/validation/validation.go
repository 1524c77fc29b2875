package validation

import (
	"regexp"
	"strings"
	"unicode"
)

// DiamondFields is the subset of the add/edit form subject to validation.
// Validation runs at the handler boundary, before any backend call.
type DiamondFields struct {
	StockNumber string
	Shape       string
	Color       string
	Clarity     string
	Status      string
	Carat       float64
	Price       int64
}

var allowedStatuses = map[string]bool{
	"Available": true,
	"Reserved":  true,
	"Sold":      true,
}

// Stock numbers are business identifiers, not free text.
var stockNumberRe = regexp.MustCompile(`^[A-Za-z0-9\-_/]+$`)

// ValidateDiamond returns per-field error messages; an empty map means valid.
// A blank stock number is allowed (one is generated on add).
func ValidateDiamond(f DiamondFields) map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(f.Shape) == "" {
		errs["shape"] = "Shape is required"
	}
	if strings.TrimSpace(f.Color) == "" {
		errs["color"] = "Color is required"
	}
	if strings.TrimSpace(f.Clarity) == "" {
		errs["clarity"] = "Clarity is required"
	}
	if f.Carat <= 0 {
		errs["carat"] = "Carat must be greater than 0"
	}
	if f.Price <= 0 {
		errs["price"] = "Price must be greater than 0"
	}
	if s := strings.TrimSpace(f.StockNumber); s != "" && !stockNumberRe.MatchString(s) {
		errs["stockNumber"] = "Stock number may only contain letters, digits, '-', '_' and '/'"
	}
	if f.Status != "" && !allowedStatuses[f.Status] {
		errs["status"] = "Status must be one of Available, Reserved, Sold"
	}
	return errs
}

// IsValidStockNumber reports whether s can identify an existing record
// (update/delete paths require a non-empty, well-formed stock number).
func IsValidStockNumber(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && stockNumberRe.MatchString(s)
}

// isValidEmail matches the web client rule: /^[^\s@]+@[^\s@]+\.[^\s@]+$/
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPassword enforces the dev-login password rule:
// - at least 8 characters
// - contains at least one letter
// - contains at least one number
// - contains at least one special character
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter, hasDigit, hasSpecial := false, false, false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	return hasLetter && hasDigit && hasSpecial
}
