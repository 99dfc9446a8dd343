package app

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"journey-quiz-service/internal/domain"
)

var namePattern = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)

// normalizeName trims and validates a display name.
func normalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if len(name) < 2 || len(name) > 50 || !namePattern.MatchString(name) {
		return "", domain.ErrInvalidName
	}
	return name, nil
}

// NewSecurityCode returns a random code in 100000..999999.
func NewSecurityCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate security code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

func validCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
