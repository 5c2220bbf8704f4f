package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/rpupo63/portfolio-site-backend/errs"
	"golang.org/x/crypto/bcrypt"
)

// AdminCredentials checks the single admin login configured by ADMIN_EMAIL
// and ADMIN_PASSWORD_HASH.
type AdminCredentials struct {
	email        string
	passwordHash []byte
}

func NewAdminCredentials(email, passwordHash string) *AdminCredentials {
	return &AdminCredentials{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: []byte(passwordHash),
	}
}

// Enabled reports whether password login is configured at all.
func (a *AdminCredentials) Enabled() bool {
	return a != nil && a.email != "" && len(a.passwordHash) > 0
}

// Check returns the admin email on success and an invalid credentials error otherwise.
func (a *AdminCredentials) Check(email, password string) (string, error) {
	if !a.Enabled() {
		return "", errs.NewInvalidCredentialsError()
	}
	given := strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(given), []byte(a.email)) == 1

	// bcrypt runs even on a wrong email so both failures take the same time
	passwordErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !emailOK || passwordErr != nil {
		return "", errs.NewInvalidCredentialsError()
	}
	return a.email, nil
}

// HashPassword produces a value suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
