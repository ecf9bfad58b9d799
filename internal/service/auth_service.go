package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"daily-close/internal/errvalues"
)

// AuthService checks the single shared credential.
type AuthService struct {
	email        string
	passwordHash []byte
}

func NewAuthService(email, password string) (*AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword(passwordDigest(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &AuthService{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: hash,
	}, nil
}

// Login compares the email case-insensitively and the password exactly. The
// error does not reveal which of the two was wrong.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	emailOK := strings.ToLower(strings.TrimSpace(email)) == s.email
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, passwordDigest(password))
	if !emailOK || passErr != nil {
		return "", errvalues.ErrWrongCredentials
	}
	return s.email, nil
}

// Owner returns the normalized account email.
func (s *AuthService) Owner() string {
	return s.email
}

// passwordDigest maps a password of any length to 64 hex bytes, which stays
// under bcrypt's 72-byte input limit so no suffix is ever ignored.
func passwordDigest(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(hex.EncodeToString(sum[:]))
}
