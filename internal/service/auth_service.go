package service

import (
	"crypto/subtle"
	"errors"

	"userhub/internal/core/auth"
	"userhub/pkg/utils"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService authenticates the single configured operator account.
type AuthService struct {
	Username     string
	PasswordHash string // bcrypt
	JWT          *auth.JWTer
}

func (s *AuthService) Login(username, password string) (string, error) {
	if s.PasswordHash == "" {
		return "", ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.Username)) == 1
	// bcrypt runs regardless so a wrong username costs the same as a wrong password.
	passOK := utils.CheckPassword(password, s.PasswordHash)
	if !userOK || !passOK {
		return "", ErrInvalidCredentials
	}
	return s.JWT.Issue(username, auth.RoleAdmin)
}
