package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword 生成 bcrypt 哈希；cost <= 0 时用 bcrypt.DefaultCost
func HashPassword(pw string, cost int) (string, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// MustHashPassword is HashPassword at the minimum cost; for fixtures only.
func MustHashPassword(pw string) string {
	h, err := HashPassword(pw, bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return h
}

// CheckPassword reports whether pw matches hashed. A malformed hash never matches.
func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
