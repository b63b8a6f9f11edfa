package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "admin"

const defaultTTL = 2 * time.Hour

type Claims struct {
	UID  string `json:"uid"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTer 签发/校验 HS256 token。TTL 为 0 时取 2h。
type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrEmptySecret  = errors.New("jwt secret is empty")
)

func (j *JWTer) Issue(uid, role string) (string, error) {
	if len(j.Secret) == 0 {
		return "", ErrEmptySecret
	}
	ttl := j.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UID:  uid,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}).SignedString(j.Secret)
}

// Parse 返回的错误同时 Is ErrInvalidToken 和 jwt 的具体原因（过期、issuer 不符等）。
func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	p := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.Issuer),
		jwt.WithLeeway(time.Minute),
		jwt.WithExpirationRequired(),
	)
	claims := &Claims{}
	t, err := p.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return j.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !t.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// BearerToken 取出 "Bearer <token>"，scheme 不区分大小写
func BearerToken(header string) (string, bool) {
	scheme, tok, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}
