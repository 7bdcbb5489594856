package utils // package utils provides helpers for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken represents a signed JWT access token along with its expiry.
// The token embeds the principal id and its kind (USER, HOST or ADMIN) so
// downstream authorization can distinguish the collections without a second
// lookup.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// CookieName is the cookie under which the access token is also stored, for
// browser clients that do not manage an Authorization header.
const CookieName = "eventra_token"

// ErrInvalidToken is returned by ParseAccessToken for malformed, expired or
// wrongly signed tokens.
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT for a principal. Standard
// claims: subject (sub), kind, expiration (exp) and issued at (iat).
func NewAccessToken(secret string, principalID uint64, kind string, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  principalID,
		"kind": kind,
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken validates the signature and expiry of a token and
// extracts the principal id and kind claims.
func ParseAccessToken(secret, raw string) (uint64, string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return 0, "", ErrInvalidToken
	}
	kind, ok := claims["kind"].(string)
	if !ok || kind == "" {
		return 0, "", ErrInvalidToken
	}
	return uint64(sub), kind, nil
}
