package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"snagdef/internal/model"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims is the decoded, already-validated view of a token. The subject is
// the username the token was issued for.
type Claims struct {
	Subject string
	Type    string
	TokenID string
}

// Codec issues and verifies HS256-signed bearer tokens. It holds no state
// beyond the shared secret and the two validity windows, so a Codec value is
// safe for concurrent use.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCodec(secret string, accessTTL time.Duration, refreshTTL time.Duration) *Codec {
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (c *Codec) IssueAccessToken(subject string) (string, error) {
	return c.sign(subject, TypeAccess, c.accessTTL)
}

func (c *Codec) IssueRefreshToken(subject string) (string, error) {
	return c.sign(subject, TypeRefresh, c.refreshTTL)
}

func (c *Codec) sign(subject string, typ string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": subject,
		"typ": typ,
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks signature and expiry. When expectedType is non-empty the typ
// claim must match as well, so an access token can never be replayed where a
// refresh token is expected. Every failure mode maps to model.ErrInvalidToken.
func (c *Codec) Verify(tokenString string, expectedType string) (*Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, model.ErrInvalidToken
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, model.ErrInvalidToken
	}

	typ, _ := claimsMap["typ"].(string)
	if expectedType != "" && typ != expectedType {
		return nil, model.ErrInvalidToken
	}

	claims := &Claims{Type: typ}
	claims.Subject, _ = claimsMap["sub"].(string)
	claims.TokenID, _ = claimsMap["jti"].(string)

	if claims.Subject == "" {
		return nil, model.ErrInvalidToken
	}

	return claims, nil
}
