package widgetauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenLifetime is how long an issued token stays valid.
const TokenLifetime = 3600 * time.Second

// Claims is the complete payload of an issued token. Field order is the wire order:
// the verifying system expects exactly {"sub":...,"exp":...} and nothing else.
type Claims struct {
	Subject   string `json:"sub"` // User identifier, usually an email address
	ExpiresAt int64  `json:"exp"` // Unix seconds
}

// newClaims builds the claims for subject issued at now
func newClaims(subject string, now time.Time) Claims {
	return Claims{
		Subject:   subject,
		ExpiresAt: now.Unix() + int64(TokenLifetime/time.Second),
	}
}

// jwt.Claims implementation, so the struct can be signed and parsed by golang-jwt.

func (c Claims) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(c.ExpiresAt, 0)), nil
}

func (c Claims) GetIssuedAt() (*jwt.NumericDate, error)  { return nil, nil }
func (c Claims) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }
func (c Claims) GetIssuer() (string, error)              { return "", nil }
func (c Claims) GetSubject() (string, error)             { return c.Subject, nil }
func (c Claims) GetAudience() (jwt.ClaimStrings, error)  { return nil, nil }
