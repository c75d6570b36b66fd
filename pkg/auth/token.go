package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shoplane/storefront-backend/pkg/config"
	pkgerrors "github.com/shoplane/storefront-backend/pkg/errors"
)

// Claims identifies the customer a session token was issued to. Anonymous
// shoppers get a token too, flagged as guest, so their cart survives a page
// reload without an account.
type Claims struct {
	CustomerID string `json:"sub"`
	Guest      bool   `json:"guest"`
	jwt.RegisteredClaims
}

// IssueSessionToken signs a session token for the customer.
func IssueSessionToken(cfg config.SessionConfig, customerID string, guest bool) (string, error) {
	if customerID == "" {
		return "", pkgerrors.New(pkgerrors.CodeInternal, "customer id is required")
	}

	now := time.Now()
	claims := Claims{
		CustomerID: customerID,
		Guest:      guest,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   customerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL())),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "signing session token")
	}
	return signed, nil
}

// ParseSessionToken verifies a session token and returns its claims.
func ParseSessionToken(cfg config.SessionConfig, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session token")
	}
	if !token.Valid || claims.CustomerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session token")
	}
	return claims, nil
}
