package upstream

import (
	"context"
	"net/http"
	"strings"

	pkgerrors "github.com/shoplane/storefront-backend/pkg/errors"
)

// Login exchanges credentials for a platform session.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Session, error) {
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}
	var out Session
	if err := c.do(ctx, "auth_login", http.MethodPost, "/v1/auth/login", nil, creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup registers a new customer account.
func (c *Client) Signup(ctx context.Context, creds Credentials) (*Session, error) {
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}
	var out Session
	if err := c.do(ctx, "auth_signup", http.MethodPost, "/v1/auth/signup", nil, creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile loads the customer's account record.
func (c *Client) Profile(ctx context.Context, customerID string) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, "auth_profile", http.MethodGet, "/v1/customers/"+customerID, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
