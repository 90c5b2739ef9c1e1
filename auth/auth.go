// Package auth verifies bearer tokens issued by the external identity
// provider and resolves them to user records. It never issues tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nemopss/expense-tracker/backend/models"
)

var (
	ErrMissingToken = errors.New("authorization header is required")
	ErrMalformed    = errors.New("authorization header must be 'Bearer <token>'")
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrUnknownUser  = errors.New("user not found")
)

// Claims carries the user identifier. The provider may put it in user_id or in sub.
type Claims struct {
	UserID int64 `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// ResolveUserID resolves the user id, preferring user_id over sub.
func (c *Claims) ResolveUserID() (int64, error) {
	if c.UserID > 0 {
		return c.UserID, nil
	}
	if c.RegisteredClaims.Subject == "" {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseInt(c.RegisteredClaims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// UserLookup resolves a user id to its record. db.Storage implements it.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

type Verifier struct {
	secret []byte
	issuer string
	users  UserLookup
	// notFound tells a missing user apart from a lookup failure.
	notFound error
}

// NewVerifier checks HS256 tokens signed with secret. When issuer is not empty
// the iss claim must match. notFound is the error users returns for unknown ids.
func NewVerifier(secret, issuer string, users UserLookup, notFound error) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer, users: users, notFound: notFound}
}

// TokenFromHeader extracts the token from an Authorization header value.
func TokenFromHeader(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMalformed
	}
	return strings.TrimSpace(token), nil
}

// Parse validates the token signature and registered claims.
func (v *Verifier) Parse(token string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate turns an Authorization header into the caller's user record.
func (v *Verifier) Authenticate(ctx context.Context, header string) (*models.User, error) {
	token, err := TokenFromHeader(header)
	if err != nil {
		return nil, err
	}
	claims, err := v.Parse(token)
	if err != nil {
		return nil, err
	}
	id, err := claims.ResolveUserID()
	if err != nil {
		return nil, err
	}

	user, err := v.users.GetUser(ctx, id)
	if err != nil {
		if v.notFound != nil && errors.Is(err, v.notFound) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("lookup user %d: %w", id, err)
	}
	return user, nil
}
