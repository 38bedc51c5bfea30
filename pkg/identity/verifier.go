// SPDX-License-Identifier: Apache-2.0
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	verificationIssuer   = "intake"
	verificationAudience = "email-verification"
)

var (
	// ErrInvalidToken is returned for malformed or forged tokens
	ErrInvalidToken = errors.New("invalid verification token")
	// ErrTokenExpired is returned when the verification link has expired
	ErrTokenExpired = errors.New("verification token has expired")
)

// VerificationClaims are carried by email verification tokens
type VerificationClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier issues and redeems email verification links
type Verifier struct {
	signingKey []byte
	baseURL    string
	ttl        time.Duration
	accounts   *Accounts
}

// NewVerifier creates a verifier. baseURL is the page the link points at;
// the token is appended as the "token" query parameter.
func NewVerifier(secret, baseURL string, ttl time.Duration, accounts *Accounts) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("identity.token-secret is not configured")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid verification url: %w", err)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Verifier{
		signingKey: []byte(secret),
		baseURL:    baseURL,
		ttl:        ttl,
		accounts:   accounts,
	}, nil
}

// Issue signs a verification token for email
func (v *Verifier) Issue(email string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, VerificationClaims{
		Email: NormalizeEmail(email),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(v.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    verificationIssuer,
			Audience:  []string{verificationAudience},
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(v.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign verification token: %w", err)
	}
	return signed, nil
}

// Link builds the verification URL for email
func (v *Verifier) Link(email string) (string, error) {
	token, err := v.Issue(email)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(v.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid verification url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Parse validates a token and returns its claims
func (v *Verifier) Parse(tokenString string) (*VerificationClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &VerificationClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.signingKey, nil
	},
		jwt.WithIssuer(verificationIssuer),
		jwt.WithAudience(verificationAudience),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*VerificationClaims)
	if !ok || !parsed.Valid || claims.Email == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Verify redeems a token and marks the account verified
func (v *Verifier) Verify(ctx context.Context, tokenString string) (Account, error) {
	claims, err := v.Parse(tokenString)
	if err != nil {
		return Account{}, err
	}
	return v.accounts.MarkVerified(ctx, claims.Email)
}
