// SPDX-License-Identifier: Apache-2.0
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/Work-Fort/Intake/pkg/store"
)

// AccountsCollection holds one document per registered email
const AccountsCollection = "accounts"

var (
	// ErrAccountExists is returned when registering an email twice
	ErrAccountExists = errors.New("an account with this email already exists")
	// ErrInvalidCredentials is returned for an unknown email or wrong password
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotVerified is returned when signing in before verifying the email
	ErrNotVerified = errors.New("email address has not been verified")
	// ErrAccountNotFound is returned when no account exists for an email
	ErrAccountNotFound = errors.New("account not found")
	// ErrEmptyPassword is returned when creating an account without a password
	ErrEmptyPassword = errors.New("password cannot be empty")
)

// Account is the stored identity of a registered user
type Account struct {
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	PasswordHash string     `json:"password_hash"`
	Verified     bool       `json:"verified"`
	CreatedAt    time.Time  `json:"created_at"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
}

// Accounts manages credentials in a document store
type Accounts struct {
	store  store.Store
	cost   int
	logger *log.Logger
}

// AccountsOption configures Accounts
type AccountsOption func(*Accounts)

// WithHashCost overrides the bcrypt cost
func WithHashCost(cost int) AccountsOption {
	return func(a *Accounts) {
		a.cost = cost
	}
}

// WithLogger sets the logger for account events
func WithLogger(logger *log.Logger) AccountsOption {
	return func(a *Accounts) {
		a.logger = logger
	}
}

// NewAccounts creates an account manager backed by s
func NewAccounts(s store.Store, opts ...AccountsOption) *Accounts {
	a := &Accounts{store: s, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	if a.logger == nil {
		a.logger = log.Default()
	}
	return a
}

// NormalizeEmail is the canonical form used as the account id
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create registers a new unverified account
func (a *Accounts) Create(ctx context.Context, email, password, role string) (Account, error) {
	if password == "" {
		return Account{}, ErrEmptyPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return Account{}, fmt.Errorf("could not hash password: %w", err)
	}

	account := Account{
		Email:        NormalizeEmail(email),
		Role:         role,
		PasswordHash: string(hashed),
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.store.Create(ctx, AccountsCollection, account.Email, account); err != nil {
		if errors.Is(err, store.ErrExists) {
			return Account{}, ErrAccountExists
		}
		return Account{}, err
	}
	a.logger.Debug("Account created", "email", account.Email, "role", role)
	return account, nil
}

// Lookup returns the account for email
func (a *Accounts) Lookup(ctx context.Context, email string) (Account, error) {
	var account Account
	if err := a.store.Get(ctx, AccountsCollection, NormalizeEmail(email), &account); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return account, nil
}

// Authenticate checks the password and verification status
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (Account, error) {
	account, err := a.Lookup(ctx, email)
	if errors.Is(err, ErrAccountNotFound) {
		return Account{}, ErrInvalidCredentials
	}
	if err != nil {
		return Account{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, fmt.Errorf("could not verify password: %w", err)
	}
	if !account.Verified {
		return account, ErrNotVerified
	}
	return account, nil
}

// MarkVerified flags the account as verified. Verifying twice is a no-op.
func (a *Accounts) MarkVerified(ctx context.Context, email string) (Account, error) {
	account, err := a.Lookup(ctx, email)
	if err != nil {
		return Account{}, err
	}
	if account.Verified {
		return account, nil
	}
	now := time.Now().UTC()
	account.Verified = true
	account.VerifiedAt = &now
	if err := a.store.Put(ctx, AccountsCollection, account.Email, account); err != nil {
		return Account{}, err
	}
	a.logger.Info("Account verified", "email", account.Email)
	return account, nil
}

// Delete removes the account for email
func (a *Accounts) Delete(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if err := a.store.Delete(ctx, AccountsCollection, email); err != nil {
		return err
	}
	a.logger.Debug("Account deleted", "email", email)
	return nil
}
