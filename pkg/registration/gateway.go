// SPDX-License-Identifier: Apache-2.0
package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Work-Fort/Intake/pkg/form"
	"github.com/Work-Fort/Intake/pkg/identity"
	"github.com/Work-Fort/Intake/pkg/store"
	"github.com/Work-Fort/Intake/pkg/wizard"
)

// User-facing messages
const (
	MsgIncompleteDeletion = "Past account deletion was incomplete! Contact system administrator."
	MsgRegisterPrefix     = "Error when registering user:"
	MsgSavePrefix         = "Error when saving data to the database:"
	MsgVerifyPrefix       = "Error when sending the verification email:"
	MsgSaveChangesPrefix  = "Error when saving changes:"
	MsgChangesSaved       = "Changes saved successfully!"
	MsgProfileNotFound    = "Couldn't find data associated with this user"
)

var (
	// ErrIncompleteDeletion is returned when a record outlived its account
	ErrIncompleteDeletion = errors.New(MsgIncompleteDeletion)
	// ErrProfileNotFound is returned by LoadProfile when no record exists
	ErrProfileNotFound = errors.New(MsgProfileNotFound)
)

// StageError prefixes a failure with the stage of the submission it came from
type StageError struct {
	Prefix string
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %v", e.Prefix, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Services are the collaborators the gateways need
type Services struct {
	Store    store.Store
	Accounts *identity.Accounts
	Verifier *identity.Verifier
	Mailer   identity.Mailer
	Logger   *log.Logger
}

func (s Services) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}

// RegisterGateway creates the account, writes the role's record and sends
// the verification link. A failure after the account exists undoes the
// earlier stages so the same answers can be submitted again.
func RegisterGateway(svc Services, role Role) wizard.Gateway {
	return wizard.GatewayFunc(func(ctx context.Context, s form.Snapshot) (wizard.Receipt, error) {
		email := identity.NormalizeEmail(s.Text(KeyEmail))
		logger := svc.logger().With("role", role, "email", email)

		if _, err := svc.Accounts.Create(ctx, email, s.Text(KeyPassword), string(role)); err != nil {
			logger.Warn("Account creation failed", "err", err)
			return wizard.Receipt{}, &StageError{Prefix: MsgRegisterPrefix, Err: err}
		}

		found, err := svc.Store.Exists(ctx, role.Collection(), email)
		if err != nil {
			rollback(ctx, svc, logger, role, email, false)
			return wizard.Receipt{}, &StageError{Prefix: MsgSavePrefix, Err: err}
		}
		if found {
			logger.Error("Record exists for a new account")
			rollback(ctx, svc, logger, role, email, false)
			return wizard.Receipt{}, ErrIncompleteDeletion
		}

		record := RecordFromSnapshot(role, s)
		now := time.Now().UTC()
		record.ID = uuid.NewString()
		record.Email = email
		record.CreatedAt = now
		record.UpdatedAt = now
		if err := svc.Store.Create(ctx, role.Collection(), email, record); err != nil {
			logger.Error("Record write failed", "err", err)
			rollback(ctx, svc, logger, role, email, false)
			return wizard.Receipt{}, &StageError{Prefix: MsgSavePrefix, Err: err}
		}

		if err := sendVerification(ctx, svc, email); err != nil {
			logger.Error("Verification email failed", "err", err)
			rollback(ctx, svc, logger, role, email, true)
			return wizard.Receipt{}, &StageError{Prefix: MsgVerifyPrefix, Err: err}
		}

		logger.Info("Registration complete", "record", record.ID)
		return wizard.Receipt{Message: fmt.Sprintf("A verification link has been sent to %s", email)}, nil
	})
}

// rollback removes what a failed registration wrote. It runs even when ctx
// was cancelled mid-submission.
func rollback(ctx context.Context, svc Services, logger *log.Logger, role Role, email string, record bool) {
	ctx = context.WithoutCancel(ctx)
	if record {
		if err := svc.Store.Delete(ctx, role.Collection(), email); err != nil && !errors.Is(err, store.ErrNotFound) {
			logger.Error("Record rollback failed", "err", err)
		}
	}
	if err := svc.Accounts.Delete(ctx, email); err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.Error("Account rollback failed", "err", err)
		return
	}
	logger.Debug("Registration rolled back", "record", record)
}

func sendVerification(ctx context.Context, svc Services, email string) error {
	if svc.Verifier == nil || svc.Mailer == nil {
		return errors.New("verification is not configured")
	}
	link, err := svc.Verifier.Link(email)
	if err != nil {
		return err
	}
	return svc.Mailer.Send(ctx, identity.VerificationMessage(email, link))
}

// ProfileGateway overwrites the record of the signed-in user. The email in
// the snapshot is ignored in favour of the session email.
func ProfileGateway(svc Services, role Role, email string) wizard.Gateway {
	email = identity.NormalizeEmail(email)
	return wizard.GatewayFunc(func(ctx context.Context, s form.Snapshot) (wizard.Receipt, error) {
		var current Record
		err := svc.Store.Get(ctx, role.Collection(), email, &current)
		switch {
		case errors.Is(err, store.ErrNotFound):
			current = Record{Role: role, Email: email, ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
		case err != nil:
			return wizard.Receipt{}, &StageError{Prefix: MsgSaveChangesPrefix, Err: err}
		}
		if current.Role == "" {
			current.Role = role
		}
		if current.Email == "" {
			current.Email = email
		}

		next := current.Apply(s)
		next.UpdatedAt = time.Now().UTC()
		if err := svc.Store.Put(ctx, role.Collection(), email, next); err != nil {
			return wizard.Receipt{}, &StageError{Prefix: MsgSaveChangesPrefix, Err: err}
		}
		svc.logger().Info("Profile updated", "role", role, "email", email)
		return wizard.Receipt{Message: MsgChangesSaved}, nil
	})
}

// LoadProfile fetches the stored record for email as wizard seed data
func LoadProfile(ctx context.Context, s store.Store, role Role, email string) (form.Snapshot, error) {
	record, err := LoadRecord(ctx, s, role, email)
	if err != nil {
		return form.Snapshot{}, err
	}
	return record.Snapshot(), nil
}

// LoadRecord fetches and schema-checks the stored record for email
func LoadRecord(ctx context.Context, s store.Store, role Role, email string) (Record, error) {
	var record Record
	if err := s.Get(ctx, role.Collection(), identity.NormalizeEmail(email), &record); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Record{}, ErrProfileNotFound
		}
		return Record{}, err
	}
	if record.Role == "" {
		record.Role = role
	}
	if err := record.CheckSchema(); err != nil {
		return Record{}, err
	}
	return record, nil
}
