// Package credstore holds the account records the mock session issuer
// consults when validating login credentials.
package credstore

import (
	"context"
	"errors"

	"github.com/hrmskit/sessiond/internal/identity"
)

var (
	// ErrUserNotFound indicates no record matched the lookup.
	ErrUserNotFound = errors.New("cred_store.not_found")
	// ErrDuplicateEmail indicates a create would violate email uniqueness.
	ErrDuplicateEmail = errors.New("cred_store.duplicate_email")
	// ErrEmptyEmail indicates the record carries no email address.
	ErrEmptyEmail = errors.New("cred_store.empty_email")
	// ErrEmptyID indicates an update or delete without a record identifier.
	ErrEmptyID = errors.New("cred_store.empty_id")
)

// UserRecord is one account in the credential store. The password is held in
// plaintext: the issuer is a mock and compares credentials byte-for-byte.
// Any non-mock deployment must replace this with salted hashes.
type UserRecord struct {
	ID          string
	Email       string
	Password    string
	Name        string
	Role        identity.Role
	Permissions []string
}

// Store is the credential repository the issuer is constructed with. An
// in-memory implementation serves tests and local runs; the GORM-backed one
// serves persistent deployments.
type Store interface {
	FindByID(ctx context.Context, recordID string) (UserRecord, error)
	FindByEmail(ctx context.Context, email string) (UserRecord, error)
	// FindByCredentials matches email and password exactly, case-sensitive.
	FindByCredentials(ctx context.Context, email string, password string) (UserRecord, error)
	Create(ctx context.Context, record UserRecord) (UserRecord, error)
	Update(ctx context.Context, record UserRecord) error
	Delete(ctx context.Context, recordID string) error
	List(ctx context.Context) ([]UserRecord, error)
}
