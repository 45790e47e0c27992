// Package usecase implements the business logic for the auth feature.
package usecase

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrIdentityNotFound is returned when no identity matches the lookup.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrDuplicateIdentity is returned by the store when the email or federated id is already taken.
	ErrDuplicateIdentity = errors.New("identity already exists")

	// ErrEmailInUse is the caller-facing form of ErrDuplicateIdentity.
	ErrEmailInUse = errors.New("email is already in use")

	// ErrInvalidCredentials never says which factor was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrFederatedAccount is returned when a federated-only account tries a password login.
	ErrFederatedAccount = fmt.Errorf("%w: this account uses Google Sign-In, please login with Google", ErrInvalidCredentials)

	// ErrAccountDisabled is returned for identities with Active == false.
	ErrAccountDisabled = errors.New("account is disabled")

	// ErrUnauthenticated covers missing, malformed, expired and orphaned tokens.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned when the identity's role is not allowed.
	ErrForbidden = errors.New("forbidden")

	// ErrTooManyAttempts is returned when login attempts for an email are throttled.
	ErrTooManyAttempts = errors.New("too many login attempts")

	// ErrFederatedAssertion is returned when the external identity assertion fails verification.
	ErrFederatedAssertion = errors.New("invalid federated identity assertion")

	// ErrFederatedUnavailable is returned when federated login is not configured.
	ErrFederatedUnavailable = errors.New("federated login is not configured")
)

// ValidationError accumulates every invalid field of a request.
type ValidationError struct {
	Fields map[string]string
}

// Error implements error with a stable, sorted rendering of the fields.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// add records msg for field unless the field already has a message.
func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

// orNil returns nil when no field failed.
func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
