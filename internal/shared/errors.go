package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a request without a valid identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates an identity lacking the required permission.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation indicates malformed or incomplete input.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate indicates a uniqueness constraint violation.
	ErrDuplicate = errors.New("duplicate entry")
)

// IsInternal reports whether an error has no client-facing mapping and
// should be logged server-side before a generic 500 response.
func IsInternal(err error) bool {
	for _, sentinel := range []error{
		ErrNotFound, ErrInvalidCredentials, ErrUnauthorized,
		ErrForbidden, ErrValidation, ErrDuplicate,
	} {
		if errors.Is(err, sentinel) {
			return false
		}
	}
	return true
}
