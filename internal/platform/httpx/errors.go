package httpx

import (
	"errors"
	"net/http"

	"github.com/hrs-suite/hrs/internal/shared"
)

// RespondError maps domain errors to HTTP failure envelopes. Unexpected
// errors surface a generic message; callers are expected to log the detail.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrUnauthorized), errors.Is(err, shared.ErrInvalidCredentials):
		Fail(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, shared.ErrForbidden):
		Fail(w, http.StatusForbidden, "Forbidden")
	case errors.Is(err, shared.ErrNotFound):
		Fail(w, http.StatusNotFound, "Not found")
	case errors.Is(err, shared.ErrValidation):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Fail(w, http.StatusBadRequest, err.Error())
	default:
		Fail(w, http.StatusInternalServerError, "Internal server error")
	}
}
