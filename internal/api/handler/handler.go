// Package handler maps HTTP requests onto named session commands. Each
// endpoint invokes exactly one store operation; clients re-read state after
// a command completes.
package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/oscelab/osce-review/internal/api/response"
	"github.com/oscelab/osce-review/internal/domain"
	"github.com/oscelab/osce-review/internal/session"
)

var validate = validator.New()

// requireUserDetails refuses commands that act on session content until a
// participant is on record. Returns false after writing the 409.
func requireUserDetails(w http.ResponseWriter, store *session.Store) bool {
	if !store.HasUserDetails() {
		writeStoreError(w, domain.ErrUserDetailsRequired)
		return false
	}
	return true
}

// writeStoreError translates store errors into HTTP responses. Unknown
// rubric ids are 404s, missing preconditions are 409s, everything else a
// validation problem is a 400.
func writeStoreError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrUnknownRubricItem):
		response.NotFound(w, err.Error())
	case errors.Is(err, domain.ErrNoPendingSuggestion),
		errors.Is(err, domain.ErrSessionNotStarted),
		errors.Is(err, domain.ErrUserDetailsRequired):
		response.Conflict(w, err.Error())
	case errors.As(err, &ve):
		response.BadRequest(w, ve.Error())
	default:
		response.InternalError(w, err.Error())
	}
}
