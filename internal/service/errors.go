package service

import (
	"errors"

	"mrp-api-server/internal/apperr"
	"mrp-api-server/internal/store"
)

// lookupErr maps store lookup failures onto the API error taxonomy.
func lookupErr(err error, entity, id string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("%s %s not found", entity, id)
	case errors.Is(err, store.ErrInvalidID):
		return apperr.Validation("malformed %s id %q", entity, id)
	default:
		return apperr.Unexpected(err, "failed to load %s", entity)
	}
}
