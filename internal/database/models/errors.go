package models

import (
	"errors"

	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/askstack/askstack/internal/database/types"
)

// translateConstraintError maps store-level constraint and
// serialization failures onto the engine's error taxonomy so
// pgdriver-specific types never leak past the model layer. Errors
// without a known code pass through unchanged for the caller to wrap.
func translateConstraintError(err error, onUnique error) error {
	if err == nil {
		return nil
	}

	var pgerr *pgdriver.Error
	if errors.As(err, &pgerr) {
		switch pgerr.Field('C') {
		case "23505": // unique_violation
			return onUnique
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return types.ErrConflict
		}
	}

	return err
}
