// Package pgrepos implements the domain repositories on PostgreSQL via sqlx.
// Uniqueness is enforced by the schema's unique indexes: the pq
// unique_violation code is mapped to the domain's conflict errors so that
// concurrent duplicate writes lose cleanly instead of racing a pre-check.
package pgrepos

import (
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const uniqueViolation = pq.ErrorCode("23505")

// mapConflict converts a pq unique_violation into the given domain conflict error.
func mapConflict(err, conflict error) error {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return conflict
	}
	return err
}
