package postgres

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"sarkar/pkg/platform/sentinel"
)

// Postgres error codes that mean the schema is not in place yet.
const (
	codeUndefinedTable  = "42P01"
	codeUndefinedColumn = "42703"
)

// ClassifyError maps missing-schema errors to sentinel.ErrUnavailable and
// returns every other error unchanged.
func ClassifyError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeUndefinedTable, codeUndefinedColumn:
			return fmt.Errorf("%w: %s", sentinel.ErrUnavailable, pqErr.Message)
		}
	}
	return err
}
