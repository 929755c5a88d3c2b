package store

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Markers for the kinds of failure of the data access layer, test with errors.Is.
var (
	ErrConnectionFailed = errors.New("database connection failed")
	ErrQueryFailed      = errors.New("query failed")
	ErrTimeout          = errors.New("query timed out")
	ErrCanceled         = errors.New("query canceled")
)

// queryError classifies an error returned by the driver while running query.
// The context is checked first: an interrupted statement surfaces as a plain
// driver error.
func queryError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return errors.Mark(errors.Wrap(err, "query exceeded its time budget"), ErrTimeout)
	}

	// The caller gave up, usually a client disconnecting mid-request.
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return errors.Mark(errors.Wrap(err, "query canceled"), ErrCanceled)
	}

	return errors.Mark(errors.Wrap(err, "unable to run query"), ErrQueryFailed)
}
