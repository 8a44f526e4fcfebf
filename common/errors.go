// Package common defines the sentinel errors shared by the data-access
// layer. Callers should use errors.Is to match these values; the wrapping
// message names the document the operation was acting on.
package common

import "errors"

var (
	// ErrNotFound reports that a lookup the operation depends on matched
	// no document. Plain reads do not use it: they return absence as a
	// nil result instead.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument reports malformed required input, such as a nil
	// preferences map or an id that is not a valid ObjectID.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOperationFailed reports that the store rejected or could not
	// complete a write, including unique-constraint violations. Errors
	// wrapping it also wrap the underlying driver error.
	ErrOperationFailed = errors.New("operation failed")
)
