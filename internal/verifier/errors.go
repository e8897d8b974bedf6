package verifier

import "errors"

var (
	// ErrInvalidEndpoint marks a target without host or with port 0; it is
	// never dialed.
	ErrInvalidEndpoint = errors.New("invalid endpoint")

	ErrUnreachable = errors.New("unreachable")
)
