package descriptor

import "errors"

var (
	ErrUnsupportedScheme = errors.New("unsupported scheme")
	ErrMalformedPayload  = errors.New("malformed payload")
	ErrMissingHost       = errors.New("missing host")
	ErrInvalidPort       = errors.New("invalid port")
)

var (
	ErrNoSnapshot             = errors.New("no snapshot published")
	ErrNoDescriptorsAvailable = errors.New("no descriptors available")
)
