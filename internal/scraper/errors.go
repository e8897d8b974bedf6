package scraper

import "errors"

var (
	ErrSourceUnavailable = errors.New("source unavailable")
	ErrResponseTooLarge  = errors.New("response too large")
)
