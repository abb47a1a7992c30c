package domain

import "errors"

var (
	ErrValidation     = errors.New("validation failed")
	ErrResolution     = errors.New("entity resolution failed")
	ErrClassification = errors.New("classification failed")
	ErrFetch          = errors.New("page fetch failed")
	ErrPersistence    = errors.New("persistence failed")
	ErrFeed           = errors.New("feed unavailable")
	ErrNotFound       = errors.New("not found")
)
