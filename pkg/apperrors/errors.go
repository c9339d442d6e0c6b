package apperrors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidDefinition = errors.New("invalid view definition")
	ErrRefreshFailed     = errors.New("refresh failed")
)
