// errors.go
package usersettings

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input parameters")
	ErrInvalidField       = errors.New("invalid settings field")
	ErrInvalidValue       = errors.New("invalid settings value")
	ErrNotFound           = errors.New("user not found")
	ErrDuplicate          = errors.New("user already exists")
	ErrStorageUnavailable = errors.New("storage backend unavailable")
)
