package lib

import "errors"

var (
	ErrFolderNotFound = errors.New("folder not found")
	ErrRoleNotBound   = errors.New("well-known folder cannot be resolved")
	ErrItemNotFound   = errors.New("item not found")
	ErrFolderNotEmpty = errors.New("folder is not empty")
	ErrLocaleNotFound = errors.New("cannot determine language settings")
)
