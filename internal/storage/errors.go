package storage

import (
	"errors"
	"fmt"
)

// Error categories for storage operations
const (
	ErrCategoryDatabase = "database"
	ErrCategoryS3       = "s3"
	ErrCategoryLocal    = "local"
	ErrCategoryListing  = "listing"
)

// ErrInvalidArgument is wrapped by errors caused by malformed repository ids or prefixes
var ErrInvalidArgument = errors.New("invalid argument")

// NewError creates a standardized error with a category prefix
func NewError(category, message string, err error) error {
	if err != nil {
		return fmt.Errorf("%s error: %s: %w", category, message, err)
	}
	return fmt.Errorf("%s error: %s", category, message)
}

// InvalidArgumentError creates a standardized invalid argument error
func InvalidArgumentError(item string) error {
	return NewError(ErrCategoryListing, fmt.Sprintf("invalid %s", item), ErrInvalidArgument)
}

// IsInvalidArgument checks if an error was caused by a malformed listing argument
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
