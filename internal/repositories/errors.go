package repositories

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no record matches the query, including
	// ownership-guarded queries that match nothing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects an insert
	ErrDuplicate = errors.New("record already exists")
)

// translate maps GORM's sentinel errors onto the repository ones
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
