package models

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrDuplicate is returned when a unique column (slug, SKU, name, username) already holds the value.
	ErrDuplicate = errors.New("duplicate value")
)

// translateError maps driver-level constraint failures onto the package's sentinel errors.
// It relies on the connection being opened with gorm.Config{TranslateError: true}.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Join(ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return errors.Join(ErrCategoryNotFound, err)
	}
	return err
}
