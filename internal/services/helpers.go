// internal/services/helpers.go
package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/javajoker/storefront-backend/internal/apperrors"
)

func validationFailed(err error) error {
	return apperrors.ErrValidationFailed.WithDetails(err.Error())
}

// lookupError maps a missing row to notFound and anything else to a persistence failure
func lookupError(err error, notFound *apperrors.BaseError, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return apperrors.Persistence(err, action)
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsTerm turns user input into a LIKE pattern matching it anywhere
func containsTerm(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
}

// foldedLike matches column against a containsTerm pattern ignoring case.
// SQLite's LOWER folds ASCII letters only.
func foldedLike(db *gorm.DB, column string) string {
	if db.Dialector.Name() == "postgres" {
		return column + ` ILIKE ? ESCAPE '\'`
	}
	return "LOWER(" + column + `) LIKE ? ESCAPE '\'`
}
