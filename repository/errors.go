package repository

import "github.com/goliatone/go-errors"

const (
	TextCodeUserNotFound   = "repository_user_not_found"
	TextCodeInsertConflict = "repository_insert_conflict"
)

// ErrUserNotFound is returned when no user matches the query.
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrInsertConflict is returned when an insert was skipped but no record
// with the same email exists.
var ErrInsertConflict = errors.New("user insert conflicted", errors.CategoryConflict).
	WithTextCode(TextCodeInsertConflict).
	WithCode(errors.CodeConflict)
