package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Error codes surfaced by the record store.
const (
	CodeNotFound         = "PGRST116"
	CodeUniqueViolation  = "23505"
	CodeForeignKey       = "23503"
	CodeNotNullViolation = "23502"
	CodeUnknown          = "unknown"
)

// Error is a store failure carrying a machine code and a message.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a single-row fetch that matched nothing.
func IsNotFound(err error) bool { return hasCode(err, CodeNotFound) }

// IsUniqueViolation reports a duplicate key.
func IsUniqueViolation(err error) bool { return hasCode(err, CodeUniqueViolation) }

// IsForeignKeyViolation reports a dangling reference.
func IsForeignKeyViolation(err error) bool { return hasCode(err, CodeForeignKey) }

func hasCode(err error, code string) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == code
}

// CodeOf returns the store code of err or CodeUnknown.
func CodeOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeUnknown
}

// translate maps driver and gorm errors onto *Error. nil stays nil.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Code: CodeNotFound, Message: "no rows returned", Err: err}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &Error{Code: pgErr.Code, Message: pgErr.Message, Err: err}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &Error{Code: CodeUniqueViolation, Message: err.Error(), Err: err}
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return &Error{Code: CodeForeignKey, Message: err.Error(), Err: err}
	}
	// SQLite without TranslateError reports constraint failures as plain text.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"), strings.Contains(msg, "duplicate key"):
		return &Error{Code: CodeUniqueViolation, Message: msg, Err: err}
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return &Error{Code: CodeForeignKey, Message: msg, Err: err}
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return &Error{Code: CodeNotNullViolation, Message: msg, Err: err}
	}
	return &Error{Code: CodeUnknown, Message: msg, Err: err}
}

// UserMessage turns a store error into the text shown to operators.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch CodeOf(err) {
	case CodeUniqueViolation:
		return "A record with this value already exists. Use a different number."
	case CodeForeignKey:
		return "Invalid reference: the related record does not exist."
	case CodeNotFound:
		return "Record not found."
	}
	var se *Error
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Unexpected error while saving."
}

// ErrorCode maps a store error onto the snake_case code used in JSON responses.
func ErrorCode(err error) string {
	switch CodeOf(err) {
	case CodeUniqueViolation:
		return "duplicate"
	case CodeForeignKey:
		return "invalid_reference"
	case CodeNotFound:
		return "not_found"
	}
	return "store_error"
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, translate(err))
}
