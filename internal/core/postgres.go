// AngelaMos | 2026
// postgres.go

package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func IsDuplicateKeyError(err error) bool {
	return pgErrorCode(err) == pgUniqueViolation
}

func IsForeignKeyError(err error) bool {
	return pgErrorCode(err) == pgForeignKeyViolation
}

func IsCheckViolation(err error) bool {
	return pgErrorCode(err) == pgCheckViolation
}

// ConstraintName returns the violated constraint, if the error carries one.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// WrapDBError translates constraint violations into core sentinels so
// services can branch on them with errors.Is.
func WrapDBError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrDuplicateKey, err))
	case IsForeignKeyError(err):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrForeignKey, err))
	case IsCheckViolation(err):
		return fmt.Errorf("%s: %w", op, errors.Join(ErrInvalidInput, err))
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func EscapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

// WhereBuilder accumulates numbered placeholders for dynamic filters.
type WhereBuilder struct {
	conditions []string
	args       []any
}

func (b *WhereBuilder) Add(condition string, arg any) {
	b.args = append(b.args, arg)
	b.conditions = append(b.conditions, strings.ReplaceAll(
		condition, "?", fmt.Sprintf("$%d", len(b.args))))
}

func (b *WhereBuilder) AddRaw(condition string) {
	b.conditions = append(b.conditions, condition)
}

func (b *WhereBuilder) Clause() string {
	if len(b.conditions) == 0 {
		return "TRUE"
	}
	return strings.Join(b.conditions, " AND ")
}

func (b *WhereBuilder) Args() []any {
	return b.args
}

// Next returns the placeholder index following the accumulated arguments.
func (b *WhereBuilder) Next() int {
	return len(b.args) + 1
}
