package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"backend/internal/workflow"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Document numbers look like ORD-202608-0001: a type prefix, the calendar
// year+month, and a month-scoped counter zero-padded to at least four
// digits. The counter restarts at 1 each month.

// MonthlyPrefix builds the period-scoped prefix for a document type.
func MonthlyPrefix(typePrefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-", typePrefix, now.Format("200601"))
}

// NextInSequence computes the successor of the highest number seen for a
// prefix. An empty or unparsable last number starts the sequence at 1. The
// pad width grows past 9999 rather than truncating.
func NextInSequence(prefix, last string) string {
	seq := 0
	if last != "" {
		if i := strings.LastIndex(last, "-"); i >= 0 {
			if n, err := strconv.Atoi(last[i+1:]); err == nil {
				seq = n
			}
		}
	}
	return fmt.Sprintf("%s%04d", prefix, seq+1)
}

// nextNumber allocates the next document number inside the caller's
// transaction. The max-number read locks matching rows FOR UPDATE with SKIP
// LOCKED semantics: a racing transaction does not block, it computes its own
// candidate from the unlocked snapshot and relies on the unique constraint on
// the number column to reject true collisions (surfaced as ErrDuplicateNumber
// by IsUniqueViolation at insert time).
func nextNumber(db *gorm.DB, tableModel interface{}, column, prefix string) (string, error) {
	var numbers []string
	err := db.Model(tableModel).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where(column+" LIKE ?", prefix+"%").
		Order(column + " DESC").
		Limit(1).
		Pluck(column, &numbers).Error
	if err != nil {
		return "", err
	}
	last := ""
	if len(numbers) > 0 {
		last = numbers[0]
	}
	return NextInSequence(prefix, last), nil
}

// IsUniqueViolation reports whether err is a unique-constraint violation,
// i.e. a concurrent numbering race the caller may retry.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// TranslateError maps storage errors onto the workflow taxonomy.
func TranslateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", workflow.ErrNotFound, err)
	case IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", workflow.ErrDuplicateNumber, err)
	default:
		return err
	}
}
