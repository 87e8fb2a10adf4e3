// Package parser validates cron expressions and computes their next occurrences.
//
// Expressions use the standard five fields: minute hour day-of-month month day-of-week.
// Descriptors such as @hourly or @every are rejected so that every stored schedule
// stays readable by any cron implementation.
package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrEmptyExpression is returned for blank schedules.
var ErrEmptyExpression = errors.New("empty cron expression")

var standardParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ParseCron parses a cron string like "*/5 0 1-10 * 1,3" into a schedule.
func ParseCron(expr string) (cron.Schedule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, ErrEmptyExpression
	}
	schedule, err := standardParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return schedule, nil
}

// Validate reports whether expr is a syntactically valid five-field expression.
func Validate(expr string) error {
	_, err := ParseCron(expr)
	return err
}

// CalculateNextRun finds the first occurrence strictly after from.
func CalculateNextRun(expr string, from time.Time) (time.Time, error) {
	schedule, err := ParseCron(expr)
	if err != nil {
		return time.Time{}, err
	}
	next := schedule.Next(from)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("cron expression %q never fires", expr)
	}
	return next, nil
}

// IsDue reports whether an occurrence of expr falls in (anchor, asOf].
// anchor is the last execution time, or the creation time for jobs that never ran.
// Fields are matched in asOf's location.
func IsDue(expr string, anchor, asOf time.Time) (bool, error) {
	next, err := CalculateNextRun(expr, anchor.In(asOf.Location()))
	if err != nil {
		return false, err
	}
	return !next.After(asOf), nil
}
