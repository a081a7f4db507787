package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// datePattern is the only accepted shape for an explicit start date.
var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// defaultLookbackDays is applied when neither a start date nor a day
// count is supplied.
const defaultLookbackDays = 2

// QueryParams are the raw filter inputs for a search. StartDate and
// Days are mutually exclusive; with neither set the query covers the
// last two days.
type QueryParams struct {
	// StartDate is an explicit earliest received date, YYYY-MM-DD.
	StartDate string

	// Days is a relative lookback in whole days from now.
	Days int

	// Subject restricts results to items whose subject contains this
	// substring. Empty means no subject clause.
	Subject string

	// Sender restricts results to items from this sender. Empty means
	// no sender clause.
	Sender string
}

// Validate checks the date inputs without touching the clock or any
// remote service.
func (p QueryParams) Validate() error {
	if p.StartDate != "" && p.Days != 0 {
		return ErrConflictingDateArgs
	}
	if p.StartDate != "" && !datePattern.MatchString(p.StartDate) {
		return fmt.Errorf("%w: %q", ErrInvalidDateFormat, p.StartDate)
	}
	if p.Days < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDayCount, p.Days)
	}
	return nil
}

// BuildQuery renders the search predicate for the remote service. The
// date clause always comes first, then subject, then sender, joined by
// AND inside a single enclosing parenthesis pair.
func BuildQuery(p QueryParams, now time.Time) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	since := p.StartDate
	if since == "" {
		days := p.Days
		if days == 0 {
			days = defaultLookbackDays
		}
		since = now.AddDate(0, 0, -days).Format("2006-01-02")
	}

	clauses := []string{fmt.Sprintf("received>=%s", since)}
	if p.Subject != "" {
		clauses = append(clauses, fmt.Sprintf("subject:%q", p.Subject))
	}
	if p.Sender != "" {
		clauses = append(clauses, fmt.Sprintf("from:%q", p.Sender))
	}

	return "(" + strings.Join(clauses, " AND ") + ")", nil
}
