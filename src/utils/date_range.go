package utils

import (
	"fmt"
	"time"

	"coin-market-api/src/logger"
)

// DateLayout is the canonical date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// looseDateLayout also accepts single-digit months and days (2024-1-5).
const looseDateLayout = "2006-1-2"

const (
	msgInvalidDateFormat = "Invalid date format. Using default date range."
	msgRangeExceeded     = "Date range exceeded maximum allowed (%d days). Adjusted to last %d days."
)

// -----------------------------------------------------------------------------

// DateRangeValidator clamps requested ranges to a lookback window ending no
// later than today. It never fails: bad input falls back to defaults.
type DateRangeValidator struct {
	MaxDays int
	Now     func() time.Time
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewDateRangeValidator(maxDays int, log *logger.Logger) *DateRangeValidator {
	return &DateRangeValidator{
		MaxDays: maxDays,
		Now:     time.Now,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

// today is the current local calendar date, expressed as UTC midnight so that
// day arithmetic is immune to DST shifts.
func (v *DateRangeValidator) today() time.Time {
	y, m, d := v.Now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// -----------------------------------------------------------------------------

// DefaultStartDate is MaxDays-1 days before today.
func (v *DateRangeValidator) DefaultStartDate() string {
	return v.today().AddDate(0, 0, -(v.MaxDays - 1)).Format(DateLayout)
}

// -----------------------------------------------------------------------------

func (v *DateRangeValidator) DefaultEndDate() string {
	return v.today().Format(DateLayout)
}

// -----------------------------------------------------------------------------

// Validate returns the effective start and end dates plus a message that is
// empty unless something was adjusted.
func (v *DateRangeValidator) Validate(startDate, endDate string) (string, string, string) {
	startDt, errStart := parseDate(startDate)
	endDt, errEnd := parseDate(endDate)
	if errStart != nil || errEnd != nil {
		v.Logger.Warning("Error validating dates (%q, %q): start=%v end=%v", startDate, endDate, errStart, errEnd)
		return v.DefaultStartDate(), endDate, msgInvalidDateFormat
	}

	today := v.today()
	if endDt.After(today) {
		endDt = today
		endDate = endDt.Format(DateLayout)
	}

	days := int(endDt.Sub(startDt).Hours() / 24)
	if days > v.MaxDays {
		startDt = endDt.AddDate(0, 0, -(v.MaxDays - 1))
		startDate = startDt.Format(DateLayout)
		return startDate, endDate, fmt.Sprintf(msgRangeExceeded, v.MaxDays, v.MaxDays)
	}

	return startDate, endDate, ""
}

// -----------------------------------------------------------------------------

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err == nil {
		return t, nil
	}
	if loose, looseErr := time.Parse(looseDateLayout, value); looseErr == nil {
		return loose, nil
	}
	return t, err
}
