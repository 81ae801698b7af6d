package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingDate    = errors.New("deadline date is required")
	ErrInvalidCutoff  = errors.New("deadline cutoff is required")
	ErrInvalidClock   = errors.New("clock time must look like HH:MM")
	ErrDeadlinePassed = errors.New("deadline passed")
)

// Scope narrows a deadline to an office, a cafe, or both. Nil fields are unscoped.
type Scope struct {
	OfficeID *int64
	CafeID   *int64
}

// Deadline is the cutoff after which orders for Date are no longer accepted.
type Deadline struct {
	ID       int64
	Date     time.Time
	Cutoff   time.Time
	OfficeID *int64
	CafeID   *int64
	Active   bool
}

// NewDeadline builds an active deadline for the given day.
func NewDeadline(date, cutoff time.Time, scope Scope) (*Deadline, error) {
	d := &Deadline{
		Date:     date,
		Cutoff:   cutoff,
		OfficeID: scope.OfficeID,
		CafeID:   scope.CafeID,
		Active:   true,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate normalizes the date and checks required fields.
func (d *Deadline) Validate() error {
	if d.Date.IsZero() {
		return ErrMissingDate
	}
	d.Date = DateOnly(d.Date)
	if d.Cutoff.IsZero() {
		return ErrInvalidCutoff
	}
	return nil
}

// Matches reports whether every scope field set on d equals the requested one.
func (d *Deadline) Matches(scope Scope) bool {
	return sameRef(d.OfficeID, scope.OfficeID) && sameRef(d.CafeID, scope.CafeID)
}

// Specificity ranks scoped deadlines: office+cafe, cafe, office, unscoped.
func (d *Deadline) Specificity() int {
	rank := 0
	if d.CafeID != nil {
		rank += 2
	}
	if d.OfficeID != nil {
		rank++
	}
	return rank
}

// Passed reports whether now is at or after the cutoff.
func (d *Deadline) Passed(now time.Time) bool {
	return !now.Before(d.Cutoff)
}

// PassedError wraps ErrDeadlinePassed with the cutoff that was missed.
func (d *Deadline) PassedError() error {
	return fmt.Errorf("%w: cutoff was %s", ErrDeadlinePassed, d.Cutoff.Format(time.RFC3339))
}

// Resolve picks the deadline that governs date and scope out of candidates.
// Inactive rows and rows scoped elsewhere are ignored. The most specific match
// wins; among equally specific matches the latest cutoff wins.
func Resolve(candidates []*Deadline, date time.Time, scope Scope) *Deadline {
	date = DateOnly(date)
	var best *Deadline
	for _, d := range candidates {
		if d == nil || !d.Active || !DateOnly(d.Date).Equal(date) || !d.Matches(scope) {
			continue
		}
		if best == nil ||
			d.Specificity() > best.Specificity() ||
			(d.Specificity() == best.Specificity() && d.Cutoff.After(best.Cutoff)) {
			best = d
		}
	}
	return best
}

func sameRef(own, requested *int64) bool {
	if own == nil {
		return true
	}
	return requested != nil && *own == *requested
}

// DateOnly truncates t to midnight UTC of the calendar day it falls on.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ClockTime is a time of day used for the default daily cutoff.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock parses values such as "12:00" or "9:30".
func ParseClock(raw string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return ClockTime{}, ErrInvalidClock
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return ClockTime{}, ErrInvalidClock
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return ClockTime{}, ErrInvalidClock
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// On returns the instant at this clock time on date's calendar day in loc.
func (c ClockTime) On(date time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, loc)
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}
