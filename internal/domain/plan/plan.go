// Package plan computes daily session slots: for each configured start time in
// a user's timezone, when to remind and when the session deadline falls.
package plan

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrInvalidClockTime is returned when a clock time is not HH:MM.
var ErrInvalidClockTime = errors.New("invalid clock time")

// ClockTime is a wall-clock time of day.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM".
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidClockTime, s)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// ParseClockTimes parses a list of "HH:MM" values and returns them sorted.
func ParseClockTimes(values []string) ([]ClockTime, error) {
	out := make([]ClockTime, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		ct, err := ParseClockTime(v)
		if err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].minutes() < out[j].minutes() })
	return out, nil
}

func (c ClockTime) minutes() int {
	return c.Hour*60 + c.Minute
}

// String formats the time as HH:MM.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Schedule is the daily session plan shared by all users.
type Schedule struct {
	Times         []ClockTime
	ReminderLead  time.Duration
	DeadlineGrace time.Duration
}

// Slot is one scheduled session occurrence.
type Slot struct {
	// Key identifies the slot as "<local date>T<HH:MM>".
	Key        string    `json:"key"`
	Start      time.Time `json:"start"`
	RemindAt   time.Time `json:"remind_at"`
	DeadlineAt time.Time `json:"deadline_at"`
}

// InReminderWindow reports whether now is at or after the reminder time and
// before the deadline.
func (s Slot) InReminderWindow(now time.Time) bool {
	return !now.Before(s.RemindAt) && now.Before(s.DeadlineAt)
}

// Contains reports whether now falls within [RemindAt, DeadlineAt].
func (s Slot) Contains(now time.Time) bool {
	return !now.Before(s.RemindAt) && !now.After(s.DeadlineAt)
}

// SlotKey formats the key of a slot starting at start.
func SlotKey(start time.Time) string {
	return start.Format("2006-01-02T15:04")
}

// SlotsOn returns the slots of the local calendar day containing day in loc.
func (s Schedule) SlotsOn(day time.Time, loc *time.Location) []Slot {
	local := day.In(loc)
	slots := make([]Slot, 0, len(s.Times))
	for _, ct := range s.Times {
		start := time.Date(local.Year(), local.Month(), local.Day(), ct.Hour, ct.Minute, 0, 0, loc)
		slots = append(slots, Slot{
			Key:        SlotKey(start),
			Start:      start,
			RemindAt:   start.Add(-s.ReminderLead),
			DeadlineAt: start.Add(s.DeadlineGrace),
		})
	}
	return slots
}

// SlotsAround returns the slots of the local day before, of and after now, so
// windows that straddle midnight are not missed.
func (s Schedule) SlotsAround(now time.Time, loc *time.Location) []Slot {
	local := now.In(loc)
	var out []Slot
	for _, offset := range []int{-1, 0, 1} {
		out = append(out, s.SlotsOn(local.AddDate(0, 0, offset), loc)...)
	}
	return out
}

// DueReminders returns the slots whose reminder window contains now.
func (s Schedule) DueReminders(now time.Time, loc *time.Location) []Slot {
	var out []Slot
	for _, slot := range s.SlotsAround(now, loc) {
		if slot.InReminderWindow(now) {
			out = append(out, slot)
		}
	}
	return out
}

// SlotFor returns the slot whose window contains now, preferring the earliest.
func (s Schedule) SlotFor(now time.Time, loc *time.Location) (Slot, bool) {
	for _, slot := range s.SlotsAround(now, loc) {
		if slot.Contains(now) {
			return slot, true
		}
	}
	return Slot{}, false
}

// Upcoming returns the next n slots starting at or after now.
func (s Schedule) Upcoming(now time.Time, loc *time.Location, n int) []Slot {
	var out []Slot
	local := now.In(loc)
	for offset := 0; len(out) < n && offset <= n+1; offset++ {
		for _, slot := range s.SlotsOn(local.AddDate(0, 0, offset), loc) {
			if !slot.Start.Before(now) && len(out) < n {
				out = append(out, slot)
			}
		}
	}
	return out
}
