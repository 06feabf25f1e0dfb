package domain

import (
	"time"

	"github.com/google/uuid"
)

// DayFormat is the layout of DailyStats.Day.
const DayFormat = "2006-01-02"

// DailyStats aggregates one user's attempts for one local calendar day. It is
// derived data and can be rebuilt from attempts.
type DailyStats struct {
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	Day            string    `json:"day" db:"day"`
	Attempts       int       `json:"attempts" db:"attempts"`
	Correct        int       `json:"correct" db:"correct"`
	FirstTryTotal  int       `json:"first_try_total" db:"first_try_total"`
	FirstTryErrors int       `json:"first_try_errors" db:"first_try_errors"`
	Streak         int       `json:"streak" db:"streak"`
}

// Record folds one attempt into the aggregate.
func (d *DailyStats) Record(correct, firstTry bool) {
	d.Attempts++
	if correct {
		d.Correct++
		d.Streak++
	} else {
		d.Streak = 0
	}
	if firstTry {
		d.FirstTryTotal++
		if !correct {
			d.FirstTryErrors++
		}
	}
}

// LevelProgress records a user's best result on a level.
type LevelProgress struct {
	UserID            uuid.UUID `json:"user_id" db:"user_id"`
	Level             int       `json:"level" db:"level"`
	BestCorrect       int       `json:"best_correct" db:"best_correct"`
	SessionsCompleted int       `json:"sessions_completed" db:"sessions_completed"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// Record folds a completed session into the aggregate.
func (l *LevelProgress) Record(correct int, now time.Time) {
	if correct > l.BestCorrect {
		l.BestCorrect = correct
	}
	l.SessionsCompleted++
	l.UpdatedAt = now.UTC()
}

// ReminderLog marks that a reminder for a slot was emitted.
type ReminderLog struct {
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	SlotKey    string    `json:"slot_key" db:"slot_key"`
	RemindedAt time.Time `json:"reminded_at" db:"reminded_at"`
}
