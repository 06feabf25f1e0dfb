package srs

import (
	"sort"
	"time"

	"github.com/phrazzld/petdeck/internal/domain"
)

// calculateLearningStep applies a verdict to an item still in the learning phase.
//
// A correct first-try answer counts towards graduation; reaching the threshold
// moves the item to stage 1 due one first interval later. An incorrect answer
// resets the count and keeps the item due so the same session sees it again.
// A correct answer that needed a retry leaves the count alone and keeps the
// item due.
func calculateLearningStep(p *domain.ItemProgress, correct, firstTry bool, now time.Time, params *Params) {
	if !correct {
		p.LearnCorrectCount = 0
		p.NextDueAt = timePtr(now)
		return
	}

	if firstTry {
		p.LearnCorrectCount++
	}

	if p.LearnCorrectCount >= params.GraduationThreshold {
		p.ReviewStage = 1
		p.NextDueAt = timePtr(now.Add(params.Interval(1)))
		return
	}

	p.NextDueAt = timePtr(now)
}

// calculateReviewStep applies a verdict to a graduated item.
//
// Correct answers advance one stage, capped at the last table entry. Incorrect
// answers demote by DemoteBy with a floor of 1 and requeue one first interval out.
func calculateReviewStep(p *domain.ItemProgress, correct bool, now time.Time, params *Params) {
	if correct {
		p.ReviewStage++
		if p.ReviewStage > params.MaxStage() {
			p.ReviewStage = params.MaxStage()
		}
		p.NextDueAt = timePtr(now.Add(params.Interval(p.ReviewStage)))
		return
	}

	p.ReviewStage -= params.DemoteBy
	if p.ReviewStage < 1 {
		p.ReviewStage = 1
	}
	p.NextDueAt = timePtr(now.Add(params.Interval(1)))
}

// calculateNextProgress returns a new ItemProgress with the verdict applied.
// The input is never modified.
func calculateNextProgress(
	progress *domain.ItemProgress,
	correct, firstTry bool,
	now time.Time,
	params *Params,
) *domain.ItemProgress {
	next := progress.Clone()

	if next.InReview() {
		calculateReviewStep(next, correct, now, params)
	} else {
		calculateLearningStep(next, correct, firstTry, now, params)
	}

	next.LastSeenAt = timePtr(now)
	next.UpdatedAt = now

	return next
}

// sortDue filters items due at now and orders them by due time (unset first),
// then content ID. A limit <= 0 disables the cap.
func sortDue(items []*domain.ItemProgress, now time.Time, limit int) []*domain.ItemProgress {
	due := make([]*domain.ItemProgress, 0, len(items))
	for _, it := range items {
		if it.IsDue(now) {
			due = append(due, it)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		a, b := due[i], due[j]
		switch {
		case a.NextDueAt == nil && b.NextDueAt != nil:
			return true
		case a.NextDueAt != nil && b.NextDueAt == nil:
			return false
		case a.NextDueAt != nil && !a.NextDueAt.Equal(*b.NextDueAt):
			return a.NextDueAt.Before(*b.NextDueAt)
		}
		return a.ContentID < b.ContentID
	})

	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due
}

func timePtr(t time.Time) *time.Time {
	t = t.UTC()
	return &t
}
