package vitality

import "time"

// Bucket is one local calendar day, [Start, End).
type Bucket struct {
	Start time.Time
	End   time.Time
}

// Key is the bucket's local date.
func (b Bucket) Key() string {
	return b.Start.Format("2006-01-02")
}

// BucketOf returns the calendar day containing t in loc.
func BucketOf(t time.Time, loc *time.Location) Bucket {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return Bucket{Start: start, End: start.AddDate(0, 0, 1)}
}

// PendingBuckets lists the full days that have ended since last, up to but not
// including the day containing now. The result is empty when both fall on the
// same day or now precedes last.
func PendingBuckets(last, now time.Time, loc *time.Location) []Bucket {
	current := BucketOf(now, loc)
	b := BucketOf(last, loc)

	var out []Bucket
	for b.Start.Before(current.Start) {
		out = append(out, b)
		b = Bucket{Start: b.End, End: b.End.AddDate(0, 0, 1)}
	}
	return out
}
