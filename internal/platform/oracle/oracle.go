package oracle

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxScore is the score of an exact match.
const MaxScore = 100

// Answer is one submission to score.
type Answer struct {
	Submitted string
	Expected  string

	// FirstTry is the caller's claim that this is the user's first attempt at
	// the prompt, e.g. not a re-recorded voice answer.
	FirstTry bool
}

// Result is the verdict on one answer.
type Result struct {
	// Score is the match score, 0..MaxScore.
	Score int

	// FirstTry reports whether the answer counts as a first attempt. An oracle
	// may clear the caller's flag but never sets it.
	FirstTry bool
}

// Oracle scores answers. Implementations return domain.ErrTransientIO when the
// scoring backend is temporarily unavailable.
type Oracle interface {
	Score(ctx context.Context, answer Answer) (Result, error)
}

// Func adapts a function to the Oracle interface.
type Func func(ctx context.Context, answer Answer) (Result, error)

// Score calls f.
func (f Func) Score(ctx context.Context, answer Answer) (Result, error) {
	return f(ctx, answer)
}

// Levenshtein scores answers by edit-distance similarity of their normalized
// forms. The first-try flag is passed through.
type Levenshtein struct{}

var _ Oracle = (*Levenshtein)(nil)

// NewLevenshtein creates the default oracle.
func NewLevenshtein() *Levenshtein {
	return &Levenshtein{}
}

// Score implements Oracle.
func (l *Levenshtein) Score(ctx context.Context, answer Answer) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Result{
		Score:    l.similarity(answer.Submitted, answer.Expected),
		FirstTry: answer.FirstTry,
	}, nil
}

func (l *Levenshtein) similarity(submitted, expected string) int {
	a, b := l.Normalize(submitted), l.Normalize(expected)
	if a == b {
		return MaxScore
	}
	if a == "" || b == "" {
		return 0
	}
	sim := levenshtein.Similarity(a, b, nil)
	return int(math.Round(sim * MaxScore))
}

// Normalize folds case, applies NFKC, drops punctuation and collapses runs of
// whitespace.
func (l *Levenshtein) Normalize(s string) string {
	t := transform.Chain(norm.NFKC, runes.Remove(runes.In(unicode.P)))
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	// A Caser keeps state between calls and cannot be shared.
	out = cases.Fold().String(out)
	return strings.Join(strings.Fields(out), " ")
}
