// Package oracle scores a submitted answer against the expected answer on a
// 0 to 100 scale and decides whether it counts as a first attempt.
//
// The scoring function is opaque to the rest of the engine: callers only see
// the Oracle interface. The default implementation is a normalized Levenshtein
// similarity; Retrying wraps any Oracle with a per-call timeout and a bounded
// number of retries on transient failures.
package oracle
