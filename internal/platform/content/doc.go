// Package content loads the leveled prompt/answer decks the engine schedules.
//
// A catalog is read from a single CSV or XLSX file carrying a level column,
// or from a directory of per-level files named level<N>.csv or level<N>.xlsx.
// The first row is a header; recognised columns are level, id, prompt, answer
// and hint. Rows missing a prompt or an answer are skipped. When the id column
// is absent the 1-based row position within the level is used.
package content
