// Package domain contains the core entities of the learning engine: users and
// their settings, per-item progress, sessions and their live state, attempts,
// the pet and its vitals, revival tokens and derived statistics.
//
// Entities carry `db` tags so the persistence layer can scan rows into them
// directly; they hold no storage logic of their own.
package domain
