// Package sqlstore implements the store interfaces on top of sqlx for both
// PostgreSQL (through the pgx stdlib driver) and SQLite (through
// go-sqlite3). Queries are written with ? placeholders and rebound for the
// connected driver; the schema for each dialect is embedded and applied
// with goose.
package sqlstore
