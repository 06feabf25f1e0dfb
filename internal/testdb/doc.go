// Package testdb provides utilities specifically for database testing.
//
// Every call to Open returns a private, fully migrated database. By default
// it is an in-memory SQLite database, so tests can run in parallel without
// any external service. Setting PETDECK_TEST_DB_URL runs the same tests
// against PostgreSQL instead; tables are truncated on every Open, so such
// runs need -parallel 1.
//
// Basic usage:
//
//	func TestMyFeature(t *testing.T) {
//	    t.Parallel()
//	    gw := testdb.Gateway(t)
//	    // use gw.Stores() or gw.RunInTx
//	}
package testdb
