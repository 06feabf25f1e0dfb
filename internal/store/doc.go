// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// A Stores bundle groups one store per entity, all bound to the same
// connection or transaction. A Gateway hands out the bundle bound to the
// pool and runs units of work in a transaction.
package store
