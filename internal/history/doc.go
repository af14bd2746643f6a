// Package history records comparison runs in SQLite so past results can be
// listed and inspected without rerunning the alignment.
//
// The Store owns the database connection, schema initialization and busy
// retries. Each Run row keeps the settings, derived parameters, summary and
// full edit script as JSON alongside a few queryable columns.
//
// Schema changes bump schemaVersion in schema.go; an existing database with
// a different version is rejected with ErrSchemaMismatch and must be cleared.
package history
