// Package domain holds the value types the monitor's layers share:
// daily metric snapshots, risk scores, scoring configs, run records, and
// the creative registry.
//
// Everything here is plain data plus small pure derivations. Nothing in
// this package imports other internal/ packages or carries handles to
// infrastructure (no *sql.DB, no http.Request, no context.Context in
// struct fields). Struct tags and validation methods are fine; wiring
// is not.
package domain
