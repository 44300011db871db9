// Package ledger tracks which identifiers each pipeline stage has already
// observed and computes the "new since last run" delta at stage boundaries.
//
// A Set is an immutable value built from a store's keys. Delta compares a
// fresh upstream listing against a Set and returns the identifiers that
// still need work, in upstream order. SyncSet is the mutex guarded
// accumulator used while concurrent workers record what they fetched.
//
// Keys are compared in normalized form (surrounding whitespace removed), so
// identifiers read back from a tabular file compare equal to the ones
// returned by the mail source.
package ledger
