// Package store provides the record substrate for favnum: fixed-size binary
// records keyed by derived address.
//
// Every access runs inside a transaction obtained from Update or View. The
// transaction exposes three primitives:
//   - CreateIfAbsent: allocate a record at an unoccupied address
//   - Load: read a record, NotFound if absent
//   - Store: overwrite a record in place, SizeMismatch if the layout differs
//
// If the function passed to Update returns an error nothing commits.
//
// # Backends
//
//   - SQLite (Open): the default. WAL mode, one writer connection,
//     BEGIN IMMEDIATE transactions.
//   - PostgreSQL (OpenPostgres): INSERT ... ON CONFLICT DO NOTHING decides
//     concurrent creations; the loser sees AlreadyExists.
//   - Memory (NewMemory): one mutex held per transaction, writes staged and
//     applied on commit.
//
// # Uniqueness
//
// The records table has address as its primary key and CreateIfAbsent never
// updates an existing row. Two creations racing on one derived address
// produce exactly one record.
package store
