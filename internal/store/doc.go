// Package store persists collections, sessions, recordings, and verifications
// in SQLite and exposes the transactional primitives the verification workflow
// is built on.
//
// Every multi-step mutation (queue assignment, verdict roll-up, undo) runs
// through Store.InTx so recording and session flags can never drift from the
// verification rows that justify them. Lock columns (verified_by,
// secondarily_verified_by) are written only inside these transactions.
//
// Treat this package as the single source of truth for schema semantics; when
// adding columns, create a new migration file under migrations/.
package store
