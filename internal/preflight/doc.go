// Package preflight provides readiness checks for the filesystem paths and
// external binaries the daemon depends on.
//
// The daemon runs RunAll at startup and surfaces the results through the
// status endpoint; the CLI "eyra status" command renders the same results.
// A failed check does not stop the daemon -- verification verdicts can still
// be recorded -- but trim application needs ffmpeg and audio ingest needs a
// writable data dir with headroom, so operators want to see both.
package preflight
