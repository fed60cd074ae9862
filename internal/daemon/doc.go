// Package daemon hosts the long-running verification service: it enforces
// single-instance execution with a lock file, serves the HTTP API, and
// surfaces preflight results through the status endpoint.
package daemon
