// Package api defines the transport DTOs shared by the HTTP server, the IPC
// surface, and the CLI, plus converters from store models. Field names use
// camelCase JSON so both consumers render the same payloads.
package api
