// Package logs reads the daemon log file incrementally so CLI clients can
// display recent entries and follow new output.
package logs
