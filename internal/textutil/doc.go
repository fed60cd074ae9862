// Package textutil provides text normalization for collection names and
// filesystem-safe tokens derived from prompt text.
package textutil
