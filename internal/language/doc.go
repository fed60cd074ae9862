// Package language normalizes the language tags attached to voice
// collections. Input may be a BCP 47 tag, a bare ISO 639 code, or an English
// language name.
package language
