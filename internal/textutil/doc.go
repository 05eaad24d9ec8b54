// Package textutil provides the text processing helpers shared by subtitle
// alignment and filename handling: Unicode normalization, sentence/clause
// splitting, bounded word wrapping, and filesystem-safe name sanitization.
package textutil
