package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// NormalizeText collapses whitespace runs and applies NFC normalization so
// character counting and cue splitting behave consistently across input
// sources.
func NormalizeText(text string) string {
	text = norm.NFC.String(text)
	return strings.Join(strings.Fields(text), " ")
}

// WordCount returns the number of whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// sentenceEnders terminate a sentence; clauseBreaks are acceptable secondary
// split points when a sentence alone exceeds the cue budget.
var (
	sentenceEnders = map[rune]struct{}{'.': {}, '!': {}, '?': {}, '。': {}, '！': {}, '？': {}}
	clauseBreaks   = map[rune]struct{}{',': {}, ';': {}, ':': {}, '、': {}, '，': {}, '—': {}}
)

// SplitSentences breaks text at sentence-ending punctuation, keeping the
// punctuation with the preceding fragment. Whitespace-only fragments are
// dropped.
func SplitSentences(text string) []string {
	return splitAfter(text, sentenceEnders)
}

// SplitClauses breaks text at clause punctuation (commas, semicolons, colons).
func SplitClauses(text string) []string {
	return splitAfter(text, clauseBreaks)
}

func splitAfter(text string, breaks map[rune]struct{}) []string {
	text = NormalizeText(text)
	if text == "" {
		return nil
	}
	var parts []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if _, ok := breaks[r]; ok {
			if part := strings.TrimSpace(b.String()); part != "" {
				parts = append(parts, part)
			}
			b.Reset()
		}
	}
	if part := strings.TrimSpace(b.String()); part != "" {
		parts = append(parts, part)
	}
	return parts
}

// SplitWords breaks text into chunks of at most maxChars characters on word
// boundaries. A single word longer than maxChars becomes its own chunk rather
// than being cut mid-word.
func SplitWords(text string, maxChars int) []string {
	text = NormalizeText(text)
	if text == "" {
		return nil
	}
	if maxChars <= 0 || charLen(text) <= maxChars {
		return []string{text}
	}
	var chunks []string
	var b strings.Builder
	for _, word := range strings.Fields(text) {
		if b.Len() == 0 {
			b.WriteString(word)
			continue
		}
		if charLen(b.String())+1+charLen(word) > maxChars {
			chunks = append(chunks, b.String())
			b.Reset()
			b.WriteString(word)
			continue
		}
		b.WriteByte(' ')
		b.WriteString(word)
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}

func charLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

// CharLen reports the rune count of s after normalization.
func CharLen(s string) int {
	return charLen(NormalizeText(s))
}

// IsBlank reports whether text contains no printable content.
func IsBlank(text string) bool {
	for _, r := range text {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
