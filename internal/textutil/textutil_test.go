package textutil

import (
	"reflect"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("Breaking: markets rally. Investors cheer! Will it last?")
	want := []string{"Breaking: markets rally.", "Investors cheer!", "Will it last?"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitSentences = %v, want %v", got, want)
	}
}

func TestSplitSentencesNoPunctuation(t *testing.T) {
	got := SplitSentences("no terminal punctuation here")
	if len(got) != 1 || got[0] != "no terminal punctuation here" {
		t.Fatalf("expected single fragment, got %v", got)
	}
}

func TestSplitWordsRespectsBudget(t *testing.T) {
	chunks := SplitWords("one two three four five six seven eight", 12)
	for _, chunk := range chunks {
		if CharLen(chunk) > 12 {
			t.Fatalf("chunk %q exceeds budget", chunk)
		}
	}
	joined := ""
	for i, chunk := range chunks {
		if i > 0 {
			joined += " "
		}
		joined += chunk
	}
	if joined != "one two three four five six seven eight" {
		t.Fatalf("words lost in split: %q", joined)
	}
}

func TestSplitWordsOversizedWord(t *testing.T) {
	chunks := SplitWords("supercalifragilisticexpialidocious", 10)
	if len(chunks) != 1 {
		t.Fatalf("oversized word should stay whole, got %v", chunks)
	}
}

func TestNormalizeTextCollapsesWhitespace(t *testing.T) {
	if got := NormalizeText("  a \t b\n c  "); got != "a b c" {
		t.Fatalf("NormalizeText = %q", got)
	}
}

func TestSanitizeFileName(t *testing.T) {
	if got := SanitizeFileName(`break/ing: news?`); got != "break-ing- news" {
		t.Fatalf("SanitizeFileName = %q", got)
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank(" \t\n") {
		t.Fatal("whitespace should be blank")
	}
	if IsBlank("x") {
		t.Fatal("text should not be blank")
	}
}
