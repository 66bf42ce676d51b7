package analyzer

import (
	"reflect"
	"testing"

	"teamassist/internal/port"
)

var _ port.Tokenizer = (*Tokenizer)(nil)

func TestTokenizer_Tokenize_WithStemming(t *testing.T) {
	tok := NewTokenizer(true)

	tokens := tok.Tokenize("Running incidents are escalating")
	want := []string{"run", "incid", "escal"}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("expected %v, got %v", want, tokens)
	}
}

func TestTokenizer_Tokenize_WithoutStemming(t *testing.T) {
	tok := NewTokenizer(false)

	tokens := tok.Tokenize("Who is on call this week?")
	want := []string{"call", "week"}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("expected %v, got %v", want, tokens)
	}
}

func TestTokenizer_ShortWordRemoval(t *testing.T) {
	tok := NewTokenizer(false)

	for _, token := range tok.Tokenize("a I go to Q3") {
		if len(token) < 2 {
			t.Errorf("short word should be removed: %s", token)
		}
	}
}

func TestTokenizer_Features(t *testing.T) {
	tok := NewTokenizer(false)

	f := tok.Features("on-call rotation, call rotation")
	if f["call"] != 2 {
		t.Errorf("expected call=2, got %v", f["call"])
	}
	if f["call rotation"] != 1 {
		t.Errorf("expected bigram weight 1 (two half-weight pairs), got %v", f["call rotation"])
	}
	if len(tok.Features("the and of")) != 0 {
		t.Error("stopword-only text should have no features")
	}
}

func TestPorterStemmer_Deterministic(t *testing.T) {
	s := NewPorterStemmer()
	cases := map[string]string{
		"running":        "run",
		"caresses":       "caress",
		"ponies":         "poni",
		"relational":     "relat",
		"organization":   "organ",
		"hopefulness":    "hope",
		"electrical":     "electr",
		"adjustment":     "adjust",
		"café":           "café",
		"Authentication": "authent",
	}
	for i := 0; i < 20; i++ {
		for in, want := range cases {
			if got := s.Stem(in); got != want {
				t.Fatalf("Stem(%q) = %q, want %q", in, got, want)
			}
		}
	}
}

func TestSplitWords(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"hello world", 2},
		{"on-call", 2},
		{"612-555-0134", 3},
		{"snake_case_name", 1},
		{"Sprint23", 1},
	}

	for _, tt := range tests {
		words := splitWords(tt.input)
		if len(words) != tt.expected {
			t.Errorf("splitWords(%q) = %d words, want %d: %v", tt.input, len(words), tt.expected, words)
		}
	}
}
