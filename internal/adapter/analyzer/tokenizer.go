package analyzer

import (
	"strings"
	"unicode"
)

// Tokenizer splits text into tokens with optional stemming and stopword removal.
type Tokenizer struct {
	stemmer   *PorterStemmer
	stopwords map[string]struct{}
	useStem   bool
}

// NewTokenizer creates a new Tokenizer.
func NewTokenizer(useStemming bool) *Tokenizer {
	var stemmer *PorterStemmer
	if useStemming {
		stemmer = NewPorterStemmer()
	}
	return &Tokenizer{
		stemmer:   stemmer,
		stopwords: defaultStopwords(),
		useStem:   useStemming,
	}
}

// Tokenize splits text into tokens.
func (t *Tokenizer) Tokenize(text string) []string {
	words := splitWords(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		word = strings.ToLower(word)
		if len(word) < 2 {
			continue
		}
		if _, isStop := t.stopwords[word]; isStop {
			continue
		}
		if t.useStem && t.stemmer != nil {
			word = t.stemmer.Stem(word)
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// Features returns the weighted sparse features of text used for feature
// hashing: every term, and every adjacent term pair at half weight. Stopwords
// are dropped before pairing, so "on call" and "on-call" both yield "call".
func (t *Tokenizer) Features(text string) map[string]float64 {
	terms := t.Tokenize(text)
	features := make(map[string]float64, len(terms)*2)
	for i, term := range terms {
		features[term]++
		if i > 0 {
			features[terms[i-1]+" "+term] += 0.5
		}
	}
	return features
}

// splitWords splits text on anything that is not a letter, digit or underscore.
func splitWords(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			current.WriteRune(r)
		} else {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}

// defaultStopwords returns a set of common English stopwords.
func defaultStopwords() map[string]struct{} {
	stops := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for",
		"from", "has", "he", "in", "is", "it", "its", "of", "on",
		"that", "the", "to", "was", "were", "will", "with", "this",
		"have", "had", "but", "not", "you", "your", "we", "our",
		"they", "their", "she", "her", "his", "if", "or", "so",
		"no", "can", "do", "does", "did", "been", "being", "would",
		"could", "should", "may", "might", "must", "shall", "which",
		"who", "whom", "what", "when", "where", "why", "how", "all",
		"each", "every", "both", "few", "more", "most", "other",
		"some", "such", "than", "too", "very", "just", "also",
	}
	m := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		m[s] = struct{}{}
	}
	return m
}
