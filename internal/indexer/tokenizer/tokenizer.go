// Package tokenizer provides text tokenisation for the search engine.
// It folds accents, drops everything that is not an ASCII letter or
// whitespace, lower-cases input, splits on whitespace, and applies the
// English Snowball stemmer.
package tokenizer

import (
	"slices"
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/kljensen/snowball/english"
	"golang.org/x/text/unicode/norm"
)

// DefaultCacheSize is the number of stems the shared Stemmer remembers.
const DefaultCacheSize = 50000

var defaultStemmer = NewStemmer(DefaultCacheSize)

// Clean returns text decomposed to NFD with every rune that is not an ASCII
// letter or whitespace removed, lower-cased.
func Clean(text string) string {
	text = norm.NFD.String(text)
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Parse cleans text and splits it into words. Words are not stemmed.
func Parse(text string) []string {
	return strings.Fields(Clean(text))
}

// Stemmer canonicalises words to their Snowball English stem. It is safe for
// concurrent use.
type Stemmer struct {
	cache *lru.Cache[string, string]
}

// NewStemmer creates a Stemmer remembering up to cacheSize stems.
func NewStemmer(cacheSize int) *Stemmer {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, _ := lru.New[string, string](cacheSize)
	return &Stemmer{cache: cache}
}

// Stem returns the stem of word.
func (s *Stemmer) Stem(word string) string {
	if stem, ok := s.cache.Get(word); ok {
		return stem
	}
	stem := english.Stem(word, true)
	s.cache.Add(word, stem)
	return stem
}

// Stem stems word with the shared Stemmer.
func Stem(word string) string {
	return defaultStemmer.Stem(word)
}

// ListStems parses line and stems every word, keeping order and duplicates.
func ListStems(line string, stem func(string) string) []string {
	words := Parse(line)
	stems := make([]string, 0, len(words))
	for _, w := range words {
		stems = append(stems, stem(w))
	}
	return stems
}

// UniqueStems parses line and returns its distinct stems in ascending order.
func UniqueStems(line string, stem func(string) string) []string {
	stems := ListStems(line, stem)
	slices.Sort(stems)
	return slices.Compact(stems)
}
