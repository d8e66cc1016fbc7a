// Package pos is a small rule-based English part-of-speech tagger. It looks
// words up in a built-in lexicon, falls back to suffix heuristics, and then
// corrects ambiguous words from their left neighbour. Its output collapses to
// the coarse classes used by package markov.
package pos

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/CTAG07/Parrot/pkg/markov"
)

// Tag is a fine-grained part-of-speech tag.
type Tag uint8

const (
	Unknown Tag = iota
	Noun
	Verb
	Adjective
	Adverb
	Determiner
	Pronoun
	Preposition
	Conjunction
	Auxiliary
	Modal
	Number
	Interjection
)

var tagNames = [...]string{
	Unknown:      "unknown",
	Noun:         "noun",
	Verb:         "verb",
	Adjective:    "adjective",
	Adverb:       "adverb",
	Determiner:   "determiner",
	Pronoun:      "pronoun",
	Preposition:  "preposition",
	Conjunction:  "conjunction",
	Auxiliary:    "auxiliary",
	Modal:        "modal",
	Number:       "number",
	Interjection: "interjection",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "unknown"
}

// Class maps the tag onto the coarse markov classes.
func (t Tag) Class() markov.Class {
	switch t {
	case Noun:
		return markov.ClassNoun
	case Verb:
		return markov.ClassVerb
	case Adjective:
		return markov.ClassAdjective
	default:
		return markov.ClassOther
	}
}

func (t Tag) isVerbal() bool  { return t == Verb }
func (t Tag) isNominal() bool { return t == Noun }

// Token is one word unit found by Tokens, with its byte offsets.
type Token struct {
	Text       string
	Start, End int
}

// Tagger assigns tags to word units. The zero value is not usable; use
// NewTagger. A Tagger is safe for concurrent use once built.
type Tagger struct {
	lexicon map[string]Tag
}

// Option configures a Tagger.
type Option func(*Tagger)

// WithLexicon adds entries to, or overrides entries of, the built-in lexicon.
// Keys are matched case-insensitively.
func WithLexicon(entries map[string]Tag) Option {
	return func(t *Tagger) {
		for word, tag := range entries {
			t.lexicon[strings.ToLower(word)] = tag
		}
	}
}

// NewTagger creates a tagger with the default lexicon.
func NewTagger(opts ...Option) *Tagger {
	t := &Tagger{lexicon: defaultLexicon()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tokens splits text into word units: runs of letters, digits, apostrophes
// and inner hyphens. Everything else, punctuation included, separates units
// and is not reported.
func Tokens(text string) []Token {
	var tokens []Token
	start := -1
	for i, r := range text {
		if isWordRune(r) || (r == '-' && start >= 0 && nextIsWord(text, i+1)) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, Token{Text: text[start:i], Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, Token{Text: text[start:], Start: start, End: len(text)})
	}
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '’'
}

func nextIsWord(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return isWordRune(r)
}

// TagWords tags a sequence of words. The result is parallel to words.
// Tagging runs in two passes: a lexicon and suffix baseline, then contextual
// corrections driven by the previous word.
func (t *Tagger) TagWords(words []string) []Tag {
	tags := make([]Tag, len(words))
	for i, word := range words {
		tags[i] = t.baseline(word)
	}

	for i := 1; i < len(tags); i++ {
		prev, cur := tags[i-1], tags[i]
		prevWord := strings.ToLower(words[i-1])
		_, fixed := t.lexicon[strings.ToLower(words[i])]

		switch {
		// "the [run]", "a fast [attack]"
		case (prev == Determiner || prev == Adjective) && cur.isVerbal() && !fixed:
			tags[i] = Noun
		// "can [dance]", "will [rain]"
		case prev == Modal && cur.isNominal():
			tags[i] = Verb
		// "want to [play]"
		case prevWord == "to" && cur.isNominal() && !fixed:
			tags[i] = Verb
		// "cup of [drink]"
		case prevWord == "of" && cur.isVerbal() && !fixed:
			tags[i] = Noun
		}
	}
	return tags
}

// Tag implements markov.Tagger. Units the tagger cannot place, such as mixed
// letters and digits, are reported with OK set to false.
func (t *Tagger) Tag(text string) []markov.TaggedWord {
	tokens := Tokens(text)
	if len(tokens) == 0 {
		return nil
	}
	words := make([]string, len(tokens))
	for i, tok := range tokens {
		words[i] = tok.Text
	}
	tags := t.TagWords(words)

	out := make([]markov.TaggedWord, len(tokens))
	for i, tok := range tokens {
		out[i] = markov.TaggedWord{
			Text:  tok.Text,
			Start: tok.Start,
			End:   tok.End,
			Class: tags[i].Class(),
			OK:    tags[i] != Unknown,
		}
	}
	return out
}

func (t *Tagger) baseline(word string) Tag {
	lower := strings.ToLower(word)
	lower = strings.Trim(lower, "'’")
	if lower == "" {
		return Unknown
	}
	if tag, ok := t.lexicon[lower]; ok {
		return tag
	}
	return inferTag(lower)
}

// inferTag guesses a tag from the shape and suffix of an out-of-lexicon word.
func inferTag(lower string) Tag {
	var letters, digits int
	for _, r := range lower {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		}
	}
	switch {
	case digits > 0 && letters == 0:
		return Number
	case digits > 0:
		return Unknown
	case letters == 0:
		return Unknown
	}

	switch {
	case strings.HasSuffix(lower, "ly") && len(lower) > 4:
		return Adverb
	case hasAnySuffix(lower, "ing", "ed", "ize", "ise", "ify"):
		return Verb
	case hasAnySuffix(lower, "ful", "less", "ous", "ive", "able", "ible", "ish", "ic"):
		return Adjective
	}
	return Noun
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if len(s) > len(suffix)+1 && strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}
