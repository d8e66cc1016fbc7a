package markov

import (
	"iter"
	"strings"
	"unicode"
)

// Class is the coarse grammatical class of a word.
type Class uint8

const (
	ClassOther Class = iota
	ClassNoun
	ClassVerb
	ClassAdjective
)

// String returns the lower-case name of the class.
func (c Class) String() string {
	switch c {
	case ClassNoun:
		return "noun"
	case ClassVerb:
		return "verb"
	case ClassAdjective:
		return "adjective"
	default:
		return "other"
	}
}

// TaggedWord is a single word unit reported by a Tagger. Start and End are the
// byte offsets of the unit within the tagged text. OK is false when the tagger
// could not resolve a class for the unit.
type TaggedWord struct {
	Text       string
	Start, End int
	Class      Class
	OK         bool
}

// Tagger is the lexical classification capability the model relies on. Given
// a span of text it returns, in order, one TaggedWord per word unit it found.
// Implementations are free to skip punctuation.
type Tagger interface {
	Tag(text string) []TaggedWord
}

// nopTagger resolves nothing. It is used when a Model is built without a tagger,
// which leaves both grammatical-role tables empty.
type nopTagger struct{}

func (nopTagger) Tag(string) []TaggedWord { return nil }

// cleanReplacer drops quotes and brackets, flattens newlines and detaches
// sentence-ending punctuation so it survives tokenization as its own word.
var cleanReplacer = strings.NewReplacer(
	`"`, "",
	`'`, "",
	"“", "",
	"”", "",
	"‘", "",
	"’", "",
	"(", "",
	")", "",
	"[", "",
	"]", "",
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
	".", " .",
	"?", " ?",
	"!", " !",
)

// Clean normalizes raw text for tokenization. It lower-cases the text, strips
// quotes, parentheses and square brackets, turns newlines into spaces and puts
// a space in front of every '.', '?' and '!'.
func Clean(text string) string {
	return cleanReplacer.Replace(strings.ToLower(text))
}

// Tokenize splits cleaned text on whitespace. Empty tokens are dropped and
// order is preserved.
func Tokenize(cleaned string) []string {
	return strings.Fields(cleaned)
}

// Sentences lazily yields every line of corpus, split on any newline sequence.
// Lines are yielded raw; callers clean them one at a time.
func Sentences(corpus string) iter.Seq[string] {
	return func(yield func(string) bool) {
		rest := corpus
		for len(rest) > 0 {
			i := strings.IndexAny(rest, "\r\n")
			if i < 0 {
				yield(rest)
				return
			}
			if !yield(rest[:i]) {
				return
			}
			if rest[i] == '\r' && i+1 < len(rest) && rest[i+1] == '\n' {
				i++
			}
			rest = rest[i+1:]
		}
	}
}

// taggedToken is a whitespace token paired with the class the tagger assigned
// to it.
type taggedToken struct {
	word  string
	class Class
}

// tagSequence tags a cleaned sentence and aligns the tagger's word units back
// onto its whitespace tokens by byte offset. A token takes the class of the
// first unit that starts inside it; tokens whose first unit is unresolved, or
// that hold no unit at all, are left out.
func tagSequence(tagger Tagger, cleaned string) []taggedToken {
	units := tagger.Tag(cleaned)
	if len(units) == 0 {
		return nil
	}
	spans := tokenSpans(cleaned)

	out := make([]taggedToken, 0, len(spans))
	ti := 0
	lastAligned := -1
	for _, unit := range units {
		for ti < len(spans) && spans[ti].end <= unit.Start {
			ti++
		}
		if ti == len(spans) {
			break
		}
		if unit.Start < spans[ti].start || ti == lastAligned {
			// Either the unit sits in whitespace or its token was already decided.
			continue
		}
		lastAligned = ti
		if !unit.OK {
			continue
		}
		out = append(out, taggedToken{word: cleaned[spans[ti].start:spans[ti].end], class: unit.Class})
	}
	return out
}

type span struct{ start, end int }

// tokenSpans returns the byte ranges strings.Fields would cut cleaned into.
func tokenSpans(cleaned string) []span {
	var spans []span
	start := -1
	for i, r := range cleaned {
		if unicode.IsSpace(r) {
			if start >= 0 {
				spans = append(spans, span{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, span{start, len(cleaned)})
	}
	return spans
}

// classOf tags a single word on its own, out of any sentence context.
func classOf(tagger Tagger, word string) Class {
	for _, unit := range tagger.Tag(word) {
		if unit.OK {
			return unit.Class
		}
	}
	return ClassOther
}
