package markov

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"
)

// stopReason records why the generation loop ended.
type stopReason int

const (
	stopLengthExhausted stopReason = iota
	stopDeadEnd
	stopPunctuation
)

func (r stopReason) String() string {
	switch r {
	case stopDeadEnd:
		return "dead_end"
	case stopPunctuation:
		return "punctuation"
	default:
		return "length_exhausted"
	}
}

// punctuationJoiner reattaches the sentence-ending punctuation Clean detached.
var punctuationJoiner = strings.NewReplacer(" .", ".", " ?", "?", " !", "!")

// GenerateResponse produces a reply to input by walking the learned tables.
//
// The walk starts from the last two words of input when the model knows that
// pair, and from a random known pair otherwise. At every step a fair coin
// decides whether to try the grammatical bias first: an adjective is followed
// by one of its recorded nouns, a noun by one of its recorded verbs. When the
// bias does not apply the next word comes from the trigram table. The walk
// stops at a dead end, after '.', '?' or '!', or once the drawn length is used
// up. Output is randomized; identical calls need not agree.
func (m *Model) GenerateResponse(input string) string {
	t := m.state.Load()
	if len(t.transitions) == 0 {
		return NotTrainedMessage
	}

	seed, fromInput := t.seed(Tokenize(Clean(input)), m.rnd)
	if !fromInput {
		if len(t.keys) == 0 {
			return NoResponseMessage
		}
		m.logger.Debug("Input context unknown, seeding from a random pair",
			slog.String("seed", seed.String()),
		)
	}

	words := []string{seed.First, seed.Second}
	target := m.minWords + m.rnd.IntN(m.maxWords-m.minWords+1)
	context := seed
	reason := stopLengthExhausted

	for generated := 0; generated < target; generated++ {
		next, ok := m.nextWord(t, context)
		if !ok {
			reason = stopDeadEnd
			break
		}
		words = append(words, next)
		if isTerminal(next) {
			reason = stopPunctuation
			break
		}
		context = Pair{First: context.Second, Second: next}
	}

	m.logger.Debug("Generation terminated",
		slog.String("reason", reason.String()),
		slog.String("seed", seed.String()),
		slog.Int("target_length", target),
		slog.Int("generated_length", len(words)-2),
	)

	return formatReply(words)
}

// seed picks the starting context. The last two input words are used when
// they form a known key; otherwise a key is drawn uniformly at random. The
// returned flag reports whether the seed came from the input.
func (t *tables) seed(input []string, rnd Rand) (Pair, bool) {
	if n := len(input); n >= 2 {
		key := Pair{First: input[n-2], Second: input[n-1]}
		if _, ok := t.transitions[key]; ok {
			return key, true
		}
	}
	if len(t.keys) == 0 {
		return Pair{}, false
	}
	return t.keys[rnd.IntN(len(t.keys))], false
}

// nextWord chooses the word that follows context, trying the grammatical bias
// before the plain trigram lookup. It reports false on a dead end.
func (m *Model) nextWord(t *tables, context Pair) (string, bool) {
	last := context.Second
	class := classOf(m.tagger, last)
	if m.rnd.IntN(2) == 0 {
		switch {
		case class == ClassAdjective && len(t.adjNoun[last]) > 0:
			return pick(t.adjNoun[last], m.rnd), true
		case class == ClassNoun && len(t.nounVerb[last]) > 0:
			return pick(t.nounVerb[last], m.rnd), true
		}
	}
	followers := t.transitions[context]
	if len(followers) == 0 {
		return "", false
	}
	return pick(followers, m.rnd), true
}

// pick draws uniformly from list. Duplicates in list weight the draw.
func pick(list []string, rnd Rand) string {
	return list[rnd.IntN(len(list))]
}

func isTerminal(word string) bool {
	return word == "." || word == "?" || word == "!"
}

// formatReply joins words, reattaches terminal punctuation and capitalizes the
// first character.
func formatReply(words []string) string {
	reply := strings.TrimSpace(punctuationJoiner.Replace(strings.Join(words, " ")))
	r, size := utf8.DecodeRuneInString(reply)
	if r == utf8.RuneError {
		return reply
	}
	return string(unicode.ToUpper(r)) + reply[size:]
}
