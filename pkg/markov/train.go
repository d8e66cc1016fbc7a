package markov

import (
	"log/slog"
	"time"
)

// Train rebuilds the model from corpus, one utterance per line. All previously
// learned transitions are discarded, so callers must pass the full history
// every time. An empty corpus leaves the model untrained.
func (m *Model) Train(corpus string) {
	start := time.Now()
	t := newTables()

	for line := range Sentences(corpus) {
		cleaned := Clean(line)
		words := Tokenize(cleaned)
		if len(words) == 0 {
			continue
		}
		t.sentences++
		t.addSentence(words)
		t.addTagged(tagSequence(m.tagger, cleaned))
	}
	t.trainedAt = time.Now()

	m.state.Store(t)

	m.logger.Info("Training completed",
		slog.Int("sentences_processed", t.sentences),
		slog.Int("transition_keys", len(t.keys)),
		slog.Int("adjective_keys", len(t.adjNoun)),
		slog.Int("noun_keys", len(t.nounVerb)),
		slog.Duration("elapsed", time.Since(start)),
	)
}

// addSentence records every (w[i-2], w[i-1]) -> w[i] transition. Sentences
// shorter than three words carry no order-2 context and add nothing.
func (t *tables) addSentence(words []string) {
	for i := 2; i < len(words); i++ {
		key := Pair{First: words[i-2], Second: words[i-1]}
		followers, seen := t.transitions[key]
		if !seen {
			t.keys = append(t.keys, key)
		}
		t.transitions[key] = append(followers, words[i])
	}
}

// addTagged records adjective->noun and noun->verb adjacencies.
func (t *tables) addTagged(tagged []taggedToken) {
	for i := 1; i < len(tagged); i++ {
		prev, cur := tagged[i-1], tagged[i]
		switch {
		case prev.class == ClassAdjective && cur.class == ClassNoun:
			t.adjNoun[prev.word] = append(t.adjNoun[prev.word], cur.word)
		case prev.class == ClassNoun && cur.class == ClassVerb:
			t.nounVerb[prev.word] = append(t.nounVerb[prev.word], cur.word)
		}
	}
}
