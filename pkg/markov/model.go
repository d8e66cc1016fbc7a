package markov

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"
)

// Pair is the order-2 context used as a transition key: two consecutive
// normalized words.
type Pair struct {
	First  string
	Second string
}

// String joins the pair with a single space.
func (p Pair) String() string {
	return p.First + " " + p.Second
}

// tables holds everything learned from one training pass. A tables value is
// never mutated once it has been published to a Model.
type tables struct {
	transitions map[Pair][]string
	keys        []Pair // transition keys in first-seen order
	adjNoun     map[string][]string
	nounVerb    map[string][]string
	sentences   int
	trainedAt   time.Time
}

func newTables() *tables {
	return &tables{
		transitions: make(map[Pair][]string),
		adjNoun:     make(map[string][]string),
		nounVerb:    make(map[string][]string),
	}
}

// Rand is the source of randomness used during generation. *rand.Rand from
// math/rand/v2 satisfies it.
type Rand interface {
	// IntN returns a uniform value in [0, n). n is always positive.
	IntN(n int) int
}

// globalRand forwards to the math/rand/v2 top-level functions.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

const (
	// NotTrainedMessage is returned when a reply is requested before the model
	// has learned any transitions.
	NotTrainedMessage = "I'm still learning. Talk to me some more!"
	// NoResponseMessage is returned when no starting context can be found.
	NoResponseMessage = "I don't know how to respond to that yet."

	// DefaultMinReplyWords and DefaultMaxReplyWords bound the number of words
	// a reply may add after its two-word seed.
	DefaultMinReplyWords = 5
	DefaultMaxReplyWords = 25
)

// Model is an in-memory order-2 Markov chain with an adjective->noun and
// noun->verb bias. Train replaces everything the model knows; it never merges.
//
// A Model does no locking of its own. Train builds its tables off to the side
// and publishes them with a single atomic store, so a reader never sees a
// half-built table, but callers that need train-then-generate to be one step
// must serialize those calls themselves.
type Model struct {
	tagger   Tagger
	rnd      Rand
	minWords int
	maxWords int
	state    atomic.Pointer[tables]
	logger   *slog.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithRand sets the randomness source used by GenerateResponse.
// Default: the math/rand/v2 global generator.
func WithRand(r Rand) Option {
	return func(m *Model) {
		if r != nil {
			m.rnd = r
		}
	}
}

// WithReplyLength sets the inclusive range the number of generated words is
// drawn from, not counting the two seed words.
// Default: 5 to 25.
func WithReplyLength(minWords, maxWords int) Option {
	return func(m *Model) {
		if minWords < 0 {
			minWords = 0
		}
		if maxWords < minWords {
			maxWords = minWords
		}
		m.minWords = minWords
		m.maxWords = maxWords
	}
}

// NewModel creates an untrained model that uses tagger to classify words. A
// nil tagger disables the grammatical bias entirely.
func NewModel(tagger Tagger, opts ...Option) *Model {
	if tagger == nil {
		tagger = nopTagger{}
	}
	m := &Model{
		tagger:   tagger,
		rnd:      globalRand{},
		minWords: DefaultMinReplyWords,
		maxWords: DefaultMaxReplyWords,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.state.Store(newTables())
	return m
}

// SetLogger sets the logger for the Model. By default, all logs are discarded.
func (m *Model) SetLogger(logger *slog.Logger) {
	if logger != nil {
		m.logger = logger
	}
}

// Trained reports whether the model holds at least one transition.
func (m *Model) Trained() bool {
	return len(m.state.Load().transitions) > 0
}

// Followers returns a copy of the follower list recorded for the pair
// (first, second), duplicates included. It returns nil for an unknown pair.
func (m *Model) Followers(first, second string) []string {
	return cloneList(m.state.Load().transitions[Pair{First: first, Second: second}])
}

// Keys returns every transition key in the order it was first seen.
func (m *Model) Keys() []Pair {
	t := m.state.Load()
	keys := make([]Pair, len(t.keys))
	copy(keys, t.keys)
	return keys
}

// AdjectiveNouns returns the nouns recorded as following the adjective adj.
func (m *Model) AdjectiveNouns(adj string) []string {
	return cloneList(m.state.Load().adjNoun[adj])
}

// NounVerbs returns the verbs recorded as following the noun noun.
func (m *Model) NounVerbs(noun string) []string {
	return cloneList(m.state.Load().nounVerb[noun])
}

func cloneList(list []string) []string {
	if list == nil {
		return nil
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}
