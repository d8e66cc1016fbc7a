package markov

import (
	"go/build"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// scriptedRand replays a fixed list of values, reducing each modulo n. Once
// the script runs out it keeps returning 0.
type scriptedRand struct {
	values []int
	calls  []int // the n of every IntN call, in order
}

func (s *scriptedRand) IntN(n int) int {
	s.calls = append(s.calls, n)
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v % n
}

// stubTagger classifies whitespace tokens from a fixed table. Tokens missing
// from the table are resolved as ClassOther, tokens listed in unresolved are
// reported with OK false, and terminal punctuation is skipped.
type stubTagger struct {
	classes    map[string]Class
	unresolved map[string]bool
}

func (s stubTagger) Tag(text string) []TaggedWord {
	var out []TaggedWord
	for _, sp := range tokenSpans(text) {
		word := text[sp.start:sp.end]
		if isTerminal(word) {
			continue
		}
		out = append(out, TaggedWord{
			Text:  word,
			Start: sp.start,
			End:   sp.end,
			Class: s.classes[word],
			OK:    !s.unresolved[word],
		})
	}
	return out
}

// animalTagger knows just enough words for the small corpora used in tests.
var animalTagger = stubTagger{classes: map[string]Class{
	"cat":  ClassNoun,
	"dog":  ClassNoun,
	"ball": ClassNoun,
	"sat":  ClassVerb,
	"ran":  ClassVerb,
	"red":  ClassAdjective,
	"big":  ClassAdjective,
}}

// setupTestModel returns a model trained on corpus that draws from the given
// script.
func setupTestModel(t *testing.T, tagger Tagger, corpus string, script ...int) (*Model, *scriptedRand) {
	t.Helper()
	rnd := &scriptedRand{values: script}
	m := NewModel(tagger, WithRand(rnd))
	m.Train(corpus)
	return m, rnd
}

var (
	benchmarkCorpus string
	corpusOnce      sync.Once
)

// createBenchmarkCorpus reads Go source files to create a corpus for benchmarking.
func createBenchmarkCorpus() string {
	corpusOnce.Do(func() {
		var sb strings.Builder
		goRoot := build.Default.GOROOT
		filesToRead := []string{
			filepath.Join(goRoot, "src/net/http/server.go"),
			filepath.Join(goRoot, "src/go/parser/parser.go"),
			filepath.Join(goRoot, "src/encoding/json/encode.go"),
		}

		for _, file := range filesToRead {
			content, err := os.ReadFile(file)
			if err != nil {
				benchmarkCorpus = "this is a fallback corpus for benchmarking. it is not very long but will prevent a crash. "
				return
			}
			sb.Write(content)
			sb.WriteString("\n")
		}
		benchmarkCorpus = sb.String()
	})
	return benchmarkCorpus
}
