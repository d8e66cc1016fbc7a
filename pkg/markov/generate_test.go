package markov

import (
	"bytes"
	"log/slog"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGenerateResponse(t *testing.T) {
	// target draw, coin (no bias), pick "sat", coin, pick "."
	m, rnd := setupTestModel(t, nil, "the cat sat.\nthe cat ran.", 0, 1, 0, 1, 0)

	got := m.GenerateResponse("I saw the cat")
	if got != "The cat sat." {
		t.Errorf("GenerateResponse() = %q, want %q", got, "The cat sat.")
	}

	// The seed came from the input, so the first draw is the target length.
	wantCalls := []int{DefaultMaxReplyWords - DefaultMinReplyWords + 1, 2, 2, 2, 1}
	if diff := cmp.Diff(wantCalls, rnd.calls); diff != "" {
		t.Errorf("random draws mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateResponse_NounVerbBias(t *testing.T) {
	corpus := "the cat sat.\nmy cat ran."

	// "the cat ran" never appears in the corpus; the noun->verb table supplies it.
	m, _ := setupTestModel(t, animalTagger, corpus, 0, 0, 1, 0, 0)
	if got := m.GenerateResponse("the cat"); got != "The cat ran." {
		t.Errorf("with bias: got %q, want %q", got, "The cat ran.")
	}

	// Losing the coin toss falls back to the trigram table.
	m, _ = setupTestModel(t, animalTagger, corpus, 0, 1, 0)
	if got := m.GenerateResponse("the cat"); got != "The cat sat." {
		t.Errorf("without bias: got %q, want %q", got, "The cat sat.")
	}
}

func TestGenerateResponse_AdjectiveNounBias(t *testing.T) {
	corpus := "i saw a big dog.\nthe big ball."

	m, _ := setupTestModel(t, animalTagger, corpus, 0, 0, 0, 1, 0)
	if got := m.GenerateResponse("the big"); got != "The big dog." {
		t.Errorf("GenerateResponse() = %q, want %q", got, "The big dog.")
	}
}

func TestGenerateResponse_DeadEnd(t *testing.T) {
	var buf bytes.Buffer
	m, _ := setupTestModel(t, nil, "one two three")
	m.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	if got := m.GenerateResponse("one two"); got != "One two three" {
		t.Errorf("GenerateResponse() = %q, want %q", got, "One two three")
	}
	if !strings.Contains(buf.String(), "reason=dead_end") {
		t.Errorf("expected a dead_end termination log, got:\n%s", buf.String())
	}
}

func TestGenerateResponse_Punctuation(t *testing.T) {
	var buf bytes.Buffer
	m, _ := setupTestModel(t, nil, "hi there.")
	m.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	if got := m.GenerateResponse("hi there"); got != "Hi there." {
		t.Errorf("GenerateResponse() = %q, want %q", got, "Hi there.")
	}
	if !strings.Contains(buf.String(), "reason=punctuation") {
		t.Errorf("expected a punctuation termination log, got:\n%s", buf.String())
	}
}

func TestGenerateResponse_LengthExhausted(t *testing.T) {
	var buf bytes.Buffer
	rnd := &scriptedRand{}
	m := NewModel(nil, WithRand(rnd), WithReplyLength(3, 3))
	m.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	m.Train("a a a a a a")

	if got := m.GenerateResponse("a a"); got != "A a a a a" {
		t.Errorf("GenerateResponse() = %q, want %q", got, "A a a a a")
	}
	if !strings.Contains(buf.String(), "reason=length_exhausted") {
		t.Errorf("expected a length_exhausted termination log, got:\n%s", buf.String())
	}
}

func TestGenerateResponse_RandomSeed(t *testing.T) {
	m, rnd := setupTestModel(t, nil, "hi there.\nbye now.", 1)

	if got := m.GenerateResponse("xyzzy"); got != "Bye now." {
		t.Errorf("GenerateResponse() = %q, want %q", got, "Bye now.")
	}
	if len(rnd.calls) == 0 || rnd.calls[0] != 2 {
		t.Errorf("expected the first draw to choose among 2 keys, got calls %v", rnd.calls)
	}
}

func TestGenerateResponse_UnknownPairFallsBack(t *testing.T) {
	// The last two input words are unknown even though "the cat" is known.
	m, rnd := setupTestModel(t, nil, "the cat sat.", 0)

	if got := m.GenerateResponse("the cat is here"); got != "The cat sat." {
		t.Errorf("GenerateResponse() = %q, want %q", got, "The cat sat.")
	}
	if len(rnd.calls) == 0 || rnd.calls[0] != 2 {
		t.Errorf("expected a random seed draw over 2 keys first, got calls %v", rnd.calls)
	}
}

func TestGenerateResponse_Untrained(t *testing.T) {
	m := NewModel(nil)
	if got := m.GenerateResponse("hello there"); got != NotTrainedMessage {
		t.Errorf("GenerateResponse() = %q, want %q", got, NotTrainedMessage)
	}
}

func TestGenerateResponse_Properties(t *testing.T) {
	corpus := strings.Join([]string{
		"the cat sat on the red ball.",
		"the big dog ran after the cat!",
		"the cat ran away?",
		"my dog sat by the big red ball.",
		"did the cat see the dog?",
	}, "\n")
	m := NewModel(animalTagger, WithRand(rand.New(rand.NewPCG(1, 2))))
	m.Train(corpus)

	for i := 0; i < 200; i++ {
		reply := m.GenerateResponse("look at the cat")
		if !strings.HasPrefix(reply, "The cat") {
			t.Fatalf("reply %q does not start from the input pair", reply)
		}
		for _, detached := range []string{" .", " ?", " !"} {
			if strings.Contains(reply, detached) {
				t.Fatalf("reply %q contains detached punctuation %q", reply, detached)
			}
		}
		if n := len(strings.Fields(reply)); n > DefaultMaxReplyWords+2 {
			t.Fatalf("reply %q has %d words, want at most %d", reply, n, DefaultMaxReplyWords+2)
		}
	}
}

func TestFormatReply(t *testing.T) {
	testCases := []struct {
		words []string
		want  string
	}{
		{words: []string{"hi", "there", "."}, want: "Hi there."},
		{words: []string{"why", "not", "?"}, want: "Why not?"},
		{words: []string{"wow", "!", "ok"}, want: "Wow! ok"},
		{words: []string{"éclair", "time"}, want: "Éclair time"},
	}
	for _, tc := range testCases {
		if got := formatReply(tc.words); got != tc.want {
			t.Errorf("formatReply(%q) = %q, want %q", tc.words, got, tc.want)
		}
	}
}

func BenchmarkGenerateResponse(b *testing.B) {
	m := NewModel(animalTagger)
	m.Train(createBenchmarkCorpus())

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.GenerateResponse("the cat")
	}
}
