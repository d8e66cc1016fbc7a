package markov

import "time"

// ModelStats holds aggregated statistics for the tables learned by the last
// Train call.
type ModelStats struct {
	Sentences      int       `json:"sentences"`       // Non-empty lines seen by the last training pass.
	TransitionKeys int       `json:"transition_keys"` // Unique word pairs in the transition table.
	Transitions    int       `json:"transitions"`     // Total recorded followers, duplicates included.
	AdjectiveKeys  int       `json:"adjective_keys"`  // Adjectives with at least one noun follower.
	AdjectiveNouns int       `json:"adjective_nouns"` // Total adjective->noun records.
	NounKeys       int       `json:"noun_keys"`       // Nouns with at least one verb follower.
	NounVerbs      int       `json:"noun_verbs"`      // Total noun->verb records.
	TrainedAt      time.Time `json:"trained_at"`      // Zero until the first Train call.
}

// Stats returns a snapshot of the model's current tables.
func (m *Model) Stats() ModelStats {
	t := m.state.Load()
	stats := ModelStats{
		Sentences:      t.sentences,
		TransitionKeys: len(t.transitions),
		AdjectiveKeys:  len(t.adjNoun),
		NounKeys:       len(t.nounVerb),
		TrainedAt:      t.trainedAt,
	}
	for _, followers := range t.transitions {
		stats.Transitions += len(followers)
	}
	for _, nouns := range t.adjNoun {
		stats.AdjectiveNouns += len(nouns)
	}
	for _, verbs := range t.nounVerb {
		stats.NounVerbs += len(verbs)
	}
	return stats
}
