package domain

// Candidate is an indexed item with an embedding vector of fixed dimension.
// Candidates are never mutated in place; updates are delete-and-reinsert.
type Candidate struct {
	ID        string
	Group     string
	Text      string
	Embedding []float64
}

// ScoredCandidate pairs a candidate with a similarity score for one search.
// Produced fresh on every call, never persisted.
type ScoredCandidate struct {
	Candidate Candidate
	Score     float64
}

// Vectorizer converts free text into a numeric vector representation.
// Implementations may require a fitting phase over the corpus.
type Vectorizer interface {
	Name() string
	Fit(corpus []string) error
	Dimension() int
	Vector(text string) ([]float64, error)
}

// Searcher ranks stored candidates against a query vector.
type Searcher interface {
	Add(c Candidate)
	Search(query []float64, k int) ([]ScoredCandidate, error)
	RemoveByGroup(group string) int
	Clear()
}

// TokenSampler selects the next token identifier from a raw score vector.
// Implementations keep per-session emission history for repetition penalty.
type TokenSampler interface {
	Sample(scores []float64) (int, error)
	Reset()
}
