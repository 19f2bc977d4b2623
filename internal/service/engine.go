// Package service assembles the engine the console exposes: a vectorizer
// collaborator, the ranked retriever and one sampling session.
package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"selekt/internal/domain"
	"selekt/internal/retriever"
	"selekt/internal/sampler"
)

// Engine orchestrates ingestion, retrieval and sampling for one session.
type Engine struct {
	vectorizer domain.Vectorizer
	store      *retriever.Store
	sampler    *sampler.Sampler
	policy     sampler.Policy
	searchTopK int
	log        logr.Logger
}

// NewEngine wires the engine components together.
func NewEngine(vectorizer domain.Vectorizer, store *retriever.Store, smp *sampler.Sampler, policy sampler.Policy, searchTopK int, log logr.Logger) *Engine {
	return &Engine{
		vectorizer: vectorizer,
		store:      store,
		sampler:    smp,
		policy:     policy,
		searchTopK: searchTopK,
		log:        log,
	}
}

// IngestDocuments reads the given .txt files (glob patterns allowed),
// splits them into paragraph passages, fits the vectorizer over the whole
// corpus and indexes every passage. The store is rebuilt from scratch.
func (e *Engine) IngestDocuments(paths []string) (string, error) {
	type passage struct {
		group string
		text  string
	}
	var passages []passage
	files := 0
	for _, p := range paths {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if !strings.HasSuffix(strings.ToLower(m), ".txt") {
				continue
			}
			data, err := os.ReadFile(m)
			if err != nil {
				return "", err
			}
			files++
			for _, para := range splitParagraphs(string(data)) {
				passages = append(passages, passage{group: m, text: para})
			}
		}
	}
	if len(passages) == 0 {
		return "", fmt.Errorf("no .txt documents found")
	}

	corpus := make([]string, len(passages))
	for i, p := range passages {
		corpus[i] = p.text
	}
	if err := e.vectorizer.Fit(corpus); err != nil {
		return "", fmt.Errorf("fit vectorizer: %w", err)
	}

	e.store.Clear()
	candidates := make([]domain.Candidate, 0, len(passages))
	for _, p := range passages {
		vec, err := e.vectorizer.Vector(p.text)
		if err != nil {
			return "", fmt.Errorf("embed passage: %w", err)
		}
		candidates = append(candidates, domain.Candidate{
			ID:        uuid.NewString(),
			Group:     p.group,
			Text:      p.text,
			Embedding: vec,
		})
	}
	e.store.AddBatch(candidates)
	e.log.Info("indexed documents", "files", files, "passages", len(passages), "dimension", e.vectorizer.Dimension())
	return fmt.Sprintf("Indexed %d passages from %d files (dimension %d).", len(passages), files, e.vectorizer.Dimension()), nil
}

// Query embeds the query text and returns the top-k ranked passages.
// k <= 0 falls back to the configured default.
func (e *Engine) Query(query string, k int) ([]domain.ScoredCandidate, error) {
	if k <= 0 {
		k = e.searchTopK
	}
	vec, err := e.vectorizer.Vector(query)
	if err != nil {
		return nil, err
	}
	return e.store.Search(vec, k)
}

// RemoveDocument drops every passage ingested from the given file path and
// returns how many were removed.
func (e *Engine) RemoveDocument(path string) int {
	return e.store.RemoveByGroup(path)
}

// SampleVector runs one selection step over a raw score vector using the
// configured policy.
func (e *Engine) SampleVector(scores []float64) (int, error) {
	return e.sampler.SampleWith(scores, e.policy)
}

// Distribution reports the post-filtering probability vector for a raw
// score vector without advancing the session.
func (e *Engine) Distribution(scores []float64) ([]float64, error) {
	return e.sampler.Distribution(scores, e.policy)
}

// History returns the tokens emitted so far in this session.
func (e *Engine) History() []int {
	return e.sampler.Emitted()
}

// ResetSession clears the sampling history.
func (e *Engine) ResetSession() {
	e.sampler.Reset()
}

// Policy returns the sampling policy in effect.
func (e *Engine) Policy() sampler.Policy {
	return e.policy
}

// splitParagraphs splits text on blank lines and trims whitespace,
// dropping empty segments.
func splitParagraphs(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, para := range strings.Split(normalized, "\n\n") {
		para = strings.TrimSpace(para)
		if para != "" {
			out = append(out, para)
		}
	}
	return out
}
