package rampsim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// Scenario is one entry of the seed-question document: a canonical
// question that primes the semantic cache, plus paraphrases of it that
// are expected to hit the cached entry.
type Scenario struct {
	ID           string   `json:"id"`
	Category     string   `json:"category"`
	BaseQuestion string   `json:"base_question"`
	Variations   []string `json:"variations"`
}

type seedDocument struct {
	Version             string     `json:"version"`
	Description         string     `json:"description"`
	SimilarityThreshold float64    `json:"similarity-threshold"`
	Scenarios           []Scenario `json:"scenarios"`
}

var (
	ErrNoScenarios = errors.New("seed document contains no scenarios")
	ErrNoVariation = errors.New("seed document contains no variations")
)

// Corpus holds the two question lists a run draws from. It is immutable
// once built; concurrent reads need no synchronization.
type Corpus struct {
	primers    []string
	variations []string
}

// ParseCorpus decodes a seed-question document and splits it into
// primers (one base question per scenario, document order) and
// variations (all paraphrases, document order).
func ParseCorpus(r io.Reader) (*Corpus, error) {
	var doc seedDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse seed questions JSON: %w", err)
	}

	if len(doc.Scenarios) == 0 {
		return nil, ErrNoScenarios
	}

	c := &Corpus{
		primers:    make([]string, 0, len(doc.Scenarios)),
		variations: make([]string, 0, len(doc.Scenarios)),
	}

	for _, scenario := range doc.Scenarios {
		if scenario.BaseQuestion == "" {
			return nil, fmt.Errorf("scenario %q has an empty base question", scenario.ID)
		}

		c.primers = append(c.primers, scenario.BaseQuestion)
		c.variations = append(c.variations, scenario.Variations...)
	}

	if len(c.variations) == 0 {
		return nil, ErrNoVariation
	}

	return c, nil
}

func (c *Corpus) NumPrimers() int {
	return len(c.primers)
}

func (c *Corpus) NumVariations() int {
	return len(c.variations)
}

// CorpusSource fetches the raw seed-question document from wherever the
// deployment keeps it.
type CorpusSource interface {
	Fetch(ctx context.Context) (io.ReadCloser, error)
}

// FileSource reads the seed-question document from the local filesystem.
type FileSource struct {
	Path string
}

func (s *FileSource) Fetch(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed questions file: %w", err)
	}
	return f, nil
}

// CorpusLoader fetches and parses the corpus at most once per process.
// Concurrent callers share one fetch; a failed fetch is not memoized so
// the next run retries.
type CorpusLoader struct {
	source CorpusSource

	mu     sync.Mutex
	corpus *Corpus
}

func NewCorpusLoader(source CorpusSource) *CorpusLoader {
	return &CorpusLoader{source: source}
}

func (l *CorpusLoader) Load(ctx context.Context) (*Corpus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.corpus != nil {
		return l.corpus, nil
	}

	body, err := l.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	corpus, err := ParseCorpus(body)
	if err != nil {
		return nil, err
	}

	Logger.Infow(
		"loaded seed questions",
		"num_primers", corpus.NumPrimers(),
		"num_variations", corpus.NumVariations(),
	)

	l.corpus = corpus
	return corpus, nil
}
