package rampsim

// Selector implements the two-phase question strategy against a loaded
// corpus.
type Selector struct {
	corpus *Corpus
}

func NewSelector(corpus *Corpus) *Selector {
	return &Selector{corpus: corpus}
}

// Select returns the question for one dispatch.
//
// During the first half of the run (elapsedSecs < totalDurationSecs/2,
// integer division) it cycles through the base questions by request
// index, so given enough requests every base question primes the cache.
// During the second half it cycles through the variations, which should
// resolve against the primed entries by similarity.
//
// The split point is always half the configured duration; earlier
// deployments hardcoded a 30 second threshold, which diverges for any
// duration other than 60 and is not supported here.
//
// Pure and deterministic: identical arguments always yield the same
// question.
func (s *Selector) Select(elapsedSecs, totalDurationSecs, requestIndex int) string {
	if elapsedSecs < totalDurationSecs/2 {
		return s.corpus.primers[requestIndex%len(s.corpus.primers)]
	}
	return s.corpus.variations[requestIndex%len(s.corpus.variations)]
}
