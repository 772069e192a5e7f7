package classifier

import (
	"math"
	"sort"
	"sync"

	"financeos/engine/internal/textutils"

	"github.com/jbrukh/bayesian"
)

// minLearnedSamples is the training volume required before the learned
// strategy starts voting.
const minLearnedSamples = 10

// minLearnedMargin is the log-score lead the winning class must hold over
// the runner-up. Narrow leads defer to the fallback.
const minLearnedMargin = 1.0

// LearnedStrategy classifies from the user's confirmed history with a naive
// Bayes model. It only answers once enough samples exist and the winning
// class has a clear lead; otherwise it declines and the chain moves on.
//
// The underlying classifier needs its class list up front, so the strategy
// keeps raw samples and rebuilds the model lazily when training added a
// class since the last build.
type LearnedStrategy struct {
	mu      sync.Mutex
	samples []sample
	model   *bayesian.Classifier
	classes []bayesian.Class
	stale   bool
}

type sample struct {
	tokens     []string
	categoryID string
}

// NewLearnedStrategy creates an empty learned strategy.
func NewLearnedStrategy() *LearnedStrategy {
	return &LearnedStrategy{}
}

func (s *LearnedStrategy) Name() string { return "learned" }

// Train records one confirmed (text, category) pair. Called by the engine
// whenever the user confirms or corrects a classification.
func (s *LearnedStrategy) Train(text, categoryID string) {
	tokens := trainTokens(text)
	if len(tokens) == 0 || categoryID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = append(s.samples, sample{tokens: tokens, categoryID: categoryID})
	s.stale = true
}

// Classify answers only when the model is trained and confident.
func (s *LearnedStrategy) Classify(req *Request) (Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := trainTokens(req.Text)
	if len(s.samples) < minLearnedSamples || len(query) == 0 {
		return Match{}, false
	}
	s.rebuild()
	if s.model == nil {
		return Match{}, false
	}

	scores, best, strict := s.model.LogScores(query)
	if !strict {
		return Match{}, false
	}
	runnerUp := math.Inf(-1)
	for i, score := range scores {
		if i != best && score > runnerUp {
			runnerUp = score
		}
	}
	if scores[best]-runnerUp < minLearnedMargin {
		return Match{}, false
	}

	id := string(s.classes[best])
	for _, c := range req.Categories {
		if c.ID == id {
			return Match{CategoryID: c.ID, Category: c.Name, Strategy: s.Name(), Confidence: 0.8}, true
		}
	}
	return Match{}, false
}

// rebuild retrains the bayesian model from the sample log. Requires at
// least two distinct classes, the library's minimum.
func (s *LearnedStrategy) rebuild() {
	if !s.stale && s.model != nil {
		return
	}

	seen := make(map[string]bool)
	var classes []bayesian.Class
	for _, smp := range s.samples {
		if !seen[smp.categoryID] {
			seen[smp.categoryID] = true
			classes = append(classes, bayesian.Class(smp.categoryID))
		}
	}
	if len(classes) < 2 {
		s.model = nil
		s.stale = false
		return
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	model := bayesian.NewClassifier(classes...)
	for _, smp := range s.samples {
		model.Learn(smp.tokens, bayesian.Class(smp.categoryID))
	}
	s.model = model
	s.classes = classes
	s.stale = false
}

// trainTokens keeps only word tokens; numerals carry no category signal.
func trainTokens(text string) []string {
	var out []string
	for _, tok := range textutils.Tokenize(text) {
		if tok[0] >= '0' && tok[0] <= '9' {
			continue
		}
		out = append(out, textutils.Stem(tok))
	}
	return out
}
