// Package classifier assigns categories to transaction candidates through
// an ordered strategy chain. Strategies are tried most-specific first; the
// direction-compatible fallback guarantees that classification always
// produces a category.
package classifier

import (
	"sort"
	"strings"

	"financeos/engine/internal/logging"
	"financeos/engine/internal/models"
	"financeos/engine/internal/textutils"
)

// Request carries everything a strategy may consult. Categories holds the
// global set plus the user's own, as served by the category store.
type Request struct {
	UserID     string
	Text       string
	Direction  models.Direction
	MCC        int // merchant category code from imports, 0 when unknown
	Categories []models.Category

	normText string
	tokens   []string
}

// Match is a classification outcome. Strategy records which chain member
// produced it, for logging and for learned-strategy feedback.
type Match struct {
	CategoryID string
	Category   string
	Strategy   string
	Confidence float64
}

// Strategy is one member of the classification chain.
type Strategy interface {
	Name() string
	Classify(req *Request) (Match, bool)
}

// Classifier runs the strategy chain.
type Classifier struct {
	strategies []Strategy
	log        logging.Logger
}

// New builds the default chain. The learned strategy may be nil, which
// disables history-based classification.
func New(learned *LearnedStrategy, log logging.Logger) *Classifier {
	strategies := []Strategy{
		&mccStrategy{},
		&nameStrategy{userScope: true},
		&nameStrategy{userScope: false},
		&keywordStrategy{},
	}
	if learned != nil {
		strategies = append(strategies, learned)
	}
	strategies = append(strategies, &fallbackStrategy{})
	return &Classifier{strategies: strategies, log: log}
}

// Classify runs the chain and returns the first direction-compatible match.
// The fallback strategy makes the zero-match case unreachable for valid
// directions.
func (c *Classifier) Classify(req Request) Match {
	req.normText = textutils.NormalizeDescription(req.Text)
	req.tokens = textutils.Tokenize(req.Text)

	for _, s := range c.strategies {
		match, ok := s.Classify(&req)
		if !ok {
			continue
		}
		if !categoryCompatible(req.Categories, match.CategoryID, req.Direction) {
			continue
		}
		c.log.Debug("classified text",
			logging.Field{Key: logging.FieldUserID, Value: req.UserID},
			logging.Field{Key: logging.FieldCategory, Value: match.Category},
			logging.Field{Key: logging.FieldStrategy, Value: match.Strategy},
			logging.Field{Key: logging.FieldConfidence, Value: match.Confidence},
		)
		return match
	}

	// Unknown direction: report the expense fallback name with no id.
	return Match{
		Category:   models.FallbackCategory(models.DirectionExpense).Name,
		Strategy:   "fallback",
		Confidence: 0,
	}
}

func categoryCompatible(categories []models.Category, id string, d models.Direction) bool {
	for _, c := range categories {
		if c.ID == id {
			return c.CompatibleWith(d)
		}
	}
	// Fallback matches are reported by name when the seed set lacks the
	// fallback category.
	return id == ""
}

// nameStrategy matches the utterance against category names, exact name
// first, then the name as a substring; ties break lexicographically. The
// user-scoped pass runs before the global one so personal categories shadow
// built-ins.
type nameStrategy struct {
	userScope bool
}

func (s *nameStrategy) Name() string {
	if s.userScope {
		return "user-name"
	}
	return "global-name"
}

func (s *nameStrategy) Classify(req *Request) (Match, bool) {
	var exact, substring *models.Category
	for i := range req.Categories {
		c := &req.Categories[i]
		if c.IsGlobal() == s.userScope || !c.CompatibleWith(req.Direction) {
			continue
		}
		name := textutils.NormalizeDescription(c.Name)
		if name == "" {
			continue
		}
		switch {
		case name == req.normText:
			if exact == nil || c.Name < exact.Name {
				exact = c
			}
		case strings.Contains(req.normText, name):
			if substring == nil || c.Name < substring.Name {
				substring = c
			}
		}
	}

	if exact != nil {
		return Match{CategoryID: exact.ID, Category: exact.Name, Strategy: s.Name(), Confidence: 1}, true
	}
	if substring != nil {
		return Match{CategoryID: substring.ID, Category: substring.Name, Strategy: s.Name(), Confidence: 0.9}, true
	}
	return Match{}, false
}

// keywordStrategy scores every direction-compatible category by the number
// of its keywords present in the text. The highest score wins; ties break
// lexicographically by category name so classification stays deterministic.
type keywordStrategy struct{}

func (s *keywordStrategy) Name() string { return "keyword" }

func (s *keywordStrategy) Classify(req *Request) (Match, bool) {
	type scored struct {
		category models.Category
		hits     int
	}
	var candidates []scored
	for _, c := range req.Categories {
		if !c.CompatibleWith(req.Direction) {
			continue
		}
		hits := 0
		for _, kw := range c.Keywords {
			if textutils.KeywordInText(strings.ToLower(kw), req.normText, req.tokens) {
				hits++
			}
		}
		if hits > 0 {
			candidates = append(candidates, scored{category: c, hits: hits})
		}
	}
	if len(candidates) == 0 {
		return Match{}, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].hits != candidates[j].hits {
			return candidates[i].hits > candidates[j].hits
		}
		return candidates[i].category.Name < candidates[j].category.Name
	})

	winner := candidates[0]
	confidence := 0.6 + 0.1*float64(winner.hits)
	if confidence > 0.9 {
		confidence = 0.9
	}
	return Match{
		CategoryID: winner.category.ID,
		Category:   winner.category.Name,
		Strategy:   s.Name(),
		Confidence: confidence,
	}, true
}

// fallbackStrategy returns the direction's catch-all category. It never
// declines for a valid direction.
type fallbackStrategy struct{}

func (s *fallbackStrategy) Name() string { return "fallback" }

func (s *fallbackStrategy) Classify(req *Request) (Match, bool) {
	if !req.Direction.Valid() {
		return Match{}, false
	}
	name := models.FallbackCategory(req.Direction).Name
	for _, c := range req.Categories {
		if c.Name == name && c.CompatibleWith(req.Direction) {
			return Match{CategoryID: c.ID, Category: c.Name, Strategy: s.Name(), Confidence: 0.3}, true
		}
	}
	return Match{Category: name, Strategy: s.Name(), Confidence: 0.3}, true
}
