// Package normalizer turns free-form Ukrainian (and mixed-language) money
// utterances into structured transaction candidates. Parsing is lexicon
// driven and fully deterministic: the same utterance always yields the same
// candidate.
package normalizer

import (
	"strings"
	"time"

	"financeos/engine/internal/enginerr"
	"financeos/engine/internal/logging"
	"financeos/engine/internal/models"
	"financeos/engine/internal/textutils"

	"github.com/shopspring/decimal"
)

// Amounts outside (0, 10 000 000) are rejected as implausible.
var maxAmount = decimal.NewFromInt(10000000)

// Confidence scoring: a low base plus a fixed increment per independent cue
// (magnitude marker, currency marker, direction verb, category keyword).
// Multiple numeric tokens without a disambiguating cue cost a penalty.
const (
	confidenceBase   = 0.4
	cueWeight        = 0.15
	ambiguityPenalty = 0.2
)

// magnitudeBindDistance is how far (in tokens) a magnitude word may sit
// from the numeral it scales.
const magnitudeBindDistance = 2

// stopwords are fillers dropped when deriving the candidate description.
var stopwords = map[string]bool{
	"на": true, "за": true, "в": true, "у": true, "з": true, "зі": true,
	"і": true, "та": true, "по": true, "до": true, "про": true, "це": true,
	"а": true, "the": true, "a": true, "for": true, "on": true,
}

// Normalizer extracts transaction candidates from utterances.
type Normalizer struct {
	floor    float64
	keywords []string
	log      logging.Logger
	now      func() time.Time
}

// New creates a Normalizer. The categories' keyword lists feed the
// category-keyword confidence cue; classification itself happens elsewhere.
func New(confidenceFloor float64, categories []models.Category, log logging.Logger) *Normalizer {
	var keywords []string
	for _, c := range categories {
		for _, kw := range c.Keywords {
			keywords = append(keywords, strings.ToLower(kw))
		}
	}
	return &Normalizer{
		floor:    confidenceFloor,
		keywords: keywords,
		log:      log,
		now:      time.Now,
	}
}

// SetClock pins the candidate timestamp. Tests only.
func (n *Normalizer) SetClock(now func() time.Time) { n.now = now }

// Floor returns the configured confidence floor.
func (n *Normalizer) Floor() float64 { return n.floor }

type tokenKind int

const (
	kindWord tokenKind = iota
	kindNumeric
	kindMagnitude
	kindCurrency
	kindVerb
)

type numeral struct {
	value decimal.Decimal
	pos   int
	// scaled numerals carried an attached thousand suffix ("25к").
	scaled bool
	// spelled numerals may absorb adjacent number words ("двісті сорок").
	spelled bool
}

// Normalize parses one utterance into a transaction candidate. It returns
// *enginerr.ParseError when no usable numeric token exists; an utterance
// that parses but scores below the confidence floor comes back with
// NeedsConfirmation set rather than as an error.
func (n *Normalizer) Normalize(userID, text string) (models.TransactionCandidate, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.TransactionCandidate{}, &enginerr.ParseError{Text: text, Reason: "empty utterance"}
	}

	// Decimal commas become dots before tokenization so "100,50" survives
	// as a single numeric token.
	tokens := textutils.Tokenize(strings.ReplaceAll(trimmed, ",", "."))

	kinds := make([]tokenKind, len(tokens))
	var numerals []numeral
	var magnitudes []numeral // value is the multiplier
	var currencyPos []int

	direction := models.DirectionExpense
	directionSet := false
	verbCue := false

	for i, tok := range tokens {
		switch {
		case isDigitToken(tok):
			value, scaled, ok := parseDigitToken(tok)
			if !ok {
				continue
			}
			kinds[i] = kindNumeric
			numerals = append(numerals, numeral{value: value, pos: i, scaled: scaled})

		case fractionWords[tok].IsPositive():
			kinds[i] = kindNumeric
			numerals = append(numerals, numeral{value: fractionWords[tok], pos: i, spelled: true})

		case numberWords[tok] != 0:
			kinds[i] = kindNumeric
			// Adjacent spelled numbers compose into one numeral.
			if len(numerals) > 0 && numerals[len(numerals)-1].spelled && numerals[len(numerals)-1].pos == i-1 {
				last := &numerals[len(numerals)-1]
				last.value = last.value.Add(decimal.NewFromInt(numberWords[tok]))
				last.pos = i
			} else {
				numerals = append(numerals, numeral{value: decimal.NewFromInt(numberWords[tok]), pos: i, spelled: true})
			}

		case !magnitudeWords[tok].IsZero():
			kinds[i] = kindMagnitude
			magnitudes = append(magnitudes, numeral{value: magnitudeWords[tok], pos: i})

		case currencyWords[tok]:
			kinds[i] = kindCurrency
			currencyPos = append(currencyPos, i)

		case transferCues[tok]:
			kinds[i] = kindVerb
			verbCue = true
			if !directionSet {
				direction = models.DirectionTransfer
				directionSet = true
			}

		case incomeCues[tok]:
			kinds[i] = kindVerb
			verbCue = true
			if !directionSet {
				direction = models.DirectionIncome
				directionSet = true
			}

		case expenseCues[tok]:
			kinds[i] = kindVerb
			verbCue = true
			directionSet = true
		}
	}

	if len(numerals) == 0 {
		return models.TransactionCandidate{}, &enginerr.ParseError{Text: text, Reason: "no numeric token found"}
	}

	amount, magnitudeCue, ambiguous := n.pickAmount(numerals, magnitudes, currencyPos)
	if !amount.IsPositive() || amount.GreaterThanOrEqual(maxAmount) {
		return models.TransactionCandidate{}, &enginerr.ParseError{
			Text: text, Reason: "amount outside the supported range",
		}
	}

	normText := textutils.NormalizeDescription(trimmed)
	keywordCue := false
	for _, kw := range n.keywords {
		if textutils.KeywordInText(kw, normText, tokens) {
			keywordCue = true
			break
		}
	}

	confidence := confidenceBase
	if magnitudeCue {
		confidence += cueWeight
	}
	if len(currencyPos) > 0 {
		confidence += cueWeight
	}
	if verbCue {
		confidence += cueWeight
	}
	if keywordCue {
		confidence += cueWeight
	}
	if ambiguous {
		confidence -= ambiguityPenalty
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	candidate := models.TransactionCandidate{
		UserID:            userID,
		Amount:            amount.Round(2),
		Direction:         direction,
		RawText:           trimmed,
		Description:       describe(tokens, kinds),
		Source:            models.SourceManual,
		Date:              n.now(),
		Confidence:        confidence,
		NeedsConfirmation: ambiguous || confidence < n.floor,
	}

	n.log.Debug("normalized utterance",
		logging.Field{Key: logging.FieldUserID, Value: userID},
		logging.Field{Key: "amount", Value: candidate.Amount.String()},
		logging.Field{Key: logging.FieldConfidence, Value: confidence},
	)
	return candidate, nil
}

// pickAmount resolves the numeral/magnitude pairing and chooses the amount.
// The nearest magnitude within bind distance scales a numeral, adjacency
// winning over distance. With several numerals the one carrying magnitude
// or currency evidence wins; absent a single clear winner the first numeral
// is taken and the result is flagged ambiguous.
func (n *Normalizer) pickAmount(numerals, magnitudes []numeral, currencyPos []int) (amount decimal.Decimal, magnitudeCue, ambiguous bool) {
	type scored struct {
		amount    decimal.Decimal
		magnitude bool
		currency  bool
	}

	scoredNumerals := make([]scored, len(numerals))
	for i, num := range numerals {
		s := scored{amount: num.value, magnitude: num.scaled}
		if num.scaled {
			s.amount = num.value.Mul(decimal.NewFromInt(1000))
		}
		if mult, ok := nearestMagnitude(num.pos, magnitudes); ok && !num.scaled {
			s.amount = num.value.Mul(mult)
			s.magnitude = true
		}
		for _, cp := range currencyPos {
			if abs(cp-num.pos) == 1 {
				s.currency = true
				break
			}
		}
		scoredNumerals[i] = s
	}

	best := 0
	if len(scoredNumerals) > 1 {
		winners := 0
		for i, s := range scoredNumerals {
			if s.magnitude || s.currency {
				if winners == 0 {
					best = i
				}
				winners++
			}
		}
		ambiguous = winners != 1
	}
	return scoredNumerals[best].amount, scoredNumerals[best].magnitude, ambiguous
}

// nearestMagnitude finds the closest magnitude token within bind distance.
// On a distance tie the magnitude following the numeral wins.
func nearestMagnitude(pos int, magnitudes []numeral) (decimal.Decimal, bool) {
	bestDist := magnitudeBindDistance + 1
	var best decimal.Decimal
	found := false
	for _, m := range magnitudes {
		d := abs(m.pos - pos)
		if d < bestDist || (d == bestDist && m.pos > pos) {
			bestDist = d
			best = m.value
			found = d <= magnitudeBindDistance
		}
	}
	if !found {
		return decimal.Decimal{}, false
	}
	return best, true
}

// describe derives a short description from the tokens that are neither
// numerals nor markers nor fillers.
func describe(tokens []string, kinds []tokenKind) string {
	var words []string
	for i, tok := range tokens {
		if kinds[i] != kindWord || stopwords[tok] {
			continue
		}
		words = append(words, tok)
	}
	return strings.Join(words, " ")
}

// isDigitToken reports whether the token starts with a digit, which is the
// precondition for parseDigitToken.
func isDigitToken(tok string) bool {
	return tok != "" && tok[0] >= '0' && tok[0] <= '9'
}

// parseDigitToken parses tokens like "250", "100.50" and "25к". A single
// trailing к/k marks an attached thousand suffix.
func parseDigitToken(tok string) (decimal.Decimal, bool, bool) {
	scaled := false
	if strings.HasSuffix(tok, "к") {
		tok, scaled = strings.TrimSuffix(tok, "к"), true
	} else if strings.HasSuffix(tok, "k") {
		tok, scaled = strings.TrimSuffix(tok, "k"), true
	}

	dots := 0
	for _, r := range tok {
		switch {
		case r >= '0' && r <= '9':
		case r == '.':
			dots++
		default:
			return decimal.Decimal{}, false, false
		}
	}
	if tok == "" || dots > 1 {
		return decimal.Decimal{}, false, false
	}

	value, err := decimal.NewFromString(tok)
	if err != nil {
		return decimal.Decimal{}, false, false
	}
	return value, scaled, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
