// Package reconciler imports bank statement CSV exports. Column layout is
// sniffed from the header, rows fail individually, and candidates matching
// an already stored transaction are flagged as duplicate suspects instead
// of being dropped.
package reconciler

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"financeos/engine/internal/classifier"
	"financeos/engine/internal/dateutils"
	"financeos/engine/internal/enginerr"
	"financeos/engine/internal/logging"
	"financeos/engine/internal/models"
	"financeos/engine/internal/store"
	"financeos/engine/internal/textutils"

	"github.com/shopspring/decimal"
)

// importConfidence is assigned to structured statement rows. The source is
// machine-generated, so it sits well above the manual-entry floor.
const importConfidence = 0.95

// Result is the outcome of one import batch. Candidates holds everything
// persisted, duplicate suspects included; RowErrors holds the per-row
// failures; Duplicates describes why flagged candidates were flagged,
// keyed by candidate id.
type Result struct {
	Candidates []models.TransactionCandidate
	Duplicates map[string]*enginerr.DuplicateCandidateWarning
	RowErrors  []*enginerr.ImportRowError
}

// Accepted counts the candidates imported without a duplicate flag.
func (r Result) Accepted() int {
	n := 0
	for _, c := range r.Candidates {
		if _, dup := r.Duplicates[c.ID]; !dup {
			n++
		}
	}
	return n
}

// Reconciler turns statement rows into classified, deduplicated
// transaction candidates.
type Reconciler struct {
	transactions store.TransactionStore
	categories   store.CategoryStore
	classifier   *classifier.Classifier
	dayTolerance int
	maxBatchRows int
	log          logging.Logger
}

// New creates a Reconciler. dayTolerance is the dedup window in days; rows
// matching a stored transaction within the window are flagged. maxBatchRows
// caps one import batch; rows past the cap are skipped and reported, zero
// means no cap.
func New(transactions store.TransactionStore, categories store.CategoryStore,
	cls *classifier.Classifier, dayTolerance, maxBatchRows int, log logging.Logger) *Reconciler {
	return &Reconciler{
		transactions: transactions,
		categories:   categories,
		classifier:   cls,
		dayTolerance: dayTolerance,
		maxBatchRows: maxBatchRows,
		log:          log,
	}
}

// ImportCSV reads a statement export and persists its rows as transaction
// candidates. Parsing happens in two phases: all rows are decoded and
// checked against the store first, then persisted, so rows of the same
// batch never flag each other as duplicates. The only hard failure is an
// empty batch; everything else is reported per row.
func (r *Reconciler) ImportCSV(ctx context.Context, userID string, src io.Reader) (Result, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return Result{}, &enginerr.EmptyBatchError{}
	}
	if err != nil {
		return Result{}, err
	}
	cols, usable := detectColumns(header)
	if !usable {
		return Result{}, &enginerr.ImportRowError{Row: 0, Field: "header", Reason: "no recognizable date and amount columns"}
	}

	result := Result{Duplicates: make(map[string]*enginerr.DuplicateCandidateWarning)}
	categories, err := r.categories.ListCategories(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	var parsed []models.TransactionCandidate
	rowNum := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if r.maxBatchRows > 0 && rowNum > r.maxBatchRows {
			result.RowErrors = append(result.RowErrors, &enginerr.ImportRowError{
				Row: rowNum, Field: "batch",
				Reason: fmt.Sprintf("row limit %d exceeded, remaining rows skipped", r.maxBatchRows),
			})
			break
		}
		if err != nil {
			result.RowErrors = append(result.RowErrors,
				&enginerr.ImportRowError{Row: rowNum, Field: "record", Reason: err.Error()})
			continue
		}

		candidate, rowErr := r.parseRow(rowNum, userID, record, cols, categories)
		if rowErr != nil {
			result.RowErrors = append(result.RowErrors, rowErr)
			continue
		}
		parsed = append(parsed, candidate)
	}

	if rowNum == 0 {
		return Result{}, &enginerr.EmptyBatchError{}
	}

	for _, candidate := range parsed {
		warning, err := r.FindDuplicate(ctx, candidate)
		if err != nil {
			return result, err
		}
		if warning != nil {
			candidate.NeedsConfirmation = true
		}

		stored, err := r.transactions.CreateTransaction(ctx, candidate)
		if err != nil {
			return result, err
		}
		if warning != nil {
			result.Duplicates[stored.ID] = warning
		}
		result.Candidates = append(result.Candidates, stored)
	}

	r.log.Info("statement import finished",
		logging.Field{Key: logging.FieldUserID, Value: userID},
		logging.Field{Key: logging.FieldCount, Value: len(result.Candidates)},
		logging.Field{Key: "duplicates", Value: len(result.Duplicates)},
		logging.Field{Key: "row_errors", Value: len(result.RowErrors)},
	)
	return result, nil
}

// parseRow decodes one record into a candidate, classifying it on the way.
func (r *Reconciler) parseRow(rowNum int, userID string, record []string,
	cols columnMap, categories []models.Category) (models.TransactionCandidate, *enginerr.ImportRowError) {

	field := func(role columnRole) string {
		idx := cols[role]
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	date, err := dateutils.ParseDate(field(colDate))
	if err != nil {
		return models.TransactionCandidate{},
			&enginerr.ImportRowError{Row: rowNum, Field: "date", Reason: err.Error()}
	}

	amount, direction, rowErr := resolveAmount(rowNum, field)
	if rowErr != nil {
		return models.TransactionCandidate{}, rowErr
	}

	mcc := 0
	if raw := field(colMCC); raw != "" {
		if code, err := strconv.Atoi(raw); err == nil {
			mcc = code
		}
	}

	description := field(colDescription)
	match := r.classifier.Classify(classifier.Request{
		UserID:     userID,
		Text:       description,
		Direction:  direction,
		MCC:        mcc,
		Categories: categories,
	})

	return models.TransactionCandidate{
		UserID:      userID,
		Amount:      amount.Round(2),
		Direction:   direction,
		RawText:     strings.Join(record, ";"),
		Description: description,
		CategoryID:  match.CategoryID,
		Source:      models.SourceImport,
		Date:        date,
		Confidence:  importConfidence,
	}, nil
}

// resolveAmount reads either the signed amount column (negative means
// expense) or the debit/credit pair (whichever side is populated).
func resolveAmount(rowNum int, field func(columnRole) string) (decimal.Decimal, models.Direction, *enginerr.ImportRowError) {
	if raw := field(colAmount); raw != "" {
		amount, err := parseAmount(raw)
		if err != nil {
			return decimal.Decimal{}, "", &enginerr.ImportRowError{Row: rowNum, Field: "amount", Reason: err.Error()}
		}
		direction := models.DirectionExpense
		if amount.IsPositive() {
			direction = models.DirectionIncome
		}
		return amount.Abs(), direction, nil
	}

	if raw := field(colDebit); raw != "" {
		amount, err := parseAmount(raw)
		if err != nil {
			return decimal.Decimal{}, "", &enginerr.ImportRowError{Row: rowNum, Field: "debit", Reason: err.Error()}
		}
		return amount.Abs(), models.DirectionExpense, nil
	}

	if raw := field(colCredit); raw != "" {
		amount, err := parseAmount(raw)
		if err != nil {
			return decimal.Decimal{}, "", &enginerr.ImportRowError{Row: rowNum, Field: "credit", Reason: err.Error()}
		}
		return amount.Abs(), models.DirectionIncome, nil
	}

	return decimal.Decimal{}, "", &enginerr.ImportRowError{Row: rowNum, Field: "amount", Reason: "no amount in row"}
}

// parseAmount strips grouping spaces and currency markers and accepts both
// decimal comma and decimal dot.
func parseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '₴', '$', '€':
			return -1
		case ',':
			return '.'
		}
		return r
	}, raw)
	cleaned = strings.TrimSuffix(strings.ToLower(cleaned), "uah")
	cleaned = strings.TrimSuffix(cleaned, "грн")
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if value.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("zero amount")
	}
	return value, nil
}

// FindDuplicate checks a candidate against stored transactions: same user,
// same rounded amount, same normalized description, dated within the day
// tolerance. Same-day matches and near-day matches both flag; the caller
// decides what to do with the warning.
func (r *Reconciler) FindDuplicate(ctx context.Context, candidate models.TransactionCandidate) (*enginerr.DuplicateCandidateWarning, error) {
	day := dateutils.TruncateToDay(candidate.Date)
	from := day.AddDate(0, 0, -r.dayTolerance)
	to := day.AddDate(0, 0, r.dayTolerance+1).Add(-time.Nanosecond)

	existing, err := r.transactions.TransactionsBetween(ctx, candidate.UserID, from, to)
	if err != nil {
		return nil, err
	}

	normDesc := textutils.NormalizeDescription(candidate.Description)
	var best *enginerr.DuplicateCandidateWarning
	for _, tx := range existing {
		if tx.ID == candidate.ID || tx.Direction != candidate.Direction {
			continue
		}
		if !tx.RoundedAmount().Equal(candidate.RoundedAmount()) {
			continue
		}
		if textutils.NormalizeDescription(tx.Description) != normDesc {
			continue
		}
		delta := dateutils.DaysApart(tx.Date, candidate.Date)
		if best == nil || delta < best.DayDelta {
			best = &enginerr.DuplicateCandidateWarning{ExistingID: tx.ID, DayDelta: delta}
		}
	}
	return best, nil
}
