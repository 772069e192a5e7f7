// Package enginerr defines the typed errors of the engine. Per-item
// failures (a row, a candidate, an embedding) are isolated and reported
// alongside successes; only input that makes a whole operation meaningless
// propagates as a hard failure.
package enginerr

import "fmt"

// ParseError reports that no numeric token could be found in an utterance.
// It is surfaced to the user as a clarification prompt, never as a fatal
// failure.
type ParseError struct {
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse amount from %q: %s", e.Text, e.Reason)
}

// AmbiguousAmountError marks a candidate whose confidence fell below the
// configured floor. The candidate is withheld from statistics until the
// user confirms it.
type AmbiguousAmountError struct {
	Text       string
	Confidence float64
	Floor      float64
}

func (e *AmbiguousAmountError) Error() string {
	return fmt.Sprintf("amount in %q is ambiguous: confidence %.2f below floor %.2f",
		e.Text, e.Confidence, e.Floor)
}

// ImportRowError is a per-row import failure. Rows fail locally; one
// malformed row never aborts the batch.
type ImportRowError struct {
	Row    int
	Field  string
	Reason string
}

func (e *ImportRowError) Error() string {
	return fmt.Sprintf("row %d: unusable %s: %s", e.Row, e.Field, e.Reason)
}

// DuplicateCandidateWarning flags a likely re-import of an already known
// transaction. Duplicates are surfaced for confirmation, not dropped: two
// legitimate transactions can share an amount and day.
type DuplicateCandidateWarning struct {
	ExistingID string
	DayDelta   int
}

func (e *DuplicateCandidateWarning) Error() string {
	return fmt.Sprintf("likely duplicate of transaction %s (%d day(s) apart)",
		e.ExistingID, e.DayDelta)
}

// SummarizationError reports a failed compaction. The memory window is left
// unmodified and compaction is retried on the next append.
type SummarizationError struct {
	UserID string
	Err    error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarization failed for user %s: %v", e.UserID, e.Err)
}

func (e *SummarizationError) Unwrap() error { return e.Err }

// RetrievalError reports a failed embedding or vector-store call. The
// composer degrades gracefully and proceeds without retrieved context.
type RetrievalError struct {
	UserID string
	Err    error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed for user %s: %v", e.UserID, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// ModelTimeoutError reports that a language-model call exceeded its
// timeout. The composer answers with a canned fallback instead of blocking
// the caller.
type ModelTimeoutError struct {
	Operation string
	Err       error
}

func (e *ModelTimeoutError) Error() string {
	return fmt.Sprintf("model call %s timed out: %v", e.Operation, e.Err)
}

func (e *ModelTimeoutError) Unwrap() error { return e.Err }

// EmptyBatchError is the one hard failure of the reconciler: an import file
// with no rows at all.
type EmptyBatchError struct{}

func (e *EmptyBatchError) Error() string { return "import batch contains no rows" }
