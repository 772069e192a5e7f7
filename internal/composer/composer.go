// Package composer builds grounded advisory prompts and produces the
// engine's conversational answers. Every prompt carries a financial
// snapshot computed from the repository, the user's recent dialogue and,
// when available, semantically retrieved context owned by the same user;
// the model is explicitly forbidden to invent numbers.
package composer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"financeos/engine/internal/ai"
	"financeos/engine/internal/enginerr"
	"financeos/engine/internal/logging"
	"financeos/engine/internal/memory"
	"financeos/engine/internal/models"
	"financeos/engine/internal/retrieval"
	"financeos/engine/internal/store"

	"github.com/shopspring/decimal"
)

// recentTurns is how many retained dialogue turns are quoted in a prompt.
const recentTurns = 10

// Composer answers advisory questions over one user's financial data.
type Composer struct {
	repo    store.Repository
	index   *retrieval.Index
	memory  *memory.Manager
	client  ai.Client
	log     logging.Logger
	now     func() time.Time
}

// New creates a Composer. The retrieval index may be nil, which disables
// semantic context.
func New(repo store.Repository, index *retrieval.Index, mem *memory.Manager,
	client ai.Client, log logging.Logger) *Composer {
	return &Composer{
		repo:   repo,
		index:  index,
		memory: mem,
		client: client,
		log:    log,
		now:    time.Now,
	}
}

// SetClock pins the composer's notion of "now". Tests only.
func (c *Composer) SetClock(now func() time.Time) { c.now = now }

// Ask answers a free-form question grounded in the user's data. Retrieval
// failures degrade to a prompt without semantic context; a model timeout
// degrades to a canned per-tone answer. Both the question and the answer
// are recorded in conversation memory.
func (c *Composer) Ask(ctx context.Context, userID, question string) (string, error) {
	snapshot, err := c.buildSnapshot(ctx, userID)
	if err != nil {
		return "", err
	}
	tone := toneFor(snapshot.Profile.Style)

	prompt, err := c.composePrompt(ctx, userID, question, snapshot, tone)
	if err != nil {
		return "", err
	}

	answer, err := c.client.Complete(ctx, prompt)
	if err != nil {
		var timeout *enginerr.ModelTimeoutError
		if errors.As(err, &timeout) || errors.Is(err, context.DeadlineExceeded) {
			c.log.WithError(err).Warn("advisory call timed out, using fallback",
				logging.Field{Key: logging.FieldUserID, Value: userID})
			answer = tone.fallback
		} else {
			return "", err
		}
	}
	answer = strings.TrimSpace(answer)

	if _, err := c.memory.Append(ctx, userID, models.RoleUser, question); err != nil {
		c.logMemoryFailure(userID, err)
	}
	if _, err := c.memory.Append(ctx, userID, models.RoleAssistant, answer); err != nil {
		c.logMemoryFailure(userID, err)
	}
	return answer, nil
}

// logMemoryFailure keeps Ask resilient: failed bookkeeping is logged, the
// answer is still delivered.
func (c *Composer) logMemoryFailure(userID string, err error) {
	var sumErr *enginerr.SummarizationError
	if errors.As(err, &sumErr) {
		// window intact, compaction will retry on the next append
		c.log.WithError(err).Warn("memory compaction deferred",
			logging.Field{Key: logging.FieldUserID, Value: userID})
		return
	}
	c.log.WithError(err).Error("failed to record conversation turn",
		logging.Field{Key: logging.FieldUserID, Value: userID})
}

// composePrompt assembles the full advisory prompt: tone, guardrails, the
// data snapshot, retrieved context, recent dialogue and the question.
func (c *Composer) composePrompt(ctx context.Context, userID, question string,
	snapshot Snapshot, tone tonePreset) (string, error) {

	var b strings.Builder
	b.WriteString("Ти — особистий фінансовий помічник. ")
	b.WriteString(tone.instruction)
	b.WriteString("\n\nПравила:\n")
	b.WriteString("- Використовуй лише цифри з розділу «Дані». Не вигадуй сум і відсотків.\n")
	b.WriteString("- Усі дані належать одному користувачу; про інших людей не говори.\n")
	b.WriteString("- Не пропонуй скорочувати обов'язкові витрати.\n")
	if name := snapshot.Profile.Name; name != "" {
		fmt.Fprintf(&b, "- Звертайся до користувача на ім'я: %s.\n", name)
	}

	b.WriteString("\nДані:\n")
	b.WriteString(snapshot.render())

	if c.index != nil {
		results, err := c.index.Query(ctx, userID, question)
		if err != nil {
			// degrade without semantic context
			c.log.WithError(err).Warn("retrieval unavailable, composing without context",
				logging.Field{Key: logging.FieldUserID, Value: userID})
		} else if len(results) > 0 {
			b.WriteString("\nСхожі записи користувача:\n")
			for _, scored := range results {
				if scored.Record.UserID != userID {
					// scoping happens in the index; this guards against a
					// misbehaving store implementation
					continue
				}
				fmt.Fprintf(&b, "- %s\n", scored.Record.Content)
			}
		}
	}

	window, err := c.memory.Window(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(window) > recentTurns {
		window = window[len(window)-recentTurns:]
	}
	if len(window) > 0 {
		b.WriteString("\nОстанні репліки:\n")
		for _, turn := range window {
			fmt.Fprintf(&b, "[%s] %s\n", turn.Role, turn.Content)
		}
	}

	fmt.Fprintf(&b, "\nЗапитання: %s\n", question)
	return b.String(), nil
}

// zeroActivityDigest is the canned weekly digest for users with no
// transactions in the period.
const zeroActivityDigest = "За останній тиждень не було жодної операції. " +
	"Запишіть першу витрату або дохід, і я підготую повноцінний підсумок."

// WeeklyDigest builds a deterministic summary of the last seven days. It
// uses no model call, so it is always available for scheduled delivery.
func (c *Composer) WeeklyDigest(ctx context.Context, userID string) (string, error) {
	now := c.now()
	transactions, err := c.repo.TransactionsBetween(ctx, userID, now.AddDate(0, 0, -7), now)
	if err != nil {
		return "", err
	}

	var active []models.TransactionCandidate
	for _, tx := range transactions {
		if !tx.NeedsConfirmation && !tx.IgnoreInStats {
			active = append(active, tx)
		}
	}
	if len(active) == 0 {
		return zeroActivityDigest, nil
	}

	profile, err := c.repo.Profile(ctx, userID)
	if err != nil {
		return "", err
	}
	currency := profile.Currency
	if currency == "" {
		currency = "UAH"
	}

	categories, err := c.repo.ListCategories(ctx, userID)
	if err != nil {
		return "", err
	}
	names := make(map[string]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}

	summary := summarizeWeek(active, names)
	var b strings.Builder
	b.WriteString("Підсумок тижня\n")
	fmt.Fprintf(&b, "Операцій: %d\n", len(active))
	fmt.Fprintf(&b, "Доходи: %s %s\n", summary.income.StringFixed(2), currency)
	fmt.Fprintf(&b, "Витрати: %s %s\n", summary.expenses.StringFixed(2), currency)
	if summary.topCategory != "" {
		fmt.Fprintf(&b, "Найбільша категорія: %s (%s %s)\n",
			summary.topCategory, summary.topTotal.StringFixed(2), currency)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

type weekSummary struct {
	income      decimal.Decimal
	expenses    decimal.Decimal
	topCategory string
	topTotal    decimal.Decimal
}

// summarizeWeek folds a week of transactions into digest figures. The top
// category considers expenses only; ties resolve to the lexicographically
// smaller name so the digest is stable.
func summarizeWeek(txs []models.TransactionCandidate, names map[string]string) weekSummary {
	var summary weekSummary
	perCategory := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		switch tx.Direction {
		case models.DirectionIncome:
			summary.income = summary.income.Add(tx.RoundedAmount())
		case models.DirectionExpense:
			summary.expenses = summary.expenses.Add(tx.RoundedAmount())
			name := names[tx.CategoryID]
			if name == "" {
				name = models.CategoryFallbackExpense
			}
			perCategory[name] = perCategory[name].Add(tx.RoundedAmount())
		}
	}
	for name, total := range perCategory {
		switch {
		case total.GreaterThan(summary.topTotal):
			summary.topCategory, summary.topTotal = name, total
		case total.Equal(summary.topTotal) && (summary.topCategory == "" || name < summary.topCategory):
			summary.topCategory, summary.topTotal = name, total
		}
	}
	return summary
}
