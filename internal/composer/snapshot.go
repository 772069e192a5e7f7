package composer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"financeos/engine/internal/models"

	"github.com/shopspring/decimal"
)

// safetyBufferRatio is the share of monthly income held back before any
// free balance is reported. Advice never plans the last hryvnia.
var safetyBufferRatio = decimal.NewFromFloat(0.10)

// savingsPlanRatios are the three suggested saving intensities applied to
// the free balance.
var savingsPlanRatios = []struct {
	Name  string
	Ratio decimal.Decimal
}{
	{Name: "обережний", Ratio: decimal.NewFromFloat(0.15)},
	{Name: "впевнений", Ratio: decimal.NewFromFloat(0.30)},
	{Name: "амбітний", Ratio: decimal.NewFromFloat(0.50)},
}

// mandatoryCategories cannot be cut by advice; they are listed separately
// in the snapshot so the model treats them as fixed costs.
var mandatoryCategories = map[string]bool{
	"Оренда/Комунальні": true,
	"Зв'язок":           true,
	"Ліки/Лікарі":       true,
	"Супермаркети":      true,
}

// minHistory is how much observed history the snapshot needs before its
// numbers are considered representative.
const minHistory = 14 * 24 * time.Hour

// SavingsPlan is one suggested monthly saving amount.
type SavingsPlan struct {
	Name   string
	Ratio  decimal.Decimal
	Amount decimal.Decimal
}

// Snapshot is the grounded financial context injected into every advisory
// prompt. All numbers come from the repository; the model adds no figures
// of its own.
type Snapshot struct {
	Profile       models.UserProfile
	Balance       models.MonthlyBalance
	TopCategories []models.CategoryTotal
	Trends        []models.TrendPoint
	Goals         []models.Goal

	MandatorySpend decimal.Decimal
	SafetyBuffer   decimal.Decimal
	FreeBalance    decimal.Decimal
	Plans          []SavingsPlan

	// InsufficientHistory is set when the user has under two weeks of
	// observed activity, flagging every derived number as preliminary.
	InsufficientHistory bool
}

// buildSnapshot assembles the snapshot from the aggregate views.
func (c *Composer) buildSnapshot(ctx context.Context, userID string) (Snapshot, error) {
	profile, err := c.repo.Profile(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	balance, err := c.repo.MonthlyBalance(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	top, err := c.repo.TopCategories(ctx, userID, 5)
	if err != nil {
		return Snapshot{}, err
	}
	trends, err := c.repo.SpendingTrends(ctx, userID, 6)
	if err != nil {
		return Snapshot{}, err
	}
	goals, err := c.repo.ActiveGoals(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}

	snapshot := Snapshot{
		Profile:       profile,
		Balance:       balance,
		TopCategories: top,
		Trends:        trends,
		Goals:         goals,
	}

	for _, cat := range top {
		if mandatoryCategories[cat.Name] {
			snapshot.MandatorySpend = snapshot.MandatorySpend.Add(cat.Total)
		}
	}

	income := balance.TotalIncome
	if income.IsZero() {
		income = profile.MonthlyIncome
	}
	snapshot.SafetyBuffer = income.Mul(safetyBufferRatio).Round(2)
	snapshot.FreeBalance = income.Sub(balance.TotalExpenses).Sub(snapshot.SafetyBuffer)
	if snapshot.FreeBalance.IsNegative() {
		snapshot.FreeBalance = decimal.Zero
	}

	for _, plan := range savingsPlanRatios {
		snapshot.Plans = append(snapshot.Plans, SavingsPlan{
			Name:   plan.Name,
			Ratio:  plan.Ratio,
			Amount: snapshot.FreeBalance.Mul(plan.Ratio).Round(2),
		})
	}

	snapshot.InsufficientHistory = profile.FirstActivity.IsZero() ||
		c.now().Sub(profile.FirstActivity) < minHistory

	return snapshot, nil
}

// render writes the snapshot as the data section of a prompt.
func (s Snapshot) render() string {
	var b strings.Builder
	currency := s.Profile.Currency
	if currency == "" {
		currency = "UAH"
	}

	fmt.Fprintf(&b, "Доходи цього місяця: %s %s\n", s.Balance.TotalIncome.StringFixed(2), currency)
	fmt.Fprintf(&b, "Витрати цього місяця: %s %s\n", s.Balance.TotalExpenses.StringFixed(2), currency)
	fmt.Fprintf(&b, "Обов'язкові витрати: %s %s\n", s.MandatorySpend.StringFixed(2), currency)
	fmt.Fprintf(&b, "Резерв безпеки (10%% доходу): %s %s\n", s.SafetyBuffer.StringFixed(2), currency)
	fmt.Fprintf(&b, "Вільний залишок: %s %s\n", s.FreeBalance.StringFixed(2), currency)

	if len(s.TopCategories) > 0 {
		b.WriteString("Найбільші категорії витрат:\n")
		for _, cat := range s.TopCategories {
			fmt.Fprintf(&b, "- %s: %s %s\n", cat.Name, cat.Total.StringFixed(2), currency)
		}
	}
	if len(s.Plans) > 0 {
		b.WriteString("Можливі плани заощаджень від вільного залишку:\n")
		for _, plan := range s.Plans {
			fmt.Fprintf(&b, "- %s (%s%%): %s %s\n", plan.Name,
				plan.Ratio.Mul(decimal.NewFromInt(100)).StringFixed(0),
				plan.Amount.StringFixed(2), currency)
		}
	}
	if len(s.Goals) > 0 {
		b.WriteString("Активні цілі:\n")
		for _, goal := range s.Goals {
			fmt.Fprintf(&b, "- %s: зібрано %s з %s %s\n", goal.Name,
				goal.CurrentAmount.StringFixed(2), goal.TargetAmount.StringFixed(2), currency)
		}
	}
	if len(s.Trends) > 1 {
		b.WriteString("Динаміка за місяцями:\n")
		for _, point := range s.Trends {
			fmt.Fprintf(&b, "- %s: +%s / -%s\n", point.Month,
				point.Income.StringFixed(2), point.Expenses.StringFixed(2))
		}
	}
	if s.InsufficientHistory {
		b.WriteString("Увага: даних менше двох тижнів, висновки попередні.\n")
	}
	return b.String()
}
