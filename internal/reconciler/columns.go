package reconciler

import "strings"

// columnRole identifies what a statement column holds.
type columnRole int

const (
	colUnknown columnRole = iota
	colDate
	colDescription
	colAmount
	colDebit
	colCredit
	colMCC
)

// Header aliases seen across Ukrainian and English bank exports. Matching
// is case-insensitive, exact first and substring second, so "Дата і час
// операції" still resolves to the date column.
var headerAliases = map[columnRole][]string{
	colDate: {
		"date", "datetime", "time", "дата", "дата і час", "дата операції",
		"дата і час операції",
	},
	colDescription: {
		"description", "details", "merchant", "narrative", "опис",
		"деталі", "призначення", "призначення платежу", "опис операції",
		"деталі операції", "назва",
	},
	colAmount: {
		"amount", "sum", "сума", "сума операції", "сума в валюті картки",
		"сума в валюті рахунку",
	},
	colDebit: {
		"debit", "expense", "withdrawal", "витрата", "дебет", "списання",
	},
	colCredit: {
		"credit", "income", "deposit", "надходження", "кредит", "зарахування",
	},
	colMCC: {
		"mcc", "код категорії",
	},
}

// Column roles in the priority order used when a header matches several
// aliases as substrings.
var roleOrder = []columnRole{colDate, colAmount, colDebit, colCredit, colMCC, colDescription}

// columnMap resolves header indexes per role. A role missing from the file
// maps to -1.
type columnMap map[columnRole]int

// detectColumns sniffs a header row. The file is usable when it has a date
// column and either a signed amount column or a debit/credit pair.
func detectColumns(header []string) (columnMap, bool) {
	cols := columnMap{
		colDate: -1, colDescription: -1, colAmount: -1,
		colDebit: -1, colCredit: -1, colMCC: -1,
	}

	for i, raw := range header {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		if role, ok := matchHeader(name); ok && cols[role] == -1 {
			cols[role] = i
		}
	}

	usable := cols[colDate] != -1 &&
		(cols[colAmount] != -1 || cols[colDebit] != -1 || cols[colCredit] != -1)
	return cols, usable
}

func matchHeader(name string) (columnRole, bool) {
	for _, role := range roleOrder {
		for _, alias := range headerAliases[role] {
			if name == alias {
				return role, true
			}
		}
	}
	for _, role := range roleOrder {
		for _, alias := range headerAliases[role] {
			if strings.Contains(name, alias) {
				return role, true
			}
		}
	}
	return colUnknown, false
}
