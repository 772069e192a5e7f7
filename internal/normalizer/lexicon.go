package normalizer

import "github.com/shopspring/decimal"

// The magnitude lexicon maps abbreviations and spelled-out magnitude words
// to multipliers. Grammatical cases matter in Ukrainian, so every inflected
// form is listed explicitly.
var magnitudeWords = map[string]decimal.Decimal{
	"тисяча": decimal.NewFromInt(1000),
	"тисячі": decimal.NewFromInt(1000),
	"тисячу": decimal.NewFromInt(1000),
	"тисяч":  decimal.NewFromInt(1000),
	"тис":    decimal.NewFromInt(1000),
	"к":      decimal.NewFromInt(1000),
	"k":      decimal.NewFromInt(1000),

	"мільйон":   decimal.NewFromInt(1000000),
	"мільйона":  decimal.NewFromInt(1000000),
	"мільйонів": decimal.NewFromInt(1000000),
	"млн":       decimal.NewFromInt(1000000),
}

// fractionWords are spelled-out fractional quantities that act as numeric
// tokens: "пів мільйона" is 0.5 × 1e6.
var fractionWords = map[string]decimal.Decimal{
	"пів":     decimal.NewFromFloat(0.5),
	"половина": decimal.NewFromFloat(0.5),
	"половину": decimal.NewFromFloat(0.5),
	"півтори": decimal.NewFromFloat(1.5),
	"півтора": decimal.NewFromFloat(1.5),
}

// numberWords are spelled-out digit sequences. Adjacent runs are summed,
// so "двісті сорок" composes to 240.
var numberWords = map[string]int64{
	"один": 1, "одна": 1, "одну": 1, "два": 2, "дві": 2, "три": 3, "чотири": 4,
	"п'ять": 5, "пять": 5, "шість": 6, "сім": 7, "вісім": 8,
	"дев'ять": 9, "девять": 9,
	"десять": 10, "одинадцять": 11, "дванадцять": 12, "тринадцять": 13,
	"чотирнадцять": 14, "п'ятнадцять": 15, "пятнадцять": 15,
	"шістнадцять": 16, "сімнадцять": 17, "вісімнадцять": 18,
	"дев'ятнадцять": 19, "девятнадцять": 19,
	"двадцять": 20, "тридцять": 30, "сорок": 40,
	"п'ятдесят": 50, "пятдесят": 50, "шістдесят": 60, "сімдесят": 70,
	"вісімдесят": 80, "дев'яносто": 90, "девяносто": 90,
	"сто": 100, "двісті": 200, "триста": 300, "чотириста": 400,
	"п'ятсот": 500, "пятсот": 500, "шістсот": 600, "сімсот": 700,
	"вісімсот": 800, "дев'ятсот": 900, "девятсот": 900,
}

// currencyWords mark an adjacent numeric token as the amount.
var currencyWords = map[string]bool{
	"грн": true, "гривень": true, "гривні": true, "гривня": true, "гривню": true,
	"uah": true, "₴": true, "usd": true, "eur": true, "долар": true, "доларів": true,
	"євро": true,
}

// Directional cue verbs. Expense is the default direction, so expense cues
// only contribute to the confidence score.
var incomeCues = map[string]bool{
	"отримав": true, "отримала": true, "прийшла": true, "прийшов": true,
	"зарплата": true, "зп": true, "заробив": true, "заробила": true,
	"нарахували": true, "повернули": true, "дохід": true, "премія": true,
	"виплатили": true, "подарували": true, "received": true, "earned": true,
	"salary": true,
}

var transferCues = map[string]bool{
	"переказав": true, "переказала": true, "перевів": true, "перевела": true,
	"відклав": true, "відклала": true, "обміняв": true, "обміняла": true,
	"поповнив": true, "поповнила": true, "transferred": true, "transfer": true,
}

var expenseCues = map[string]bool{
	"витратив": true, "витратила": true, "купив": true, "купила": true,
	"заплатив": true, "заплатила": true, "оплатив": true, "оплатила": true,
	"віддав": true, "віддала": true, "spent": true, "paid": true, "bought": true,
}
