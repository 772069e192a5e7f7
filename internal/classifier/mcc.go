package classifier

// mccCategories maps merchant category codes from imported statements onto
// the built-in category names. Only codes that appear in real Ukrainian
// bank exports are listed; unknown codes fall through to the text
// strategies.
var mccCategories = map[int]string{
	// groceries
	5411: "Супермаркети", 5422: "Супермаркети", 5441: "Супермаркети",
	5451: "Супермаркети", 5462: "Супермаркети", 5499: "Супермаркети",
	// eating out
	5811: "Заклади", 5812: "Заклади", 5813: "Заклади",
	5814: "Кава/Снеки",
	// transport
	4111: "Таксі/Громадський", 4121: "Таксі/Громадський", 4131: "Таксі/Громадський",
	4112: "Таксі/Громадський",
	// car
	5172: "Авто", 5541: "Авто", 5542: "Авто", 5983: "Авто", 7523: "Авто",
	7538: "Авто", 7542: "Авто",
	// telecom
	4814: "Зв'язок", 4899: "Зв'язок",
	// utilities
	4900: "Оренда/Комунальні",
	// digital services
	5815: "Сервіси/Підписки", 5816: "Сервіси/Підписки", 5817: "Сервіси/Підписки",
	5818: "Сервіси/Підписки", 5968: "Сервіси/Підписки", 7372: "Сервіси/Підписки",
	// electronics
	5045: "Електроніка", 5722: "Електроніка", 5732: "Електроніка",
	// health
	5122: "Ліки/Лікарі", 5912: "Ліки/Лікарі", 8011: "Ліки/Лікарі",
	8021: "Ліки/Лікарі", 8062: "Ліки/Лікарі", 8071: "Ліки/Лікарі",
	// sport
	7941: "Спортзал", 7991: "Спортзал", 7997: "Спортзал",
	// clothes
	5611: "Одяг/Взуття", 5621: "Одяг/Взуття", 5651: "Одяг/Взуття",
	5661: "Одяг/Взуття", 5691: "Одяг/Взуття",
	// entertainment
	7832: "Події/Хобі", 7922: "Події/Хобі", 7929: "Події/Хобі",
	// charity
	8398: "ЗСУ/Волонтери",
	// money movement
	4829: "Переказ (інше)", 6012: "Переказ (інше)",
	6536: "Переказ (інше)", 6537: "Переказ (інше)",
	6010: "Переказ (інше)", 6011: "Переказ (інше)",
}

// mccStrategy resolves an import row's merchant category code against the
// category set. Runs before the text strategies because the code is the
// strongest signal a statement row carries.
type mccStrategy struct{}

func (s *mccStrategy) Name() string { return "mcc" }

func (s *mccStrategy) Classify(req *Request) (Match, bool) {
	if req.MCC == 0 {
		return Match{}, false
	}
	name, ok := mccCategories[req.MCC]
	if !ok {
		return Match{}, false
	}
	for _, c := range req.Categories {
		if c.Name == name && c.CompatibleWith(req.Direction) {
			return Match{CategoryID: c.ID, Category: c.Name, Strategy: s.Name(), Confidence: 0.95}, true
		}
	}
	return Match{}, false
}
