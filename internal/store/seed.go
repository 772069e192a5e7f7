package store

import (
	"fmt"
	"os"

	"financeos/engine/internal/models"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// LoadCategoriesFile reads the global category seed from a yaml file.
// Categories without ids get generated ones.
func LoadCategoriesFile(path string) ([]models.Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read categories file: %w", err)
	}

	var file models.CategoriesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("could not parse categories file: %w", err)
	}

	for i := range file.Categories {
		if file.Categories[i].ID == "" {
			file.Categories[i].ID = uuid.New().String()
		}
		if !file.Categories[i].Type.Valid() {
			return nil, fmt.Errorf("category %q has unknown type %q",
				file.Categories[i].Name, file.Categories[i].Type)
		}
	}
	return file.Categories, nil
}

// DefaultCategories returns the built-in global category set used when no
// seed file is configured. Keyword lists drive the keyword-weighted
// classifier strategy.
func DefaultCategories() []models.Category {
	cats := []models.Category{
		{Name: "Супермаркети", Type: models.DirectionExpense, Icon: "🛒",
			Keywords: []string{"сільпо", "silpo", "atb", "атб", "novus", "новус", "auchan", "ашан", "metro", "продукти", "супермаркет"}},
		{Name: "Заклади", Type: models.DirectionExpense, Icon: "🍽",
			Keywords: []string{"ресторан", "кафе", "cafe", "піца", "pizza", "суші", "sushi", "kfc", "mcdonald", "бургер", "шаурма", "паб", "pub"}},
		{Name: "Кава/Снеки", Type: models.DirectionExpense, Icon: "☕",
			Keywords: []string{"кава", "coffee", "starbucks", "снек", "чай", "пекарня", "круасан"}},
		{Name: "Таксі/Громадський", Type: models.DirectionExpense, Icon: "🚕",
			Keywords: []string{"таксі", "taxi", "bolt", "uber", "uklon", "уклон", "метро", "маршрутка", "укрзалізниця", "квиток на поїзд"}},
		{Name: "Авто", Type: models.DirectionExpense, Icon: "🚗",
			Keywords: []string{"азс", "wog", "okko", "shell", "бензин", "пальне", "автосервіс", "шиномонтаж", "парковка", "мийка"}},
		{Name: "Зв'язок", Type: models.DirectionExpense, Icon: "📱",
			Keywords: []string{"київстар", "kyivstar", "vodafone", "lifecell", "інтернет", "мобільний", "поповнення рахунку"}},
		{Name: "Оренда/Комунальні", Type: models.DirectionExpense, Icon: "🏠",
			Keywords: []string{"оренда", "квартплата", "комуналка", "комунальні", "газ", "електро", "водоканал", "опалення"}},
		{Name: "Сервіси/Підписки", Type: models.DirectionExpense, Icon: "📺",
			Keywords: []string{"netflix", "spotify", "youtube", "підписка", "subscription", "steam", "icloud", "chatgpt"}},
		{Name: "Електроніка", Type: models.DirectionExpense, Icon: "💻",
			Keywords: []string{"rozetka", "розетка", "comfy", "foxtrot", "фокстрот", "ноутбук", "телефон", "iphone", "samsung"}},
		{Name: "Ліки/Лікарі", Type: models.DirectionExpense, Icon: "💊",
			Keywords: []string{"аптека", "ліки", "лікар", "клініка", "аналізи", "стоматолог"}},
		{Name: "Спортзал", Type: models.DirectionExpense, Icon: "🏋️",
			Keywords: []string{"спортзал", "фітнес", "fitness", "gym", "басейн", "тренування"}},
		{Name: "Одяг/Взуття", Type: models.DirectionExpense, Icon: "👕",
			Keywords: []string{"одяг", "взуття", "zara", "h&m", "кросівки", "куртка", "джинси"}},
		{Name: "Події/Хобі", Type: models.DirectionExpense, Icon: "🎟",
			Keywords: []string{"кіно", "cinema", "концерт", "театр", "квиток", "хобі"}},
		{Name: "ЗСУ/Волонтери", Type: models.DirectionExpense, Icon: "🇺🇦",
			Keywords: []string{"зсу", "донат", "благодійність", "волонтер", "prytula", "збір"}},
		{Name: models.CategoryFallbackExpense, Type: models.DirectionExpense, Icon: "📦"},

		{Name: "Зарплата", Type: models.DirectionIncome, Icon: "💰",
			Keywords: []string{"зарплата", "зп", "salary", "аванс", "виплата"}},
		{Name: "Фріланс", Type: models.DirectionIncome, Icon: "🧑‍💻",
			Keywords: []string{"фріланс", "freelance", "upwork", "замовлення", "проект", "гонорар"}},
		{Name: "Подарунок", Type: models.DirectionIncome, Icon: "🎁",
			Keywords: []string{"подарунок", "подарували", "gift"}},
		{Name: models.CategoryFallbackIncome, Type: models.DirectionIncome, Icon: "➕"},

		{Name: "Інвестиції/Скарбничка", Type: models.DirectionTransfer, Icon: "🏦",
			Keywords: []string{"відклав", "відклала", "банка", "скарбничка", "накопичення", "депозит", "заощадження"}},
		{Name: "Обмін валют", Type: models.DirectionTransfer, Icon: "💱",
			Keywords: []string{"обмін", "валюта", "долари", "євро", "exchange"}},
		{Name: models.CategoryFallbackTransfer, Type: models.DirectionTransfer, Icon: "↔️"},
	}

	for i := range cats {
		cats[i].ID = fmt.Sprintf("global-%02d", i+1)
	}
	return cats
}
