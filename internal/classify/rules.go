package classify

// DefaultRules is the built-in table. Order matters: specific merchants and
// income kinds come before the broad transfer and top-up buckets.
func DefaultRules() []Rule {
	return []Rule{
		{Category: "Зарплата", Keywords: []string{"зарплат", "заработн", "аванс", "salary"}},
		{Category: "Кэшбэк", Keywords: []string{"кэшбэк", "кешбэк", "cashback", "бонус"}},
		{Category: "Проценты", Keywords: []string{"проценты на остаток", "капитализация", "начисление процентов"}},
		{Category: "Возврат", Keywords: []string{"возврат", "refund"}},
		{Category: "Маркетплейсы", Keywords: []string{"ozon", "озон", "wildberries", "вайлдберриз", "aliexpress", "яндекс маркет", "market.yandex"}},
		{Category: "Продукты", Keywords: []string{"пятерочка", "пятёрочка", "перекресток", "перекрёсток", "магнит", "ашан", "лента", "вкусвилл", "дикси", "spar", "metro c&c", "продукт", "супермаркет"}},
		{Category: "Рестораны", Keywords: []string{"кафе", "ресторан", "кофейн", "coffee", "макдоналдс", "вкусно и точка", "kfc", "burger", "бургер", "пицц", "суши", "додо"}},
		{Category: "Такси", Keywords: []string{"такси", "taxi", "uber", "ситимобил"}},
		{Category: "Транспорт", Keywords: []string{"метро", "mosmetro", "тройка", "транспорт", "ржд", "аэрофлот", "электричк", "автобус"}},
		{Category: "Автомобиль", Keywords: []string{"азс", "лукойл", "газпромнефть", "роснефть", "shell", "автомойк", "парковк"}},
		{Category: "Здоровье", Keywords: []string{"аптек", "apteka", "клиник", "стоматолог", "медицин", "анализ"}},
		{Category: "Связь", Keywords: []string{"мтс", "билайн", "мегафон", "tele2", "теле2", "ростелеком", "связь", "интернет"}},
		{Category: "ЖКХ", Keywords: []string{"жкх", "жку", "коммунал", "электроэнерг", "водоканал", "мосэнерго", "квартплат"}},
		{Category: "Развлечения", Keywords: []string{"кино", "театр", "концерт", "netflix", "spotify", "кинопоиск", "steam", "playstation"}},
		{Category: "Одежда", Keywords: []string{"одежд", "обувь", "zara", "h&m", "uniqlo", "спортмастер", "lamoda"}},
		{Category: "Образование", Keywords: []string{"курс", "обучени", "школ", "университет", "skillbox", "нетология"}},
		{Category: "Налоги и сборы", Keywords: []string{"налог", "госуслуг", "штраф", "пошлин", "фнс"}},
		{Category: "Наличные", Keywords: []string{"снятие наличных", "банкомат", "atm", "внесение наличных"}},
		{Category: "Пополнение", Keywords: []string{"пополнение", "зачисление"}},
		{Category: "Переводы", Keywords: []string{"перевод", "сбп", "transfer"}},
	}
}
