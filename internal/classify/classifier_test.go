package classify

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Default(t *testing.T) {
	c := Default()
	tests := []struct {
		desc string
		want string
	}{
		{"Зарплата за февраль", "Зарплата"},
		{"Оплата кафе", "Рестораны"},
		{"ПЯТЕРОЧКА 1234 MOSCOW", "Продукты"},
		{"Яндекс.Такси поездка", "Такси"},
		{"Аптека Ригла", "Здоровье"},
		{"Перевод Ивану И.", "Переводы"},
		{"Пополнение через банкомат Т-Банка", "Наличные"},
		{"Загадочный платеж", Uncategorized},
		{"", Uncategorized},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.desc), "Classify(%q)", tt.desc)
	}
}

func TestClassify_FirstRuleWins(t *testing.T) {
	// Both the marketplace and the transfer rule match; the marketplace rule
	// is listed first.
	c := Default()
	assert.Equal(t, "Маркетплейсы", c.Classify("Перевод на счет OZON"))

	swapped := New([]Rule{
		{Category: "Переводы", Keywords: []string{"перевод"}},
		{Category: "Маркетплейсы", Keywords: []string{"ozon"}},
	}, "")
	assert.Equal(t, "Переводы", swapped.Classify("Перевод на счет OZON"))
}

func TestDefaultRules_Ordering(t *testing.T) {
	cats := Default().Categories()
	index := func(name string) int {
		for i, c := range cats {
			if c == name {
				return i
			}
		}
		t.Fatalf("category %s missing", name)
		return -1
	}
	assert.Less(t, index("Маркетплейсы"), index("Переводы"))
	assert.Less(t, index("Возврат"), index("Пополнение"))
	assert.Less(t, index("Наличные"), index("Пополнение"))
	assert.Equal(t, len(cats)-1, index("Переводы"))
}

func TestClassify_CaseInsensitiveKeywords(t *testing.T) {
	c := New([]Rule{{Category: "Кофе", Keywords: []string{"  STARBUCKS "}}}, "Misc")
	assert.Equal(t, "Кофе", c.Classify("starbucks #12"))
	assert.Equal(t, "Misc", c.Classify("tea house"))
}

func TestClassify_Concurrent(t *testing.T) {
	c := Default()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, "Рестораны", c.Classify("Оплата кафе"))
			}
		}()
	}
	wg.Wait()
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, SaveFile(path, File{
		Fallback: "Misc",
		Rules: []Rule{
			{Category: "Coffee", Keywords: []string{"latte"}},
			{Category: "Transfers", Keywords: []string{"перевод"}},
		},
	}))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Coffee", c.Classify("LATTE grande"))
	assert.Equal(t, "Transfers", c.Classify("Перевод"))
	assert.Equal(t, "Misc", c.Classify("nothing"))
}

func TestLoadFile_MissingCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  - keywords: [x]\n"), 0o644))
	_, err := LoadFile(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing category")
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
