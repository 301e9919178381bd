package detect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/stmtimport/internal/source"
)

func testSignature() Signature {
	return Signature{
		Positive:      []string{"ТБАНК", "Тинькофф"},
		Negative:      []string{"Сбербанк", "Ozon Банк"},
		Titles:        []string{"Выписка по карте", "Справка о движении средств"},
		DatePattern:   `^\d{2}\.\d{2}\.\d{4}$`,
		AmountPattern: `[+\-]?\s*\d[\d\s.,]*\d\s*[₽PР]`,
		DataStart:     []string{`^\d{2}\.\d{2}\.\d{4}$`},
		MaxSkip:       10,
	}
}

func compile(t *testing.T, sig Signature) *Detector {
	t.Helper()
	d, err := Compile(sig)
	require.NoError(t, err)
	return d
}

func TestDetect(t *testing.T) {
	d := compile(t, testSignature())
	tests := []struct {
		name    string
		header  []string
		content string
		want    bool
	}{
		{
			name:    "keyword and title",
			header:  []string{"АО «ТБАНК»", "Выписка по карте"},
			content: "АО «ТБАНК»\nВыписка по карте",
			want:    true,
		},
		{
			name:    "keyword and structure",
			header:  []string{"Тинькофф"},
			content: "Тинькофф\n01.03.2024\n-1 500 ₽ Оплата кафе",
			want:    true,
		},
		{
			name:    "keyword with date only",
			header:  []string{"Тинькофф"},
			content: "Тинькофф\n01.03.2024",
			want:    false,
		},
		{
			name:    "title without keyword",
			header:  []string{"Выписка по карте"},
			content: "Выписка по карте\n01.03.2024\n100 ₽",
			want:    false,
		},
		{
			name:    "competitor vetoes",
			header:  []string{"ПАО Сбербанк", "перевод в ТБАНК"},
			content: "Выписка по карте\n01.03.2024\n100 ₽",
			want:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.header, tt.content).Matched())
		})
	}
}

func TestDetect_NegativeShortCircuits(t *testing.T) {
	d := compile(t, testSignature())
	c := d.Detect([]string{"ТБАНК", "OZON БАНК"}, "Выписка по карте")
	assert.Equal(t, "ozon банк", c.Negative)
	assert.False(t, c.Positive, "positive signals are not evaluated after a veto")
	assert.False(t, c.Matched())
	assert.Contains(t, c.String(), "vetoed")
}

func TestDetectCursor_DoesNotConsume(t *testing.T) {
	d := compile(t, testSignature())
	c := source.NewLineCursorFromString("АО «ТБАНК»\nВыписка по карте\n01.03.2024\n-100 ₽\n")

	conf, err := d.DetectCursor(c)
	require.NoError(t, err)
	assert.True(t, conf.Matched())
	assert.Equal(t, 0, c.Position())

	line, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, "АО «ТБАНК»", line)
}

func TestSample_ShortInput(t *testing.T) {
	c := source.NewLineCursorFromString("a\nb")
	lines, err := Sample(c, 40)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lines)
	assert.Equal(t, 0, c.Position())
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile(Signature{})
	assert.Error(t, err)

	sig := testSignature()
	sig.DatePattern = "(["
	_, err = Compile(sig)
	assert.ErrorContains(t, err, "date pattern")
}

func TestSkipHeaders_StopsBeforeDataLine(t *testing.T) {
	d := compile(t, testSignature())
	c := source.NewLineCursorFromString("АО «ТБАНК»\nВыписка сформирована: 05.03.2024\nДата\n01.03.2024\n-100 ₽\n")

	res, err := d.SkipHeaders(c)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, 3, res.Skipped)

	line, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, "01.03.2024", line, "the data line is re-read by the parser")
}

func TestSkipHeaders_DataOnFirstLine(t *testing.T) {
	d := compile(t, testSignature())
	c := source.NewLineCursorFromString("01.03.2024\n-100 ₽\n")
	res, err := d.SkipHeaders(c)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, 0, c.Position())
}

func TestSkipHeaders_BoundRewinds(t *testing.T) {
	d := compile(t, testSignature())
	text := strings.Repeat("шапка\n", 20) + "01.03.2024\n"
	c := source.NewLineCursorFromString(text)

	res, err := d.SkipHeaders(c)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, 0, c.Position())
}

func TestSkipHeaders_NoDataAtAll(t *testing.T) {
	d := compile(t, testSignature())
	c := source.NewLineCursorFromString("one\ntwo\n")
	res, err := d.SkipHeaders(c)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, 0, c.Position())
}

func TestSkipHeaders_StartMarker(t *testing.T) {
	sig := testSignature()
	sig.StartMarker = `(?i)расшифровка операций`
	sig.MaxSkip = 50
	d := compile(t, sig)

	text := "01.02.2024\nОстаток на 01.02.2024\nРасшифровка операций\nДАТА ОПЕРАЦИИ\n01.03.2024\n"
	c := source.NewLineCursorFromString(text)
	res, err := d.SkipHeaders(c)
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, 4, res.Skipped)

	line, _ := c.Next()
	assert.Equal(t, "01.03.2024", line)
}

func TestSkipHeaders_MissingStartMarkerRewinds(t *testing.T) {
	sig := testSignature()
	sig.StartMarker = `Расшифровка операций`
	d := compile(t, sig)

	c := source.NewLineCursorFromString("01.03.2024\n-100 ₽\n")
	res, err := d.SkipHeaders(c)
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, 0, c.Position())
}
