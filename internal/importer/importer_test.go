package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/stmtimport/internal/banks"
	"github.com/cleared-dev/stmtimport/internal/classify"
	"github.com/cleared-dev/stmtimport/internal/source"
	"github.com/cleared-dev/stmtimport/internal/tabular"
)

func TestDefaultRegistry_Order(t *testing.T) {
	r := DefaultRegistry(classify.Default())
	assert.Equal(t, []string{HandlerSberbank, HandlerAlfa, HandlerOzon, HandlerGeneric, HandlerTBank}, r.Names())
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("nonexistent")
	assert.ErrorIs(t, err, ErrUnknownHandler)
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := DefaultRegistry(nil)
	for _, name := range []string{"tbank", "TBank", "TBANK"} {
		h, err := r.Get(name)
		require.NoError(t, err)
		assert.Equal(t, HandlerTBank, h.Name())
	}
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(NewTableHandler("x", tabular.DefaultConfig(), nil, nil, true))
	assert.Panics(t, func() {
		r.Register(NewTableHandler("X", tabular.DefaultConfig(), nil, nil, true))
	})
}

func TestBuildRegistry_ExtraProfilesComeFirst(t *testing.T) {
	custom := banks.TBank()
	custom.Parse.Source = "Т-Банк"
	extra := banks.File{
		Text:  []banks.LineProfile{custom},
		Table: []tabular.HeaderSignature{{Name: "mybank", Combinations: [][]string{{"мой банк"}}, DateKeywords: []string{"дата"}, AmountKeywords: []string{"сумма"}, Config: tabular.DefaultConfig()}},
	}
	r, err := BuildRegistry(extra, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{HandlerTBank, "mybank", HandlerSberbank, HandlerAlfa, HandlerOzon, HandlerGeneric}, r.Names())
}

func TestBuildRegistry_InvalidProfile(t *testing.T) {
	bad := banks.TBank()
	bad.Name = "broken"
	bad.Signature.Positive = nil
	_, err := BuildRegistry(banks.File{Text: []banks.LineProfile{bad}}, nil)
	assert.ErrorContains(t, err, "broken")
}

func TestRegistry_Detect(t *testing.T) {
	r := DefaultRegistry(classify.Default())

	h, err := r.Detect(NewTextDocumentFromString("t.txt", "АО «ТБАНК»\nВыписка по карте\n01.03.2024\n"))
	require.NoError(t, err)
	assert.Equal(t, HandlerTBank, h.Name())

	h, err = r.Detect(NewTextDocumentFromString("s.txt", "ПАО Сбербанк\nВыписка по счёту\nРасшифровка операций\n"))
	require.NoError(t, err)
	assert.Equal(t, HandlerSberbank, h.Name())

	h, err = r.Detect(NewTextDocumentFromString("o.txt", "ООО «Озон Банк»\nВыписка по счёту\n01.03.2024\n-1 500,00 ₽\n"))
	require.NoError(t, err)
	assert.Equal(t, HandlerOzon, h.Name())

	rows := source.NewRowCursor([][]string{{"Дата", "Сумма"}, {"01.03.2024", "100"}})
	h, err = r.Detect(NewTableDocument("g.csv", source.KindCSV, rows))
	require.NoError(t, err)
	assert.Equal(t, HandlerGeneric, h.Name())
	assert.Equal(t, 0, rows.Position(), "detection does not consume rows")

	_, err = r.Detect(NewTextDocumentFromString("x.txt", "hello\nworld\n"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestTableHandler_Lenient(t *testing.T) {
	rows := [][]string{{"x", "y", "z"}, {"01.03.2024", "Кофе", "-100"}}

	strict := NewTableHandler("strict", tabular.DefaultConfig(), []tabular.HeaderSignature{banks.Alfa()}, nil, false)
	ok, err := strict.Validate(NewTableDocument("a.csv", source.KindCSV, source.NewRowCursor(rows)))
	require.NoError(t, err)
	assert.False(t, ok)

	lenient := NewTableHandler("lenient", tabular.DefaultConfig(), nil, nil, true)
	ok, err = lenient.Validate(NewTableDocument("a.csv", source.KindCSV, source.NewRowCursor(rows)))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()

	txt := filepath.Join(dir, "statement.txt")
	require.NoError(t, os.WriteFile(txt, []byte("АО «ТБАНК»\n01.03.2024\n"), 0o644))
	doc, err := OpenFile(txt, source.SheetSelector{})
	require.NoError(t, err)
	assert.Equal(t, source.KindText, doc.Kind)
	assert.Equal(t, "statement.txt", doc.Name)
	require.NotNil(t, doc.Lines())
	assert.Equal(t, 2, doc.Lines().Total())

	csvPath := filepath.Join(dir, "statement.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Дата;Сумма\n01.03.2024;100\n"), 0o644))
	doc, err = OpenFile(csvPath, source.SheetSelector{})
	require.NoError(t, err)
	assert.Equal(t, source.KindCSV, doc.Kind)
	require.NotNil(t, doc.Rows())
	assert.Equal(t, 2, doc.Rows().Total())

	_, err = OpenFile(filepath.Join(dir, "missing.txt"), source.SheetSelector{})
	assert.Error(t, err)
}

func TestScan_FindsStatements(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"bank.csv", "tbank.txt", "alfa.xlsx", "notes.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("data"), 0o644))
	}

	files, err := Scan(dir)
	require.NoError(t, err)
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"alfa.xlsx", "bank.csv", "tbank.txt"}, names)
}

func TestScan_IgnoresProcessedDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, processedDir), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.csv"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, processedDir, "old.csv"), []byte("data"), 0o644))

	files, err := Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "new.csv", files[0].Name)
}

func TestScan_MissingDir(t *testing.T) {
	files, err := Scan(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bank.csv"), []byte("data"), 0o644))

	require.NoError(t, MarkProcessed(dir, "bank.csv"))

	// Source gone.
	_, err := os.Stat(filepath.Join(dir, "bank.csv"))
	assert.True(t, os.IsNotExist(err))

	// Destination exists.
	_, err = os.Stat(filepath.Join(dir, "processed", "bank.csv"))
	assert.NoError(t, err)
}

func TestMarkProcessed_MissingFile(t *testing.T) {
	err := MarkProcessed(t.TempDir(), "ghost.csv")
	assert.True(t, err != nil && strings.Contains(err.Error(), "ghost.csv"))
}
