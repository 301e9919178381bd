package commands_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/stmtimport/internal/importlog"
	"github.com/cleared-dev/stmtimport/internal/ledger"
)

func tbankStatement(n int) string {
	lines := []string{"АО «ТБАНК»", "Справка о движении средств"}
	for i := 0; i < n; i++ {
		lines = append(lines,
			fmt.Sprintf("%02d.03.2024", i+1),
			"12:00",
			fmt.Sprintf("-%d,00 ₽ -%d,00 ₽ Покупка %d", (i+1)*100, (i+1)*100, i),
		)
	}
	return strings.Join(lines, "\n") + "\n"
}

func initWorkspace(t *testing.T, args ...string) string {
	t.Helper()
	dir := t.TempDir()
	out, err := runStmtimport(t, append([]string{"init", dir}, args...)...)
	require.NoError(t, err, out)
	return dir
}

func writeStatement(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, "import", name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestImport_CSVSink(t *testing.T) {
	dir := initWorkspace(t, "--sink", "csv")
	path := writeStatement(t, dir, "march.txt", tbankStatement(3))

	out, err := runStmtimport(t, "import", path, "--dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "march.txt: imported 3 via tbank")
	assert.Contains(t, out, "total -600")

	recs, err := ledger.ReadFile(filepath.Join(dir, "transactions.csv"))
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.True(t, recs[0].Expense)
	assert.Equal(t, "100", recs[0].Amount.String())

	entries, err := importlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, importlog.StatusSuccess, entries[0].Status)
	assert.Equal(t, "tbank", entries[0].Handler)
}

func TestImport_SQLiteDeduplicates(t *testing.T) {
	dir := initWorkspace(t)
	path := writeStatement(t, dir, "march.txt", tbankStatement(2))

	out, err := runStmtimport(t, "import", path, "--dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "imported 2")

	out, err = runStmtimport(t, "import", path, "--dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "imported 0")
	assert.Contains(t, out, "2 records were not saved")

	out, err = runStmtimport(t, "history", "--dir", dir, "--db")
	require.NoError(t, err, out)
	assert.Equal(t, 2, strings.Count(out, "march.txt"))
	assert.Contains(t, out, "tbank")
}

func TestImport_DryRunWritesNothing(t *testing.T) {
	dir := initWorkspace(t, "--sink", "csv")
	path := writeStatement(t, dir, "march.txt", tbankStatement(1))

	out, err := runStmtimport(t, "import", path, "--dir", dir, "--dry-run")
	require.NoError(t, err, out)
	assert.Contains(t, out, "imported 1")

	_, err = os.Stat(filepath.Join(dir, "transactions.csv"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "logs", "import-log.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestImport_AllMovesProcessed(t *testing.T) {
	dir := initWorkspace(t, "--sink", "csv")
	writeStatement(t, dir, "a.txt", tbankStatement(1))
	writeStatement(t, dir, "b.txt", "nothing to see here\n")

	out, err := runStmtimport(t, "import", "--all", "--dir", dir)
	require.Error(t, err, "one import should fail")
	assert.Contains(t, out, "a.txt: imported 1")
	assert.Contains(t, out, "b.txt: format validation failed")

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "a.txt"))
	require.NoError(t, err, "imported file should move to processed/")
	_, err = os.Stat(filepath.Join(dir, "import", "b.txt"))
	require.NoError(t, err, "failed file should stay in import/")

	out, err = runStmtimport(t, "history", "--dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "success")
	assert.Contains(t, out, "failure")
}

func TestImport_UnknownBank(t *testing.T) {
	dir := initWorkspace(t)
	path := writeStatement(t, dir, "march.txt", tbankStatement(1))

	out, err := runStmtimport(t, "import", path, "--dir", dir, "--bank", "nope")
	require.Error(t, err)
	assert.Contains(t, out, "unknown bank")
}

func TestImport_FilesAndAllConflict(t *testing.T) {
	dir := initWorkspace(t)
	_, err := runStmtimport(t, "import", "x.txt", "--all", "--dir", dir)
	require.Error(t, err)
}

func TestBanks_ListsDetectionOrder(t *testing.T) {
	dir := initWorkspace(t)
	out, err := runStmtimport(t, "banks", "--dir", dir)
	require.NoError(t, err, out)

	order := []string{"sberbank", "alfa", "ozon", "generic", "tbank"}
	last := -1
	for _, name := range order {
		i := strings.Index(out, name)
		require.GreaterOrEqual(t, i, 0, "%s missing from %q", name, out)
		assert.Greater(t, i, last, "%s out of order", name)
		last = i
	}
}

func TestBanks_ExportIsLoadable(t *testing.T) {
	dir := initWorkspace(t)
	path := filepath.Join(dir, "banks.yaml")
	out, err := runStmtimport(t, "banks", "export", path)
	require.NoError(t, err, out)

	cfg := filepath.Join(dir, "stmtimport.yaml")
	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfg, append(data, []byte("banks_file: banks.yaml\n")...), 0o644))

	out, err = runStmtimport(t, "banks", "--dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "tbank")
}

func TestHistory_FiltersByRun(t *testing.T) {
	dir := initWorkspace(t, "--sink", "csv")
	writeStatement(t, dir, "a.txt", tbankStatement(1))
	writeStatement(t, dir, "b.txt", tbankStatement(2))

	out, err := runStmtimport(t, "import", "--all", "--dir", dir)
	require.NoError(t, err, out)

	entries, err := importlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	out, err = runStmtimport(t, "history", "--dir", dir, "--run", entries[0].RunID)
	require.NoError(t, err, out)
	assert.Contains(t, out, entries[0].File)
	assert.NotContains(t, out, entries[1].File)
	assert.Contains(t, out, "run="+entries[0].RunID)

	out, err = runStmtimport(t, "history", "--dir", dir, "--run", "not-a-run")
	require.Error(t, err)
	assert.Contains(t, out, "invalid run id")
}

func TestTransactions_ListsSink(t *testing.T) {
	t.Run("csv", func(t *testing.T) {
		dir := initWorkspace(t, "--sink", "csv")
		path := writeStatement(t, dir, "march.txt", tbankStatement(3))
		out, err := runStmtimport(t, "import", path, "--dir", dir)
		require.NoError(t, err, out)

		out, err = runStmtimport(t, "transactions", "--dir", dir)
		require.NoError(t, err, out)
		assert.Equal(t, 3, strings.Count(out, "Покупка"))
		assert.Contains(t, out, "-300")

		out, err = runStmtimport(t, "ledger", "--dir", dir, "--limit", "1")
		require.NoError(t, err, out)
		assert.Equal(t, 1, strings.Count(out, "Покупка"))
		assert.Contains(t, out, "Покупка 2")
	})

	t.Run("sqlite", func(t *testing.T) {
		dir := initWorkspace(t)
		out, err := runStmtimport(t, "transactions", "--dir", dir)
		require.NoError(t, err, out)
		assert.Contains(t, out, "No transactions yet")

		path := writeStatement(t, dir, "march.txt", tbankStatement(2))
		out, err = runStmtimport(t, "import", path, "--dir", dir)
		require.NoError(t, err, out)

		out, err = runStmtimport(t, "transactions", "--dir", dir)
		require.NoError(t, err, out)
		assert.Equal(t, 2, strings.Count(out, "Покупка"))
		assert.Contains(t, out, "2024-03-01")
	})
}

func TestCategories_ListsRuleOrder(t *testing.T) {
	dir := initWorkspace(t)
	out, err := runStmtimport(t, "categories", "--dir", dir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "1. Зарплата")
	assert.Less(t, strings.Index(out, "Маркетплейсы"), strings.Index(out, "Продукты"))
}
