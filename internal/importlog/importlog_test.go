package importlog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/stmtimport/internal/model"
)

var testTime = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp: testTime,
		RunID:     "7b0c9a64-5a55-4d0f-9f53-0e0f3c1d2a11",
		File:      "tbank-march.txt",
		Handler:   "tbank",
		Status:    StatusSuccess,
		Imported:  42,
		Skipped:   3,
		Total:     decimal.RequireFromString("-12345.67"),
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tbank", entries[0].Handler)
	assert.Equal(t, 42, entries[0].Imported)
	assert.True(t, entries[0].Total.Equal(decimal.RequireFromString("-12345.67")))
	assert.Equal(t, testTime, entries[0].Timestamp)
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	e2 := testEntry()
	e2.File = "alfa.xlsx"
	e2.Status = StatusFailure
	e2.Message = "format validation failed: unsupported statement format"
	require.NoError(t, Append(dir, []Entry{e2}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "tbank-march.txt", entries[0].File)
	assert.Equal(t, StatusFailure, entries[1].Status)
	assert.Equal(t, e2.Message, entries[1].Message)

	data, err := os.ReadFile(filepath.Join(dir, logFile))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), Header))
}

func TestRead_NoFile(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	good := MarshalEntry(testEntry())
	for _, col := range []int{colTimestamp, colImported, colSkipped, colTotal} {
		row := append([]string(nil), good...)
		row[col] = "garbage"
		_, err := UnmarshalEntry(row)
		assert.Error(t, err, "column %d", col)
	}
	_, err := UnmarshalEntry([]string{"x"})
	assert.Error(t, err)
}

func TestFromEvent(t *testing.T) {
	e := FromEvent("r1", "a.txt", "tbank", model.Success{Imported: 5, Skipped: 2, SaveFailures: 1, Total: decimal.NewFromInt(-100)})
	assert.Equal(t, StatusSuccess, e.Status)
	assert.Equal(t, 5, e.Imported)
	assert.Equal(t, 2, e.Skipped)
	assert.Equal(t, "1 records not saved", e.Message)

	e = FromEvent("r2", "b.txt", "", model.Failure{Message: "cancelled", Cause: errors.New("import cancelled")})
	assert.Equal(t, StatusFailure, e.Status)
	assert.Equal(t, "cancelled: import cancelled", e.Message)
	assert.True(t, e.Total.IsZero())
}
