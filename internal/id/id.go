package id

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"

	"github.com/cleared-dev/stmtimport/internal/model"
)

// Fingerprint returns a stable hex id for a record. Two imports of the
// same statement line yield the same fingerprint. The note carries the
// time or authorization code, so same-day repeats at one merchant differ.
// "2024-03-01|1500.00|expense|RUB|оплата в кафе|время: 12:00|Тинькофф" -> sha256 hex
func Fingerprint(rec model.TransactionRecord) string {
	parts := []string{
		rec.Date.Format("2006-01-02"),
		rec.Amount.StringFixed(rec.Currency.DecimalPlaces()),
		rec.Direction(),
		string(rec.Currency),
		normalizeText(rec.Description),
		normalizeText(rec.Note),
		rec.Source,
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func normalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Short returns the first 12 characters of a fingerprint for display.
func Short(fp string) string {
	if len(fp) <= 12 {
		return fp
	}
	return fp[:12]
}

// NewRunID returns a random id for one import run.
func NewRunID() string {
	return uuid.NewString()
}

// ValidRunID reports whether s parses as a run id.
func ValidRunID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
