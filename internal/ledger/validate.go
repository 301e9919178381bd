package ledger

import (
	"errors"
	"fmt"

	"github.com/cleared-dev/stmtimport/internal/model"
)

// Rules checked by Validate.
const (
	RuleNonNegative = "non-negative"
	RuleScale       = "scale"
	RuleDate        = "date"
	RuleCurrency    = "currency"
	RuleSource      = "source"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Rule        string
	Field       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.Rule, e.Field, e.Description)
}

// Validate checks the invariants every stored record must satisfy.
func Validate(rec model.TransactionRecord) []ValidationError {
	var errs []ValidationError

	if rec.Amount.IsNegative() {
		errs = append(errs, ValidationError{
			Rule:        RuleNonNegative,
			Field:       "amount",
			Description: fmt.Sprintf("amount %s is negative; direction belongs in the expense flag", rec.Amount),
		})
	}

	// Exact decimals: no finer than the currency's minor unit.
	places := rec.Currency.DecimalPlaces()
	if !rec.Amount.Equal(rec.Amount.Round(places)) {
		errs = append(errs, ValidationError{
			Rule:        RuleScale,
			Field:       "amount",
			Description: fmt.Sprintf("amount %s has more than %d decimal places", rec.Amount, places),
		})
	}

	if rec.Date.IsZero() {
		errs = append(errs, ValidationError{Rule: RuleDate, Field: "date", Description: "date is missing"})
	}

	if !rec.Currency.Known() {
		errs = append(errs, ValidationError{
			Rule:        RuleCurrency,
			Field:       "currency",
			Description: fmt.Sprintf("unknown currency %q", rec.Currency),
		})
	}

	if rec.Source == "" {
		errs = append(errs, ValidationError{Rule: RuleSource, Field: "source", Description: "source is empty"})
	}

	return errs
}

// Check is Validate folded into a single error, nil when rec is valid.
func Check(rec model.TransactionRecord) error {
	verrs := Validate(rec)
	if len(verrs) == 0 {
		return nil
	}
	errs := make([]error, len(verrs))
	for i, e := range verrs {
		errs[i] = e
	}
	return errors.Join(errs...)
}
