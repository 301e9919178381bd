package lineparse

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtimport/internal/model"
)

// Direction is the money flow of a partial transaction.
type Direction int8

const (
	DirectionUnknown Direction = iota
	DirectionExpense
	DirectionIncome
)

// Partial is the accumulator for one transaction spread over several
// lines. The zero value is empty.
type Partial struct {
	Date      time.Time
	HasDate   bool
	Token     string // time of day, document number
	Fragments []string
	Amount    decimal.Decimal
	HasAmount bool
	Currency  model.Currency
	Direction Direction
	Complete  bool
}

// Valid reports whether p can be finalized into a record.
func (p Partial) Valid() bool {
	return p.HasDate && p.HasAmount && p.Direction != DirectionUnknown
}

// withFragment returns p with s appended. The fragment slice is clipped
// first so an earlier Partial value never sees the append.
func (p Partial) withFragment(s string) Partial {
	s = strings.TrimSpace(s)
	if s == "" {
		return p
	}
	p.Fragments = append(slices.Clip(p.Fragments), s)
	return p
}

// EffectKind says what a line did to the accumulator.
type EffectKind int

const (
	// EffectNoise means the line was not recognized and no date is set.
	EffectNoise EffectKind = iota
	// EffectIgnored means the line matched an ignore pattern or was blank.
	EffectIgnored
	// EffectUpdated means the accumulator absorbed the line.
	EffectUpdated
	// EffectEmitted means a record was finalized.
	EffectEmitted
	// EffectDropped means an incomplete accumulator was discarded.
	EffectDropped
)

func (k EffectKind) String() string {
	switch k {
	case EffectNoise:
		return "noise"
	case EffectIgnored:
		return "ignored"
	case EffectUpdated:
		return "updated"
	case EffectEmitted:
		return "emitted"
	case EffectDropped:
		return "dropped"
	}
	return "unknown"
}

// Effect is the outcome of feeding one line.
type Effect struct {
	Kind    EffectKind
	Record  model.TransactionRecord // set when Kind is EffectEmitted
	Dropped Partial                 // set when Kind is EffectDropped
}
