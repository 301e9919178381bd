package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Phase is a step of the import pipeline.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseValidatingFormat
	PhaseSkippingHeaders
	PhaseParsingRows
	PhasePersisting
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not-started"
	case PhaseValidatingFormat:
		return "validating-format"
	case PhaseSkippingHeaders:
		return "skipping-headers"
	case PhaseParsingRows:
		return "parsing-rows"
	case PhasePersisting:
		return "persisting"
	case PhaseFinished:
		return "finished"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// ImportEvent is one of Progress, Success or Failure.
type ImportEvent interface {
	isImportEvent()
}

// Progress reports work done so far. Total is an estimate and may be zero
// when the source size is unknown.
type Progress struct {
	Phase   Phase
	Current int
	Total   int
	Step    string
}

// Success terminates a stream that ran to completion.
type Success struct {
	Handler      string
	Imported     int
	Skipped      int // rejected rows plus SaveFailures
	SaveFailures int
	Total        decimal.Decimal // sum of imported amounts
}

// Failure terminates a stream that could not complete.
type Failure struct {
	Message string
	Cause   error
}

func (Progress) isImportEvent() {}
func (Success) isImportEvent()  {}
func (Failure) isImportEvent()  {}

func (f Failure) Error() string {
	if f.Cause != nil {
		return f.Message + ": " + f.Cause.Error()
	}
	return f.Message
}

func (f Failure) Unwrap() error { return f.Cause }

// IsTerminal reports whether ev ends a stream.
func IsTerminal(ev ImportEvent) bool {
	switch ev.(type) {
	case Success, Failure:
		return true
	}
	return false
}
