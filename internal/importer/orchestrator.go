package importer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/stmtimport/internal/logger"
	"github.com/cleared-dev/stmtimport/internal/model"
)

// DefaultProgressEvery is the minimum number of units between progress
// events.
const DefaultProgressEvery = 100

// maxProgressEvents bounds progress events per import when the total is
// known.
const maxProgressEvents = 50

// Orchestrator runs one document through validation, header skipping,
// parsing and persistence, reporting through ImportEvents.
type Orchestrator struct {
	Registry      *Registry
	Sink          Sink
	ProgressEvery int
}

// Run executes the import in a goroutine. The channel carries progress
// events followed by exactly one terminal event and is then closed. The
// caller must drain it.
func (o *Orchestrator) Run(ctx context.Context, doc *Document, handler string) <-chan model.ImportEvent {
	ch := make(chan model.ImportEvent, 16)
	go func() {
		defer close(ch)
		o.Execute(ctx, doc, handler, func(ev model.ImportEvent) { ch <- ev })
	}()
	return ch
}

// Execute imports doc synchronously, calling emit for every event, and
// returns the terminal event. An empty handler name means auto-detect. A
// failure is preceded by a progress event in the phase it happened in,
// with the error as its step.
func (o *Orchestrator) Execute(ctx context.Context, doc *Document, handler string, emit func(model.ImportEvent)) model.ImportEvent {
	if emit == nil {
		emit = func(model.ImportEvent) {}
	}
	log := logger.FromContext(ctx).With().Str("file", doc.Name).Logger()
	j := &job{o: o, ctx: ctx, doc: doc, emit: emit, log: log, total: decimal.Zero}

	term := j.run(handler)
	switch ev := term.(type) {
	case model.Success:
		j.log.Info().
			Int("imported", ev.Imported).
			Int("skipped", ev.Skipped).
			Int("save_failures", ev.SaveFailures).
			Str("total", ev.Total.StringFixed(2)).
			Msg("import finished")
	case model.Failure:
		j.log.Error().Err(ev.Cause).Msg(ev.Message)
		j.progress(j.last.Phase, j.last.Current, j.last.Total, ev.Error())
	}
	emit(term)
	return term
}

type job struct {
	o    *Orchestrator
	ctx  context.Context
	doc  *Document
	emit func(model.ImportEvent)
	log  zerolog.Logger
	last model.Progress

	imported     int
	skipped      int
	saveFailures int
	total        decimal.Decimal
}

func fail(msg string, cause error) model.Failure {
	return model.Failure{Message: msg, Cause: cause}
}

func (j *job) progress(phase model.Phase, current, total int, step string) {
	j.last = model.Progress{Phase: phase, Current: current, Total: total, Step: step}
	j.emit(j.last)
}

func (j *job) run(name string) model.ImportEvent {
	if j.ctx.Err() != nil {
		return fail("cancelled", ErrCancelled)
	}

	j.progress(model.PhaseValidatingFormat, 0, 0, "validating format")
	h, err := j.resolve(name)
	if err != nil {
		return fail("format validation failed", err)
	}
	j.log = j.log.With().Str("handler", h.Name()).Logger()
	j.log.Debug().Msg("format validated")

	parser, err := h.NewParser(j.doc)
	if err != nil {
		return fail("format validation failed", err)
	}

	j.progress(model.PhaseSkippingHeaders, 0, 0, "skipping headers")
	skipped, err := parser.SkipHeaders()
	if err != nil {
		return fail("reading source", err)
	}
	j.log.Debug().Int("lines", skipped).Msg("headers skipped")

	estimate := max(parser.Estimate()-skipped, 0)
	every := j.o.ProgressEvery
	if every <= 0 {
		every = DefaultProgressEvery
	}
	every = max(every, estimate/maxProgressEvents)

	units := 0
	for {
		if units%every == 0 {
			if j.ctx.Err() != nil {
				j.log.Warn().Int("units", units).Int("imported", j.imported).Msg("import cancelled")
				return fail("cancelled", ErrCancelled)
			}
			j.progress(model.PhaseParsingRows, units, estimate,
				fmt.Sprintf("parsed %d, imported %d", units, j.imported))
		}

		step, err := parser.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail("reading source", err)
		}
		units++
		j.apply(step)
	}
	j.apply(parser.Flush())

	j.progress(model.PhasePersisting, j.imported, j.imported, "persisting")
	if f, ok := j.o.Sink.(Flusher); ok {
		if err := f.Flush(j.ctx); err != nil {
			return fail("persisting records", err)
		}
	}

	j.progress(model.PhaseFinished, units, units, "finished")
	return model.Success{
		Handler:      h.Name(),
		Imported:     j.imported,
		Skipped:      j.skipped + j.saveFailures,
		SaveFailures: j.saveFailures,
		Total:        j.total,
	}
}

func (j *job) resolve(name string) (Handler, error) {
	if name == "" {
		return j.o.Registry.Detect(j.doc)
	}
	h, err := j.o.Registry.Get(name)
	if err != nil {
		return nil, err
	}
	if !h.Accepts(j.doc.Kind) {
		return nil, fmt.Errorf("%s cannot read %s files: %w", h.Name(), j.doc.Kind, ErrUnsupportedFormat)
	}
	ok, err := h.Validate(j.doc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s does not look like a %s statement: %w", j.doc.Name, h.Name(), ErrUnsupportedFormat)
	}
	return h, nil
}

func (j *job) apply(step Step) {
	if step.Skipped > 0 {
		j.skipped += step.Skipped
		j.log.Debug().Str("reason", step.Reason).Msg("unit skipped")
	}
	for _, rec := range step.Records {
		if err := j.o.Sink.Save(j.ctx, rec); err != nil {
			j.saveFailures++
			j.log.Warn().Err(err).
				Str("date", rec.Date.Format("2006-01-02")).
				Str("amount", rec.Signed().String()).
				Msg("record not saved")
			continue
		}
		j.imported++
		j.total = j.total.Add(rec.Signed())
	}
}
