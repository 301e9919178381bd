package importer

import (
	"errors"
	"fmt"
	"io"

	"github.com/cleared-dev/stmtimport/internal/banks"
	"github.com/cleared-dev/stmtimport/internal/detect"
	"github.com/cleared-dev/stmtimport/internal/lineparse"
	"github.com/cleared-dev/stmtimport/internal/model"
	"github.com/cleared-dev/stmtimport/internal/source"
	"github.com/cleared-dev/stmtimport/internal/tabular"
)

// Step is what one line or row produced.
type Step struct {
	Records []model.TransactionRecord
	Skipped int
	Reason  string // why Skipped is non-zero
}

// Parser walks a validated document.
type Parser interface {
	// SkipHeaders positions the parser at the first data unit and returns
	// how many units were passed.
	SkipHeaders() (int, error)
	// Next consumes one unit. It returns io.EOF when the document is done.
	Next() (Step, error)
	// Flush finalizes whatever is still pending at the end of input.
	Flush() Step
	// Estimate is a best-effort unit total including headers, zero when
	// unknown.
	Estimate() int
}

// Handler pairs a format validator with a parser factory.
type Handler interface {
	Name() string
	// Accepts reports whether the handler can read documents of kind k.
	Accepts(k source.Kind) bool
	// Validate inspects doc without consuming it.
	Validate(doc *Document) (bool, error)
	NewParser(doc *Document) (Parser, error)
}

// TextHandler reads text statements with a line profile.
type TextHandler struct {
	profile  banks.LineProfile
	detector *detect.Detector
	machine  *lineparse.Machine
}

// NewTextHandler compiles profile.
func NewTextHandler(profile banks.LineProfile, classifier lineparse.Classifier) (*TextHandler, error) {
	det, err := detect.Compile(profile.Signature)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", profile.Name, err)
	}
	m, err := lineparse.Compile(profile.Parse, classifier)
	if err != nil {
		return nil, fmt.Errorf("profile %q: %w", profile.Name, err)
	}
	return &TextHandler{profile: profile, detector: det, machine: m}, nil
}

func (h *TextHandler) Name() string { return h.profile.Name }

func (h *TextHandler) Accepts(k source.Kind) bool { return k == source.KindText }

func (h *TextHandler) Validate(doc *Document) (bool, error) {
	if doc.Lines() == nil {
		return false, nil
	}
	conf, err := h.detector.DetectCursor(doc.Lines())
	if err != nil {
		return false, err
	}
	return conf.Matched(), nil
}

func (h *TextHandler) NewParser(doc *Document) (Parser, error) {
	if doc.Lines() == nil {
		return nil, fmt.Errorf("%s: %w: not a text document", h.Name(), ErrUnsupportedFormat)
	}
	return &textParser{h: h, lines: doc.Lines()}, nil
}

type textParser struct {
	h     *TextHandler
	lines *source.LineCursor
	acc   lineparse.Partial
}

func (p *textParser) SkipHeaders() (int, error) {
	res, err := p.h.detector.SkipHeaders(p.lines)
	return res.Skipped, err
}

func (p *textParser) Next() (Step, error) {
	line, err := p.lines.Next()
	if err != nil {
		return Step{}, err
	}
	var eff lineparse.Effect
	p.acc, eff = p.h.machine.Feed(p.acc, line)
	switch eff.Kind {
	case lineparse.EffectEmitted:
		return Step{Records: []model.TransactionRecord{eff.Record}}, nil
	case lineparse.EffectDropped:
		return Step{Skipped: 1, Reason: "incomplete transaction dated " + eff.Dropped.Date.Format("02.01.2006")}, nil
	}
	return Step{}, nil
}

func (p *textParser) Flush() Step {
	acc := p.acc
	p.acc = lineparse.Partial{}
	if rec, ok := p.h.machine.Flush(acc); ok {
		return Step{Records: []model.TransactionRecord{rec}}
	}
	if acc.HasDate {
		return Step{Skipped: 1, Reason: "incomplete transaction at end of input"}
	}
	return Step{}
}

func (p *textParser) Estimate() int { return p.lines.Total() }

// TableHandler reads spreadsheets. With signatures it auto-detects the
// header row and column layout; a handler with Lenient set also accepts
// tables without a recognizable header when sample rows parse under the
// base config.
type TableHandler struct {
	name       string
	base       tabular.ParseConfig
	signatures []tabular.HeaderSignature
	classifier tabular.Classifier
	lenient    bool
}

// NewTableHandler builds a handler named name.
func NewTableHandler(name string, base tabular.ParseConfig, signatures []tabular.HeaderSignature, classifier tabular.Classifier, lenient bool) *TableHandler {
	return &TableHandler{name: name, base: base, signatures: signatures, classifier: classifier, lenient: lenient}
}

func (h *TableHandler) Name() string { return h.name }

func (h *TableHandler) Accepts(k source.Kind) bool { return k.Tabular() }

// Sheet is the worksheet the handler's config prefers.
func (h *TableHandler) Sheet() source.SheetSelector { return h.base.Sheet }

const sampleRows = tabular.DefaultScanRows

func (h *TableHandler) Validate(doc *Document) (bool, error) {
	if doc.Rows() == nil {
		return false, nil
	}
	rows := peekRows(doc.Rows(), sampleRows)
	if _, ok := h.detect(rows); ok {
		return true, nil
	}
	if !h.lenient {
		return false, nil
	}
	for _, row := range rows[min(len(rows), h.base.HeaderRows):] {
		if tabular.ParseRow(row, h.base, h.classifier).OK() {
			return true, nil
		}
	}
	return false, nil
}

func (h *TableHandler) NewParser(doc *Document) (Parser, error) {
	if doc.Rows() == nil {
		return nil, fmt.Errorf("%s: %w: not a table", h.Name(), ErrUnsupportedFormat)
	}
	cfg := h.base
	if det, ok := h.detect(peekRows(doc.Rows(), sampleRows)); ok {
		cfg = det.Config
	} else if !h.lenient {
		return nil, fmt.Errorf("%s: %w", h.Name(), tabular.ErrNoHeader)
	}
	return &tableParser{cfg: cfg, rows: doc.Rows(), classifier: h.classifier}, nil
}

func (h *TableHandler) detect(rows [][]string) (tabular.Detection, bool) {
	if len(h.signatures) == 0 {
		return tabular.Detection{}, false
	}
	det, err := tabular.AutoDetect(rows, h.signatures, sampleRows)
	return det, err == nil
}

// peekRows reads up to n rows and rewinds.
func peekRows(c *source.RowCursor, n int) [][]string {
	c.Mark()
	defer c.Unmark()
	var rows [][]string
	for len(rows) < n {
		row, err := c.Next()
		if err != nil {
			break
		}
		rows = append(rows, row)
	}
	_ = c.Reset()
	return rows
}

type tableParser struct {
	cfg        tabular.ParseConfig
	rows       *source.RowCursor
	classifier tabular.Classifier
}

func (p *tableParser) SkipHeaders() (int, error) {
	before := p.rows.Position()
	p.rows.Skip(p.cfg.HeaderRows)
	return p.rows.Position() - before, nil
}

func (p *tableParser) Next() (Step, error) {
	row, err := p.rows.Next()
	if errors.Is(err, io.EOF) {
		return Step{}, io.EOF
	}
	if err != nil {
		return Step{}, err
	}
	out := tabular.ParseRow(row, p.cfg, p.classifier)
	switch {
	case out.OK():
		return Step{Records: []model.TransactionRecord{out.Record}}, nil
	case out.Skip == tabular.SkipEmptyRow:
		return Step{}, nil
	}
	return Step{Skipped: 1, Reason: string(out.Skip)}, nil
}

func (p *tableParser) Flush() Step { return Step{} }

func (p *tableParser) Estimate() int { return p.rows.Total() }
