package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cleared-dev/stmtimport/internal/banks"
	"github.com/cleared-dev/stmtimport/internal/classify"
	"github.com/cleared-dev/stmtimport/internal/tabular"
)

var (
	// ErrUnsupportedFormat is returned when no handler validates a document.
	ErrUnsupportedFormat = errors.New("unsupported statement format")
	// ErrUnknownHandler is returned for a handler name that is not registered.
	ErrUnknownHandler = errors.New("unknown bank")
	// ErrCancelled is the cause of the terminal event of a cancelled import.
	ErrCancelled = errors.New("import cancelled")
)

// Registry holds handlers in detection order.
type Registry struct {
	handlers []Handler
	byName   map[string]Handler
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Handler)}
}

// Register appends a handler. Panics on a duplicate name.
func (r *Registry) Register(h Handler) {
	key := strings.ToLower(h.Name())
	if _, ok := r.byName[key]; ok {
		panic("duplicate handler: " + key)
	}
	r.byName[key] = h
	r.handlers = append(r.handlers, h)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[strings.ToLower(name)]
	return ok
}

// Get returns the handler registered under name.
func (r *Registry) Get(name string) (Handler, error) {
	h, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHandler, name)
	}
	return h, nil
}

// Names lists handlers in detection order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.handlers))
	for i, h := range r.handlers {
		names[i] = h.Name()
	}
	return names
}

// Handlers returns the handlers in detection order.
func (r *Registry) Handlers() []Handler {
	return append([]Handler(nil), r.handlers...)
}

// Detect returns the first handler that accepts and validates doc.
func (r *Registry) Detect(doc *Document) (Handler, error) {
	for _, h := range r.handlers {
		if !h.Accepts(doc.Kind) {
			continue
		}
		ok, err := h.Validate(doc)
		if err != nil {
			return nil, fmt.Errorf("validating %s: %w", h.Name(), err)
		}
		if ok {
			return h, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", doc.Name, ErrUnsupportedFormat)
}

// Handler names of the built-in registry.
const (
	HandlerSberbank = "sberbank"
	HandlerAlfa     = "alfa"
	HandlerOzon     = "ozon"
	HandlerGeneric  = "generic"
	HandlerTBank    = "tbank"
)

// DefaultRegistry returns the built-in handlers. The T-Bank detector is
// the broadest and is tried last.
func DefaultRegistry(classifier *classify.Classifier) *Registry {
	r, err := BuildRegistry(banks.File{}, classifier)
	if err != nil {
		panic(err)
	}
	return r
}

// BuildRegistry registers the profiles of extra ahead of the built-in
// handlers. A built-in handler whose name is taken by extra is left out.
func BuildRegistry(extra banks.File, classifier *classify.Classifier) (*Registry, error) {
	if classifier == nil {
		classifier = classify.Default()
	}
	r := NewRegistry()

	for _, p := range extra.Text {
		h, err := NewTextHandler(p, classifier)
		if err != nil {
			return nil, err
		}
		r.Register(h)
	}
	for _, sig := range extra.Table {
		r.Register(NewTableHandler(sig.Name, sig.Config, []tabular.HeaderSignature{sig}, classifier, false))
	}

	add := func(name string, build func() (Handler, error)) error {
		if r.Has(name) {
			return nil
		}
		h, err := build()
		if err != nil {
			return err
		}
		r.Register(h)
		return nil
	}
	text := func(p banks.LineProfile) func() (Handler, error) {
		return func() (Handler, error) { return NewTextHandler(p, classifier) }
	}

	if err := add(HandlerSberbank, text(banks.Sberbank())); err != nil {
		return nil, err
	}
	if err := add(HandlerAlfa, func() (Handler, error) {
		alfa := banks.Alfa()
		return NewTableHandler(HandlerAlfa, alfa.Config, []tabular.HeaderSignature{alfa}, classifier, false), nil
	}); err != nil {
		return nil, err
	}
	if err := add(HandlerOzon, text(banks.Ozon())); err != nil {
		return nil, err
	}
	if err := add(HandlerGeneric, func() (Handler, error) {
		sigs := []tabular.HeaderSignature{banks.GenericRU(), banks.GenericEN()}
		return NewTableHandler(HandlerGeneric, sigs[0].Config, sigs, classifier, true), nil
	}); err != nil {
		return nil, err
	}
	if err := add(HandlerTBank, text(banks.TBank())); err != nil {
		return nil, err
	}
	return r, nil
}
