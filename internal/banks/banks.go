// Package banks holds the declarative profiles for supported institutions.
// Adding a bank means adding data here or in a profiles file.
package banks

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/stmtimport/internal/detect"
	"github.com/cleared-dev/stmtimport/internal/lineparse"
	"github.com/cleared-dev/stmtimport/internal/tabular"
)

// LineProfile describes a text-extracted statement.
type LineProfile struct {
	Name      string           `yaml:"name"`
	Signature detect.Signature `yaml:"signature"`
	Parse     lineparse.Spec   `yaml:"parse"`
}

// File is the on-disk profiles document.
type File struct {
	Text  []LineProfile             `yaml:"text,omitempty"`
	Table []tabular.HeaderSignature `yaml:"table,omitempty"`
}

// Validate compiles every profile so that errors surface at load time.
func (f File) Validate() error {
	seen := map[string]bool{}
	for _, p := range f.Text {
		if p.Name == "" {
			return fmt.Errorf("text profile without a name")
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate profile %q", p.Name)
		}
		seen[p.Name] = true
		if _, err := detect.Compile(p.Signature); err != nil {
			return fmt.Errorf("profile %q: %w", p.Name, err)
		}
		if _, err := lineparse.Compile(p.Parse, nil); err != nil {
			return fmt.Errorf("profile %q: %w", p.Name, err)
		}
	}
	for _, t := range f.Table {
		if t.Name == "" {
			return fmt.Errorf("table profile without a name")
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate profile %q", t.Name)
		}
		seen[t.Name] = true
		if len(t.Combinations) == 0 || len(t.DateKeywords) == 0 || len(t.AmountKeywords) == 0 {
			return fmt.Errorf("table profile %q: needs combinations, date and amount keywords", t.Name)
		}
	}
	return nil
}

// LoadFile reads and validates a profiles file.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("reading profiles: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parsing profiles: %w", err)
	}
	if err := f.Validate(); err != nil {
		return File{}, err
	}
	return f, nil
}

// SaveFile writes f as YAML.
func SaveFile(path string, f File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling profiles: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing profiles: %w", err)
	}
	return nil
}

// Builtin returns the built-in profiles.
func Builtin() File {
	return File{
		Text:  []LineProfile{Sberbank(), Ozon(), TBank()},
		Table: []tabular.HeaderSignature{Alfa(), GenericRU(), GenericEN()},
	}
}
