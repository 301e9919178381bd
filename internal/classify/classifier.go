package classify

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Uncategorized is returned when no rule matches.
const Uncategorized = "Другое"

// Rule maps any of its keywords to a category.
type Rule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

// Classifier is an ordered keyword table. The first matching rule wins.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	rules    []Rule
	fallback string
}

// New builds a classifier, lowercasing keywords once. An empty fallback
// means Uncategorized.
func New(rules []Rule, fallback string) *Classifier {
	if fallback == "" {
		fallback = Uncategorized
	}
	c := &Classifier{fallback: fallback, rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		lowered := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				lowered = append(lowered, k)
			}
		}
		c.rules = append(c.rules, Rule{Category: r.Category, Keywords: lowered})
	}
	return c
}

// Default returns the built-in rule table.
func Default() *Classifier {
	return New(DefaultRules(), Uncategorized)
}

// Classify returns the category of the first rule with a keyword contained
// in description.
func (c *Classifier) Classify(description string) string {
	d := strings.ToLower(description)
	if strings.TrimSpace(d) == "" {
		return c.fallback
	}
	for _, r := range c.rules {
		for _, k := range r.Keywords {
			if strings.Contains(d, k) {
				return r.Category
			}
		}
	}
	return c.fallback
}

// Categories lists rule categories in table order.
func (c *Classifier) Categories() []string {
	out := make([]string, 0, len(c.rules))
	for _, r := range c.rules {
		out = append(out, r.Category)
	}
	return out
}

// File is the YAML layout of a rule table.
type File struct {
	Fallback string `yaml:"fallback"`
	Rules    []Rule `yaml:"rules"`
}

// LoadFile reads a rule table from YAML.
func LoadFile(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading category rules: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing category rules: %w", err)
	}
	for i, r := range f.Rules {
		if r.Category == "" {
			return nil, fmt.Errorf("rule %d: missing category", i+1)
		}
	}
	return New(f.Rules, f.Fallback), nil
}

// SaveFile writes a rule table to YAML.
func SaveFile(path string, f File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling category rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing category rules: %w", err)
	}
	return nil
}
