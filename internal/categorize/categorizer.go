// Package categorize assigns spending categories to ledger transactions
// using an ordered keyword rule table.
package categorize

import (
	"strings"

	"github.com/dvloznov/budget-report/internal/domain"
)

// Categorizer resolves a description to exactly one category label.
// It holds no mutable state and is safe for concurrent use.
type Categorizer struct {
	rules    []Rule
	fallback string
}

// New returns a Categorizer backed by the built-in rule table.
func New() *Categorizer {
	return NewWithRules(defaultRules, Miscellaneous)
}

// NewWithRules returns a Categorizer over a custom rule table. Keywords are
// lower-cased so that matching stays case-insensitive.
func NewWithRules(rules []Rule, fallback string) *Categorizer {
	normalized := make([]Rule, 0, len(rules))
	for _, r := range rules {
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			if kw = strings.ToLower(kw); kw != "" {
				kws = append(kws, kw)
			}
		}
		normalized = append(normalized, Rule{Keywords: kws, Category: r.Category})
	}
	return &Categorizer{rules: normalized, fallback: fallback}
}

// Categorize returns the category of the first rule whose keyword occurs in
// the lower-cased description, or the fallback label when none does.
func (c *Categorizer) Categorize(description string) string {
	desc := strings.ToLower(description)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(desc, kw) {
				return r.Category
			}
		}
	}
	return c.fallback
}

// Annotate returns copies of records with Category set. The input slice is
// not modified.
func (c *Categorizer) Annotate(records []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, len(records))
	for i, rec := range records {
		out[i] = rec.WithCategory(c.Categorize(rec.Description))
	}
	return out
}

// Rules returns a copy of the rule table in evaluation order.
func (c *Categorizer) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = Rule{Keywords: append([]string(nil), r.Keywords...), Category: r.Category}
	}
	return out
}

// Fallback returns the label used when no rule matches.
func (c *Categorizer) Fallback() string { return c.fallback }

// Labels returns every label the Categorizer can produce, in rule order
// followed by the fallback.
func (c *Categorizer) Labels() []string {
	seen := make(map[string]bool, len(c.rules)+1)
	var labels []string
	for _, r := range c.rules {
		if !seen[r.Category] {
			seen[r.Category] = true
			labels = append(labels, r.Category)
		}
	}
	if !seen[c.fallback] {
		labels = append(labels, c.fallback)
	}
	return labels
}

// IsLabel reports whether category is one of Labels.
func (c *Categorizer) IsLabel(category string) bool {
	if category == c.fallback {
		return true
	}
	for _, r := range c.rules {
		if r.Category == category {
			return true
		}
	}
	return false
}
