package pipeline

import (
	"fmt"
	"strings"

	"github.com/dvloznov/budget-report/internal/categorize"
)

// CategoryValidator checks assigned categories against the label set of a
// Categorizer.
type CategoryValidator struct {
	labels map[string]bool
	names  []string
}

// NewCategoryValidator creates a validator from the categorizer's labels.
func NewCategoryValidator(c *categorize.Categorizer) *CategoryValidator {
	v := &CategoryValidator{labels: make(map[string]bool)}
	for _, l := range c.Labels() {
		v.labels[normalizeCategory(l)] = true
		v.names = append(v.names, l)
	}
	return v
}

// ValidateCategory returns nil if category is a known label.
func (v *CategoryValidator) ValidateCategory(category string) error {
	if !v.labels[normalizeCategory(category)] {
		return fmt.Errorf("invalid category %q, valid categories: %v", category, v.names)
	}
	return nil
}

// normalizeCategory upper-cases and trims a label for comparison.
func normalizeCategory(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
