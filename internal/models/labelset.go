// internal/models/labelset.go
package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// LabelSet is a set of labels chosen from a fixed enumeration, stored
// as a single ", "-joined text column. An empty selection stores the
// empty string, never NULL. On scan the column is split on comma with
// surrounding whitespace trimmed, so legacy rows written with or
// without the space after the comma load identically.
type LabelSet []string

func (l LabelSet) Value() (driver.Value, error) {
	return EncodeLabels(l), nil
}

func (l *LabelSet) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		*l = DecodeLabels(v)
		return nil
	case []byte:
		*l = DecodeLabels(string(v))
		return nil
	}
	return fmt.Errorf("cannot scan %T into LabelSet", value)
}

// EncodeLabels joins a selection into its stored form.
func EncodeLabels(labels []string) string {
	return strings.Join(labels, ", ")
}

// DecodeLabels splits a stored value back into the selection.
func DecodeLabels(stored string) []string {
	if strings.TrimSpace(stored) == "" {
		return nil
	}
	parts := strings.Split(stored, ",")
	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			labels = append(labels, p)
		}
	}
	return labels
}

// Fixed option sets for the three categorical report fields.
var (
	ServiceTypeChoices = []string{
		"Preventive Maintenance",
		"Training",
		"Installation",
		"Repair",
		"Commissioning",
	}

	BillingCategoryChoices = []string{
		"Paid Service",
		"Contract",
		"Warranty",
		"Other",
	}

	FinalStatusChoices = []string{
		"Returned to working conditions",
		"Needs Follow up",
		"Collected for maintenance",
	}
)

// The comma-joined encoding cannot represent a label that itself
// contains a comma. The option sets are fixed, so instead of escaping
// we refuse to start with a corrupting label.
func init() {
	for _, choices := range [][]string{ServiceTypeChoices, BillingCategoryChoices, FinalStatusChoices} {
		for _, c := range choices {
			if strings.Contains(c, ",") {
				panic(fmt.Sprintf("categorical label %q contains a comma and would not round-trip", c))
			}
		}
	}
}

// ValidLabels reports whether every selected label belongs to the
// given option set.
func ValidLabels(selected []string, choices []string) bool {
	for _, s := range selected {
		found := false
		for _, c := range choices {
			if s == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
