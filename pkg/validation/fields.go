package validation

import (
	"fmt"
)

// Field is a named optional number to validate.
type Field struct {
	Name  string
	Value *float64
}

// ValidatePercent returns a warning when a present percentage lies outside
// [min, max], or an empty string.
func ValidatePercent(f Field, min, max float64) string {
	if f.Value == nil {
		return ""
	}
	if *f.Value < min || *f.Value > max {
		return fmt.Sprintf("Field '%s' is %.2f%%, expected between %.0f%% and %.0f%%",
			f.Name, *f.Value, min, max)
	}
	return ""
}

// ValidateNonNegative returns a warning when a present value is negative.
func ValidateNonNegative(f Field) string {
	if f.Value == nil {
		return ""
	}
	if *f.Value < 0 {
		return fmt.Sprintf("Field '%s' is negative (%.2f)", f.Name, *f.Value)
	}
	return ""
}

// FieldValidator groups fields by the rule that applies to them.
type FieldValidator struct {
	// Percents must lie in [0, 100].
	Percents []Field
	// Growth rates must not fall below -100%.
	Growth []Field
	// Amounts are counts and dollars that must not be negative.
	Amounts []Field
}

// ValidateAll validates every field and returns warnings in field order.
func (v *FieldValidator) ValidateAll() []string {
	var warnings []string

	for _, f := range v.Percents {
		if w := ValidatePercent(f, 0, 100); w != "" {
			warnings = append(warnings, w)
		}
	}

	for _, f := range v.Growth {
		if f.Value != nil && *f.Value < -100 {
			warnings = append(warnings, fmt.Sprintf("Growth '%s' of %.2f%% would make the projection negative", f.Name, *f.Value))
		}
	}

	for _, f := range v.Amounts {
		if w := ValidateNonNegative(f); w != "" {
			warnings = append(warnings, w)
		}
	}

	return warnings
}
