package store

import (
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/answers"
)

// Change says what a patch touched.
type Change int

const (
	// ChangeNone covers notes and UI flags.
	ChangeNone Change = iota
	// ChangeConfig covers region, store type and feature toggles. They
	// change visibility and gating, not arithmetic.
	ChangeConfig
	// ChangeData covers every field the reconciler reads.
	ChangeData
)

func (c Change) String() string {
	switch c {
	case ChangeConfig:
		return "config"
	case ChangeData:
		return "data"
	default:
		return "none"
	}
}

var (
	dataFields   = toSet(answers.DataFields())
	configFields = toSet(answers.ConfigFields)
)

func toSet(fields []string) map[string]struct{} {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Classify returns the strongest kind of change in p.
func Classify(p answers.Patch) Change {
	change := ChangeNone
	for key := range p {
		if _, ok := dataFields[key]; ok {
			return ChangeData
		}
		if _, ok := configFields[key]; ok {
			change = ChangeConfig
		}
	}
	return change
}
