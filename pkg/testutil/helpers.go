// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/answers"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/internal/forecast"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/domain"
	"github.com/ScubaCod2020/libertytax-pnl-webapp-sub000/pkg/finance"
)

// FindLine finds an expense line by key in the results slice.
// Returns a pointer to the line if found, nil otherwise.
func FindLine(lines []finance.LineResult, key domain.ExpenseKey) *finance.LineResult {
	for i := range lines {
		if lines[i].Key == key {
			return &lines[i]
		}
	}
	return nil
}

// Reconciled returns a fully derived copy of a, as the store would hold it.
func Reconciled(a answers.Answers) answers.Answers {
	return forecast.NewReconciler(nil).Reconcile(a)
}
