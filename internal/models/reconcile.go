package models

import (
	"github.com/ryanuber/go-glob"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReconcileResult summarizes a batch recompute run.
type ReconcileResult struct {
	BudgetsReconciled int                        `json:"budgetsReconciled"`
	Totals            map[string]decimal.Decimal `json:"totals"`
}

// Reconcile recomputes the derived state of every funding source in a single
// transaction and returns the resulting totals keyed by funding source id.
// Mutating operations already maintain the derived state themselves, so a
// reconcile run over a consistent database changes nothing. It exists for
// operators and as a backstop after manual data surgery.
func Reconcile(db *gorm.DB) (ReconcileResult, error) {
	return ReconcileMatching(db, "")
}

// ReconcileMatching reconciles only the funding sources whose name matches
// the glob pattern. An empty pattern matches everything.
func ReconcileMatching(db *gorm.DB, pattern string) (ReconcileResult, error) {
	result := ReconcileResult{Totals: make(map[string]decimal.Decimal)}

	err := db.Transaction(func(tx *gorm.DB) error {
		var budgets []FundingSource
		err := tx.Order("name ASC").Find(&budgets).Error
		if err != nil {
			return err
		}

		for _, budget := range budgets {
			if pattern != "" && !glob.Glob(pattern, budget.Name) {
				continue
			}

			total, err := RecomputeBudget(tx, budget.ID)
			if err != nil {
				return err
			}

			result.Totals[budget.ID.String()] = total
			result.BudgetsReconciled++
		}

		return nil
	})
	if err != nil {
		return ReconcileResult{}, err
	}

	return result, nil
}
