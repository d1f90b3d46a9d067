package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"gorm.io/gorm"
)

// Allocation assigns a portion of an entry's amount to a leaf category.
// Allocations are append-only, their stored amount never changes. The
// effective amount of an allocation is the stored amount plus the sum of all
// journal postings that target it.
type Allocation struct {
	DefaultModel
	EntryID       uuid.UUID       `json:"entryId"`
	Entry         Entry           `json:"-"`
	BudgetID      uuid.UUID       `json:"budgetId"`
	FundingSource FundingSource   `json:"-" gorm:"foreignKey:BudgetID"`
	ItemProjectID uuid.UUID       `json:"itemProjectId"`
	ItemProject   ItemProject     `json:"-"`
	CategoryID    uuid.UUID       `json:"categoryId"`
	Category      Category        `json:"-"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)" example:"740.25"`
	Currency      string          `json:"currency" example:"USD"`
	PostedAt      time.Time       `json:"postedAt"`
}

// RecordAllocation appends an allocation after checking that its category is
// a leaf of the matching item project, then updates the budget's derived
// state. An empty currency defaults to USD.
func RecordAllocation(tx *gorm.DB, a *Allocation) error {
	err := tx.First(&Entry{}, "id = ?", a.EntryID).Error
	if err != nil {
		return err
	}

	var category Category
	err = tx.First(&category, "id = ?", a.CategoryID).Error
	if err != nil {
		return err
	}

	if !category.IsLeaf {
		return ErrNotLeaf
	}

	if category.ItemProjectID != a.ItemProjectID {
		return ErrScopeMismatch
	}

	if a.BudgetID == uuid.Nil {
		a.BudgetID = category.BudgetID
	} else if a.BudgetID != category.BudgetID {
		return ErrScopeMismatch
	}

	a.Currency, err = normalizeCurrency(a.Currency)
	if err != nil {
		return err
	}

	if a.PostedAt.IsZero() {
		a.PostedAt = time.Now().In(time.UTC)
	} else {
		a.PostedAt = a.PostedAt.In(time.UTC)
	}

	err = tx.Create(a).Error
	if err != nil {
		return err
	}

	_, err = RecomputeBudget(tx, a.BudgetID)
	return err
}

// UpdateAllocation always fails: allocations are append-only.
func UpdateAllocation(tx *gorm.DB, id uuid.UUID) error {
	err := tx.First(&Allocation{}, "id = ?", id).Error
	if err != nil {
		return err
	}

	return ErrAppendOnlyViolation
}

// DeleteAllocation always fails: allocations are append-only.
func DeleteAllocation(tx *gorm.DB, id uuid.UUID) error {
	err := tx.First(&Allocation{}, "id = ?", id).Error
	if err != nil {
		return err
	}

	return ErrAppendOnlyViolation
}

// EffectiveAmount returns the stored amount adjusted by all journal postings
// that target this allocation. It is always derived, never materialized.
func (a Allocation) EffectiveAmount(tx *gorm.DB) (decimal.Decimal, error) {
	var delta decimal.NullDecimal

	err := tx.Table("journal_postings").
		Where("allocation_id = ?", a.ID).
		Select("SUM(amount)").
		Row().Scan(&delta)
	if err != nil {
		return decimal.Zero, err
	}

	if !delta.Valid {
		return a.Amount, nil
	}

	return a.Amount.Add(delta.Decimal), nil
}

// normalizeCurrency validates and canonicalizes an ISO 4217 currency code.
func normalizeCurrency(code string) (string, error) {
	if code == "" {
		return "USD", nil
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", ErrInvalidCurrency
	}

	return unit.String(), nil
}
