package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// balanceTolerance absorbs decimal rounding noise: a set of postings or
// allocations is balanced while its absolute net stays strictly below it.
var balanceTolerance = decimal.New(1, -6)

// Entry is an immutable financial fact: a purchase, commitment or payment.
// Entries are never updated or deleted, corrections happen through journals.
type Entry struct {
	DefaultModel
	Date        time.Time       `json:"date" example:"2024-03-01T00:00:00Z"`
	Kind        string          `json:"kind" example:"PURCHASE"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)" example:"1480.50"`
	Description string          `json:"description" default:""`

	BudgetID      *uuid.UUID    `json:"budgetId"`
	FundingSource FundingSource `json:"-" gorm:"foreignKey:BudgetID"`
	ItemProjectID *uuid.UUID    `json:"itemProjectId"`
	ItemProject   ItemProject   `json:"-"`
	CategoryID    *uuid.UUID    `json:"categoryId"`
	Category      Category      `json:"-"`
}

func (e *Entry) BeforeSave(_ *gorm.DB) error {
	if e.Date.IsZero() {
		e.Date = time.Now().In(time.UTC)
	} else {
		e.Date = e.Date.In(time.UTC)
	}

	return nil
}

// RecordEntry appends an entry together with its allocations. When
// allocations are given, their amounts must sum to the entry amount within
// the balance tolerance.
func RecordEntry(tx *gorm.DB, e *Entry, allocations []Allocation) error {
	err := tx.Create(e).Error
	if err != nil {
		return err
	}

	if len(allocations) == 0 {
		return nil
	}

	total := decimal.Zero
	for i := range allocations {
		allocations[i].EntryID = e.ID
		total = total.Add(allocations[i].Amount)
	}

	if total.Sub(e.Amount).Abs().GreaterThanOrEqual(balanceTolerance) {
		return ErrUnbalancedAllocations
	}

	for i := range allocations {
		err = RecordAllocation(tx, &allocations[i])
		if err != nil {
			return err
		}
	}

	return nil
}

// UpdateEntry always fails: entries are append-only. It only distinguishes
// a missing entry from an existing one for the error code.
func UpdateEntry(tx *gorm.DB, id uuid.UUID) error {
	err := tx.First(&Entry{}, "id = ?", id).Error
	if err != nil {
		return err
	}

	return ErrAppendOnlyViolation
}

// DeleteEntry always fails: entries are append-only.
func DeleteEntry(tx *gorm.DB, id uuid.UUID) error {
	err := tx.First(&Entry{}, "id = ?", id).Error
	if err != nil {
		return err
	}

	return ErrAppendOnlyViolation
}
