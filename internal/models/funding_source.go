package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FundingSource represents a named pool of money, either a fixed-amount
// capital budget or an open-ended cost center.
//
// A funding source is the highest level of organization in Nexus, all other
// resources reference it directly or transitively.
type FundingSource struct {
	DefaultModel
	Name         string     `json:"name" gorm:"uniqueIndex" example:"FY24 Lab Equipment"`
	IsCostCenter bool       `json:"isCostCenter" example:"false" default:"false"` // Cost centers are open-ended and carry no amount cache
	Owner        string     `json:"owner" example:"morre" default:""`
	ClosureDate  *time.Time `json:"closureDate" example:"2024-12-31T00:00:00Z"`
	Description  string     `json:"description" default:""`

	// BudgetAmountCache is the sum of amount_leaf over all leaf categories
	// of the funding source, or null for cost centers. It is written only
	// by RecomputeBudget, never by callers.
	BudgetAmountCache decimal.NullDecimal `json:"budgetAmountCache" gorm:"type:DECIMAL(20,8)"`
}

// FundingSourceUpdate contains the fields of a FundingSource that callers
// may change. Pointer fields distinguish "not set" from zero values.
type FundingSourceUpdate struct {
	Name         *string
	Owner        *string
	IsCostCenter *bool
	ClosureDate  *time.Time
	Description  *string
}

// CreateFundingSource saves a new funding source.
func CreateFundingSource(tx *gorm.DB, f *FundingSource) error {
	if f.IsCostCenter {
		f.BudgetAmountCache = decimal.NullDecimal{}
	}
	return tx.Create(f).Error
}

// UpdateFundingSource applies the requested changes.
//
// Disabling cost center mode requires at least one leaf category with an
// amount, since a capital budget without amounts would cache a misleading
// zero.
func UpdateFundingSource(tx *gorm.DB, f *FundingSource, update FundingSourceUpdate) error {
	if update.IsCostCenter != nil && !*update.IsCostCenter && f.IsCostCenter {
		var count int64
		err := tx.Model(&Category{}).
			Where("budget_id = ? AND is_leaf = ? AND amount_leaf IS NOT NULL", f.ID, true).
			Count(&count).Error
		if err != nil {
			return err
		}

		if count == 0 {
			return ErrMissingLeafAmounts
		}
	}

	if update.Name != nil {
		f.Name = *update.Name
	}
	if update.Owner != nil {
		f.Owner = *update.Owner
	}
	if update.IsCostCenter != nil {
		f.IsCostCenter = *update.IsCostCenter
	}
	if update.ClosureDate != nil {
		f.ClosureDate = update.ClosureDate
	}
	if update.Description != nil {
		f.Description = *update.Description
	}

	err := tx.Model(f).Select("Name", "Owner", "IsCostCenter", "ClosureDate", "Description").Updates(*f).Error
	if err != nil {
		return err
	}

	// Switching cost center mode changes whether the cache is populated
	_, err = RecomputeBudget(tx, f.ID)
	return err
}

// DeleteFundingSource removes a funding source. Funding sources with
// categories or allocations cannot be deleted, their financial history has
// to stay auditable.
func DeleteFundingSource(tx *gorm.DB, f *FundingSource) error {
	var categories int64
	err := tx.Model(&Category{}).Where("budget_id = ?", f.ID).Count(&categories).Error
	if err != nil {
		return err
	}
	if categories != 0 {
		return ErrCategoriesPresent
	}

	var allocations int64
	err = tx.Model(&Allocation{}).Where("budget_id = ?", f.ID).Count(&allocations).Error
	if err != nil {
		return err
	}
	if allocations != 0 {
		return ErrAllocationsPresent
	}

	return tx.Delete(f).Error
}
