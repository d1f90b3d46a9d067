package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemProject represents a project consuming funds from exactly one
// funding source.
type ItemProject struct {
	DefaultModel
	Name          string        `json:"name" gorm:"uniqueIndex:item_project_budget_name" example:"Cryostat upgrade"`
	BudgetID      uuid.UUID     `json:"budgetId" gorm:"uniqueIndex:item_project_budget_name"`
	FundingSource FundingSource `json:"-" gorm:"foreignKey:BudgetID"`
	Description   string        `json:"description" default:""`
}

// CreateItemProject saves a new item project after verifying its funding
// source exists.
func CreateItemProject(tx *gorm.DB, p *ItemProject) error {
	err := tx.First(&FundingSource{}, "id = ?", p.BudgetID).Error
	if err != nil {
		return err
	}

	return tx.Create(p).Error
}

// ItemProjectUpdate contains the fields of an ItemProject that callers may
// change.
type ItemProjectUpdate struct {
	Name        *string
	Description *string
	BudgetID    *uuid.UUID
}

// UpdateItemProject applies the requested changes. A project can only move
// to another funding source while it has no categories and no allocations.
func UpdateItemProject(tx *gorm.DB, p *ItemProject, update ItemProjectUpdate) error {
	if update.BudgetID != nil && *update.BudgetID != p.BudgetID {
		var categories int64
		err := tx.Model(&Category{}).Where("item_project_id = ?", p.ID).Count(&categories).Error
		if err != nil {
			return err
		}
		if categories != 0 {
			return ErrCategoriesPresent
		}

		var allocations int64
		err = tx.Model(&Allocation{}).Where("item_project_id = ?", p.ID).Count(&allocations).Error
		if err != nil {
			return err
		}
		if allocations != 0 {
			return ErrAllocationsPresent
		}

		err = tx.First(&FundingSource{}, "id = ?", *update.BudgetID).Error
		if err != nil {
			return err
		}

		p.BudgetID = *update.BudgetID
	}

	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.Description != nil {
		p.Description = *update.Description
	}

	return tx.Model(p).Select("Name", "Description", "BudgetID").Updates(*p).Error
}

// DeleteItemProject removes an item project unless allocations reference it.
func DeleteItemProject(tx *gorm.DB, p *ItemProject) error {
	var allocations int64
	err := tx.Model(&Allocation{}).Where("item_project_id = ?", p.ID).Count(&allocations).Error
	if err != nil {
		return err
	}
	if allocations != 0 {
		return ErrAllocationsPresent
	}

	var categories int64
	err = tx.Model(&Category{}).Where("item_project_id = ?", p.ID).Count(&categories).Error
	if err != nil {
		return err
	}
	if categories != 0 {
		return ErrCategoriesPresent
	}

	return tx.Delete(p).Error
}

// Rollup returns the sum of the leaf category amounts of the project.
func (p ItemProject) Rollup(tx *gorm.DB) (decimal.Decimal, error) {
	var sum decimal.NullDecimal

	err := tx.Model(&Category{}).
		Where("item_project_id = ? AND is_leaf = ?", p.ID, true).
		Select("SUM(amount_leaf)").
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	if !sum.Valid {
		return decimal.Zero, nil
	}

	return sum.Decimal, nil
}
