package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// RecomputeBudget rebuilds all derived tree state for one budget: leaf flags,
// leaf amount nulling on non-leaves, rollup amounts, path metadata and the
// budget amount cache on the funding source. It recomputes the full budget
// scope from the stored categories, so running it twice in a row yields the
// same rows. The returned total is the sum of all leaf amounts, which equals
// the sum of the root rollups.
//
// Cost center funding sources do not carry a budget, their cache is kept null.
func RecomputeBudget(tx *gorm.DB, budgetID uuid.UUID) (decimal.Decimal, error) {
	var budget FundingSource
	err := tx.First(&budget, "id = ?", budgetID).Error
	if err != nil {
		return decimal.Zero, err
	}

	var categories []Category
	err = tx.Where("budget_id = ?", budgetID).Order("name ASC").Find(&categories).Error
	if err != nil {
		return decimal.Zero, err
	}

	children := make(map[uuid.UUID][]*Category)
	var roots []*Category
	for i := range categories {
		c := &categories[i]
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c)
		} else {
			roots = append(roots, c)
		}
	}

	total := decimal.Zero
	for _, root := range roots {
		walkPaths(root, children, nil, nil)
		total = total.Add(computeRollup(root, children))
	}

	for i := range categories {
		c := &categories[i]
		err = tx.Model(&Category{}).Where("id = ?", c.ID).
			Select("IsLeaf", "AmountLeaf", "RollupAmount", "PathIDs", "PathNames", "PathDepth").
			Updates(*c).Error
		if err != nil {
			return decimal.Zero, err
		}
	}

	cache := decimal.NullDecimal{}
	if !budget.IsCostCenter {
		cache = decimal.NullDecimal{Decimal: total, Valid: true}
	}

	err = tx.Model(&budget).Updates(map[string]any{"budget_amount_cache": cache}).Error
	if err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

// walkPaths assigns the root-to-node path metadata. Siblings were loaded in
// name order, so paths are deterministic for a given tree.
func walkPaths(node *Category, children map[uuid.UUID][]*Category, ancestorIDs, ancestorNames []string) {
	pathIDs := append(slices.Clone(ancestorIDs), node.ID.String())
	pathNames := append(slices.Clone(ancestorNames), node.Name)

	node.PathIDs = pathIDs
	node.PathNames = pathNames
	node.PathDepth = len(pathIDs) - 1

	for _, child := range children[node.ID] {
		walkPaths(child, children, pathIDs, pathNames)
	}
}

// computeRollup derives leaf flags and rollup amounts bottom-up and returns
// the subtree total. A non-leaf never keeps a direct amount.
func computeRollup(node *Category, children map[uuid.UUID][]*Category) decimal.Decimal {
	kids := children[node.ID]
	node.IsLeaf = len(kids) == 0

	if node.IsLeaf {
		amount := decimal.Zero
		if node.AmountLeaf.Valid {
			amount = node.AmountLeaf.Decimal
		} else {
			node.AmountLeaf = decimal.NullDecimal{Decimal: decimal.Zero, Valid: true}
		}

		node.RollupAmount = amount
		return amount
	}

	node.AmountLeaf = decimal.NullDecimal{}

	sum := decimal.Zero
	for _, child := range kids {
		sum = sum.Add(computeRollup(child, children))
	}

	node.RollupAmount = sum
	return sum
}
