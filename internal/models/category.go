package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category is a node in the n-level spending classification tree of an item
// project. Only leaf categories hold a direct amount, everything above them
// carries derived rollups maintained by RecomputeBudget.
type Category struct {
	DefaultModel
	Name          string        `json:"name" gorm:"uniqueIndex:category_sibling_name" example:"Vacuum pumps"`
	ParentID      *uuid.UUID    `json:"parentId" gorm:"uniqueIndex:category_sibling_name"`
	Parent        *Category     `json:"-"`
	BudgetID      uuid.UUID     `json:"budgetId"`
	FundingSource FundingSource `json:"-" gorm:"foreignKey:BudgetID"`
	ItemProjectID uuid.UUID     `json:"itemProjectId" gorm:"uniqueIndex:category_sibling_name"`
	ItemProject   ItemProject   `json:"-"`
	Description   string        `json:"description" default:""`

	// IsLeaf and AmountLeaf are guarded by the amount_only_on_leaves check
	// constraint: the storage layer rejects a leaf amount on a non-leaf row
	// even if a write path skips the maintainer.
	IsLeaf     bool                `json:"isLeaf" gorm:"default:true"`
	AmountLeaf decimal.NullDecimal `json:"amountLeaf" gorm:"type:DECIMAL(20,8);check:amount_only_on_leaves,amount_leaf IS NULL OR is_leaf"`

	// Derived tree state, written only by RecomputeBudget
	RollupAmount decimal.Decimal `json:"rollupAmount" gorm:"type:DECIMAL(20,8)"`
	PathIDs      []string        `json:"pathIds" gorm:"serializer:json"`
	PathNames    []string        `json:"pathNames" gorm:"serializer:json"`
	PathDepth    int             `json:"pathDepth"`
}

// CategoryUpdate contains the fields of a Category that callers may change.
// ParentSet distinguishes a move to the tree root (ParentSet true, ParentID
// nil) from no parent change at all.
type CategoryUpdate struct {
	Name          *string
	Description   *string
	ParentID      *uuid.UUID
	ParentSet     bool
	ItemProjectID *uuid.UUID
	BudgetID      *uuid.UUID
	IsLeaf        *bool
	AmountLeaf    *decimal.Decimal
}

// CategoryMoveCheck is the result of a dry-run re-parenting check.
type CategoryMoveCheck struct {
	CanMove bool   `json:"canMove"`
	Reason  string `json:"reason,omitempty"`
	Count   int64  `json:"count"` // Number of allocations blocking the move
}

// CreateCategory saves a new category under an optional parent and updates
// the derived tree state of its budget.
//
// When the new category is the first child of a previously-leaf parent and
// carries no explicit amount, it inherits the parent's former leaf amount.
// This preserves the amount across a "split" of a leaf into children;
// subsequent siblings default to zero.
func CreateCategory(tx *gorm.DB, c *Category) error {
	var project ItemProject
	err := tx.First(&project, "id = ?", c.ItemProjectID).Error
	if err != nil {
		return err
	}

	if c.BudgetID == uuid.Nil {
		c.BudgetID = project.BudgetID
	} else if c.BudgetID != project.BudgetID {
		return ErrScopeMismatch
	}

	parent, err := validateParent(tx, c.ParentID, c.ItemProjectID, c.BudgetID)
	if err != nil {
		return err
	}

	if !c.IsLeaf {
		c.AmountLeaf = decimal.NullDecimal{}
	} else if !c.AmountLeaf.Valid {
		if parent != nil && parent.IsLeaf && parent.AmountLeaf.Valid {
			c.AmountLeaf = parent.AmountLeaf
		} else {
			c.AmountLeaf = decimal.NullDecimal{Decimal: decimal.Zero, Valid: true}
		}
	}

	err = tx.Create(c).Error
	if err != nil {
		return err
	}

	err = markParentHasChildren(tx, parent)
	if err != nil {
		return err
	}

	_, err = RecomputeBudget(tx, c.BudgetID)
	return err
}

// UpdateCategory applies the requested changes to a category.
//
// Re-parenting a category or moving it to another budget or item project is
// rejected while its subtree has allocations: moving live financial facts
// would silently change what they roll up under.
func UpdateCategory(tx *gorm.DB, category *Category, update CategoryUpdate) error {
	oldBudgetID := category.BudgetID

	targetProject := category.ItemProjectID
	if update.ItemProjectID != nil {
		targetProject = *update.ItemProjectID
	}
	targetBudget := category.BudgetID
	if update.BudgetID != nil {
		targetBudget = *update.BudgetID
	}

	// Parent change
	if update.ParentSet && !uuidPtrEqual(update.ParentID, category.ParentID) {
		if update.ParentID != nil && *update.ParentID == category.ID {
			return ErrInvalidParent
		}

		err := assertNoSubtreeAllocations(tx, category.ID)
		if err != nil {
			return err
		}

		oldParentID := category.ParentID
		newParent, err := validateParent(tx, update.ParentID, targetProject, targetBudget)
		if err != nil {
			return err
		}

		category.ParentID = update.ParentID
		err = tx.Model(category).Update("parent_id", update.ParentID).Error
		if err != nil {
			return err
		}

		err = markParentHasChildren(tx, newParent)
		if err != nil {
			return err
		}

		err = refreshParentLeafState(tx, oldParentID)
		if err != nil {
			return err
		}
	}

	// Budget or item project change moves the whole subtree
	if targetProject != category.ItemProjectID || targetBudget != category.BudgetID {
		err := assertNoSubtreeAllocations(tx, category.ID)
		if err != nil {
			return err
		}

		var project ItemProject
		err = tx.First(&project, "id = ?", targetProject).Error
		if err != nil {
			return err
		}

		if update.BudgetID == nil {
			targetBudget = project.BudgetID
		} else if targetBudget != project.BudgetID {
			return ErrScopeMismatch
		}

		ids, err := subtreeIDs(tx, category.ID)
		if err != nil {
			return err
		}

		err = tx.Model(&Category{}).Where("id IN ?", ids).Updates(map[string]any{
			"item_project_id": targetProject,
			"budget_id":       targetBudget,
		}).Error
		if err != nil {
			return err
		}

		category.ItemProjectID = targetProject
		category.BudgetID = targetBudget

		// The old parent stays behind in the source budget. An implicit
		// move therefore detaches the subtree to a new root; keeping the
		// stale link would leave the category invisible to the target
		// budget's rollup.
		if category.ParentID != nil {
			var parent Category
			err = tx.First(&parent, "id = ?", *category.ParentID).Error
			if err != nil {
				return err
			}

			if parent.ItemProjectID != targetProject || parent.BudgetID != targetBudget {
				if update.ParentSet {
					return ErrInvalidParent
				}

				oldParentID := category.ParentID
				category.ParentID = nil
				err = tx.Model(category).Update("parent_id", nil).Error
				if err != nil {
					return err
				}

				err = refreshParentLeafState(tx, oldParentID)
				if err != nil {
					return err
				}
			}
		}
	}

	if update.Name != nil {
		category.Name = *update.Name
	}
	if update.Description != nil {
		category.Description = *update.Description
	}

	// Leaf flag and amount
	if update.IsLeaf != nil && *update.IsLeaf != category.IsLeaf {
		if *update.IsLeaf {
			children, err := childCount(tx, category.ID)
			if err != nil {
				return err
			}
			if children != 0 {
				return ErrHasChildren
			}

			amount := decimal.Zero
			if update.AmountLeaf != nil {
				amount = *update.AmountLeaf
			}
			category.AmountLeaf = decimal.NullDecimal{Decimal: amount, Valid: true}
		} else {
			category.AmountLeaf = decimal.NullDecimal{}
		}
		category.IsLeaf = *update.IsLeaf
	} else if category.IsLeaf && update.AmountLeaf != nil {
		category.AmountLeaf = decimal.NullDecimal{Decimal: *update.AmountLeaf, Valid: true}
	}

	err := tx.Model(category).Updates(map[string]any{
		"name":        category.Name,
		"description": category.Description,
		"is_leaf":     category.IsLeaf,
		"amount_leaf": category.AmountLeaf,
	}).Error
	if err != nil {
		return err
	}

	err = refreshParentLeafState(tx, category.ParentID)
	if err != nil {
		return err
	}

	_, err = RecomputeBudget(tx, oldBudgetID)
	if err != nil {
		return err
	}

	if category.BudgetID != oldBudgetID {
		_, err = RecomputeBudget(tx, category.BudgetID)
		if err != nil {
			return err
		}
	}

	return tx.First(category, "id = ?", category.ID).Error
}

// DeleteCategory removes a category and its whole subtree, then restores the
// parent's leaf state if it became childless.
func DeleteCategory(tx *gorm.DB, category *Category) error {
	err := assertNoSubtreeAllocations(tx, category.ID)
	if err != nil {
		return err
	}

	ids, err := subtreeIDs(tx, category.ID)
	if err != nil {
		return err
	}

	err = tx.Where("id IN ?", ids).Delete(&Category{}).Error
	if err != nil {
		return err
	}

	err = refreshParentLeafState(tx, category.ParentID)
	if err != nil {
		return err
	}

	_, err = RecomputeBudget(tx, category.BudgetID)
	return err
}

// CanMoveCategory checks whether a category could be re-parented without
// performing the move.
func CanMoveCategory(tx *gorm.DB, category *Category, newParentID *uuid.UUID) (CategoryMoveCheck, error) {
	if newParentID != nil && *newParentID == category.ID {
		return CategoryMoveCheck{}, ErrInvalidParent
	}

	count, err := subtreeAllocationCount(tx, category.ID)
	if err != nil {
		return CategoryMoveCheck{}, err
	}
	if count != 0 {
		return CategoryMoveCheck{Reason: "allocations_present", Count: count}, nil
	}

	if newParentID != nil {
		var parent Category
		err := tx.First(&parent, "id = ?", *newParentID).Error
		if err != nil {
			return CategoryMoveCheck{Reason: "parent_not_found"}, nil
		}

		if parent.ItemProjectID != category.ItemProjectID || parent.BudgetID != category.BudgetID {
			return CategoryMoveCheck{Reason: "parent_scope_mismatch"}, nil
		}
	}

	return CategoryMoveCheck{CanMove: true}, nil
}

// validateParent verifies that the parent exists and shares the budget and
// item project scope. A nil parentID is a tree root and always valid.
func validateParent(tx *gorm.DB, parentID *uuid.UUID, itemProjectID, budgetID uuid.UUID) (*Category, error) {
	if parentID == nil {
		return nil, nil
	}

	var parent Category
	err := tx.First(&parent, "id = ?", *parentID).Error
	if err != nil {
		return nil, ErrInvalidParent
	}

	if parent.ItemProjectID != itemProjectID || parent.BudgetID != budgetID {
		return nil, ErrInvalidParent
	}

	return &parent, nil
}

// markParentHasChildren demotes a leaf parent that just gained a child.
func markParentHasChildren(tx *gorm.DB, parent *Category) error {
	if parent == nil || !parent.IsLeaf {
		return nil
	}

	return tx.Model(parent).Updates(map[string]any{
		"is_leaf":     false,
		"amount_leaf": nil,
	}).Error
}

// refreshParentLeafState restores the leaf flag and amount of a parent after
// its child count changed. A parent that became childless is promoted back
// to a leaf with an amount of zero.
func refreshParentLeafState(tx *gorm.DB, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}

	var parent Category
	err := tx.First(&parent, "id = ?", *parentID).Error
	if err != nil {
		// The parent is gone together with its subtree
		return nil
	}

	children, err := childCount(tx, parent.ID)
	if err != nil {
		return err
	}

	if children == 0 {
		amount := parent.AmountLeaf
		if !amount.Valid {
			amount = decimal.NullDecimal{Decimal: decimal.Zero, Valid: true}
		}

		return tx.Model(&parent).Updates(map[string]any{
			"is_leaf":     true,
			"amount_leaf": amount,
		}).Error
	}

	return tx.Model(&parent).Updates(map[string]any{
		"is_leaf":     false,
		"amount_leaf": nil,
	}).Error
}

func childCount(tx *gorm.DB, id uuid.UUID) (int64, error) {
	var count int64
	err := tx.Model(&Category{}).Where("parent_id = ?", id).Count(&count).Error
	return count, err
}

// subtreeIDs returns the ids of a category and all its descendants.
func subtreeIDs(tx *gorm.DB, id uuid.UUID) ([]string, error) {
	var ids []string

	err := tx.Raw(`
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM categories WHERE id = ?
			UNION ALL
			SELECT c.id FROM categories AS c JOIN subtree AS s ON c.parent_id = s.id
		)
		SELECT id FROM subtree`, id).Scan(&ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func subtreeAllocationCount(tx *gorm.DB, id uuid.UUID) (int64, error) {
	var count int64

	err := tx.Raw(`
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM categories WHERE id = ?
			UNION ALL
			SELECT c.id FROM categories AS c JOIN subtree AS s ON c.parent_id = s.id
		)
		SELECT COUNT(*) FROM allocations WHERE category_id IN (SELECT id FROM subtree)`, id).Scan(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func assertNoSubtreeAllocations(tx *gorm.DB, id uuid.UUID) error {
	count, err := subtreeAllocationCount(tx, id)
	if err != nil {
		return err
	}
	if count != 0 {
		return ErrAllocationsPresent
	}
	return nil
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
