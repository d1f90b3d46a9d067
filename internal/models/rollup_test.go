package models_test

import (
	"github.com/dan-homisak/Nexus/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func (suite *TestSuiteStandard) TestRollupAmounts() {
	budget := suite.createTestFundingSource(models.FundingSource{})
	project := suite.createTestItemProject(models.ItemProject{BudgetID: budget.ID})

	root := suite.createTestCategory(models.Category{Name: "Equipment", ItemProjectID: project.ID})
	_ = suite.createTestCategory(models.Category{Name: "Pumps", ItemProjectID: project.ID, ParentID: &root.ID, AmountLeaf: amount(100)})
	_ = suite.createTestCategory(models.Category{Name: "Valves", ItemProjectID: project.ID, ParentID: &root.ID, AmountLeaf: amount(50)})

	root = suite.reloadCategory(root.ID)
	assert.False(suite.T(), root.IsLeaf)
	assert.False(suite.T(), root.AmountLeaf.Valid, "non-leaf categories must not carry a leaf amount")
	assert.True(suite.T(), root.RollupAmount.Equal(decimal.NewFromInt(150)), "root rollup is %s, should be 150", root.RollupAmount)

	budget = suite.reloadFundingSource(budget.ID)
	assert.True(suite.T(), budget.BudgetAmountCache.Valid)
	assert.True(suite.T(), budget.BudgetAmountCache.Decimal.Equal(decimal.NewFromInt(150)))
}

func (suite *TestSuiteStandard) TestRollupPaths() {
	budget := suite.createTestFundingSource(models.FundingSource{})
	project := suite.createTestItemProject(models.ItemProject{BudgetID: budget.ID})

	root := suite.createTestCategory(models.Category{Name: "Equipment", ItemProjectID: project.ID})
	mid := suite.createTestCategory(models.Category{Name: "Vacuum", ItemProjectID: project.ID, ParentID: &root.ID})
	leaf := suite.createTestCategory(models.Category{Name: "Pumps", ItemProjectID: project.ID, ParentID: &mid.ID, AmountLeaf: amount(40)})

	leaf = suite.reloadCategory(leaf.ID)
	assert.Equal(suite.T(), []string{"Equipment", "Vacuum", "Pumps"}, leaf.PathNames)
	assert.Equal(suite.T(), []string{root.ID.String(), mid.ID.String(), leaf.ID.String()}, leaf.PathIDs)
	assert.Equal(suite.T(), 2, leaf.PathDepth)

	root = suite.reloadCategory(root.ID)
	assert.Equal(suite.T(), 0, root.PathDepth)
	assert.Equal(suite.T(), []string{"Equipment"}, root.PathNames)
}

func (suite *TestSuiteStandard) TestRollupCostCenterCacheNull() {
	costCenter := suite.createTestFundingSource(models.FundingSource{IsCostCenter: true})
	project := suite.createTestItemProject(models.ItemProject{BudgetID: costCenter.ID})
	_ = suite.createTestCategory(models.Category{ItemProjectID: project.ID, AmountLeaf: amount(900)})

	costCenter = suite.reloadFundingSource(costCenter.ID)
	assert.False(suite.T(), costCenter.BudgetAmountCache.Valid, "cost centers must not cache a budget amount")
}

func (suite *TestSuiteStandard) TestRecomputeIdempotent() {
	budget := suite.createTestFundingSource(models.FundingSource{})
	project := suite.createTestItemProject(models.ItemProject{BudgetID: budget.ID})

	root := suite.createTestCategory(models.Category{Name: "Equipment", ItemProjectID: project.ID})
	_ = suite.createTestCategory(models.Category{Name: "Pumps", ItemProjectID: project.ID, ParentID: &root.ID, AmountLeaf: amount(100)})
	_ = suite.createTestCategory(models.Category{Name: "Valves", ItemProjectID: project.ID, ParentID: &root.ID, AmountLeaf: amount(50)})

	var first, second decimal.Decimal
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		first, txErr = models.RecomputeBudget(tx, budget.ID)
		return txErr
	})
	assert.Nil(suite.T(), err)

	var before []models.Category
	assert.Nil(suite.T(), models.DB.Where("budget_id = ?", budget.ID).Order("name ASC").Find(&before).Error)

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		second, txErr = models.RecomputeBudget(tx, budget.ID)
		return txErr
	})
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), first.Equal(second), "totals differ between runs: %s, %s", first, second)

	var after []models.Category
	assert.Nil(suite.T(), models.DB.Where("budget_id = ?", budget.ID).Order("name ASC").Find(&after).Error)

	for i := range before {
		assert.Equal(suite.T(), before[i].IsLeaf, after[i].IsLeaf)
		assert.Equal(suite.T(), before[i].AmountLeaf.Valid, after[i].AmountLeaf.Valid)
		assert.True(suite.T(), before[i].RollupAmount.Equal(after[i].RollupAmount))
		assert.Equal(suite.T(), before[i].PathIDs, after[i].PathIDs)
		assert.Equal(suite.T(), before[i].PathNames, after[i].PathNames)
		assert.Equal(suite.T(), before[i].PathDepth, after[i].PathDepth)
	}
}
