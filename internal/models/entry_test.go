package models_test

import (
	"github.com/dan-homisak/Nexus/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func (suite *TestSuiteStandard) TestEntryAppendOnlyService() {
	entry := suite.createTestEntry(models.Entry{Amount: decimal.NewFromInt(100)})

	err := models.UpdateEntry(models.DB, entry.ID)
	assert.ErrorIs(suite.T(), err, models.ErrAppendOnlyViolation)

	err = models.DeleteEntry(models.DB, entry.ID)
	assert.ErrorIs(suite.T(), err, models.ErrAppendOnlyViolation)

	// A missing entry reports not found, not a violation
	err = models.UpdateEntry(models.DB, uuid.New())
	assert.ErrorIs(suite.T(), err, models.ErrResourceNotFound)
}

// TestEntryAppendOnlyStorage verifies that the storage layer rejects writes
// to the ledger tables even when the service layer is bypassed.
func (suite *TestSuiteStandard) TestEntryAppendOnlyStorage() {
	entry := suite.createTestEntry(models.Entry{Amount: decimal.NewFromInt(100)})

	err := models.DB.Model(&entry).Update("description", "rewritten").Error
	assert.ErrorIs(suite.T(), err, models.ErrAppendOnlyViolation)

	err = models.DB.Delete(&entry).Error
	assert.ErrorIs(suite.T(), err, models.ErrAppendOnlyViolation)

	// The row is untouched
	var reread models.Entry
	assert.Nil(suite.T(), models.DB.First(&reread, "id = ?", entry.ID).Error)
	assert.Equal(suite.T(), "", reread.Description)
}

func (suite *TestSuiteStandard) TestEntryWithBalancedAllocations() {
	budget := suite.createTestFundingSource(models.FundingSource{})
	project := suite.createTestItemProject(models.ItemProject{BudgetID: budget.ID})
	first := suite.createTestCategory(models.Category{ItemProjectID: project.ID, AmountLeaf: amount(500)})
	second := suite.createTestCategory(models.Category{ItemProjectID: project.ID, AmountLeaf: amount(500)})

	entry := models.Entry{Amount: decimal.NewFromInt(100), Kind: "PURCHASE"}
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		return models.RecordEntry(tx, &entry, []models.Allocation{
			{ItemProjectID: project.ID, CategoryID: first.ID, Amount: decimal.NewFromInt(60)},
			{ItemProjectID: project.ID, CategoryID: second.ID, Amount: decimal.NewFromInt(40)},
		})
	})
	assert.Nil(suite.T(), err)

	var count int64
	_ = models.DB.Model(&models.Allocation{}).Where("entry_id = ?", entry.ID).Count(&count).Error
	assert.Equal(suite.T(), int64(2), count)
}

func (suite *TestSuiteStandard) TestEntryWithUnbalancedAllocations() {
	budget := suite.createTestFundingSource(models.FundingSource{})
	project := suite.createTestItemProject(models.ItemProject{BudgetID: budget.ID})
	category := suite.createTestCategory(models.Category{ItemProjectID: project.ID, AmountLeaf: amount(500)})

	entry := models.Entry{Amount: decimal.NewFromInt(100), Kind: "PURCHASE"}
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		return models.RecordEntry(tx, &entry, []models.Allocation{
			{ItemProjectID: project.ID, CategoryID: category.ID, Amount: decimal.RequireFromString("99.99")},
		})
	})
	assert.ErrorIs(suite.T(), err, models.ErrUnbalancedAllocations)

	// The whole transaction is rolled back
	var count int64
	_ = models.DB.Model(&models.Entry{}).Count(&count).Error
	assert.Equal(suite.T(), int64(0), count)
}

func (suite *TestSuiteStandard) TestEntryAllocationTolerance() {
	budget := suite.createTestFundingSource(models.FundingSource{})
	project := suite.createTestItemProject(models.ItemProject{BudgetID: budget.ID})
	category := suite.createTestCategory(models.Category{ItemProjectID: project.ID, AmountLeaf: amount(500)})

	// Rounding noise below the tolerance is accepted
	entry := models.Entry{Amount: decimal.NewFromInt(100), Kind: "PURCHASE"}
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		return models.RecordEntry(tx, &entry, []models.Allocation{
			{ItemProjectID: project.ID, CategoryID: category.ID, Amount: decimal.RequireFromString("99.9999995")},
		})
	})
	assert.Nil(suite.T(), err)

	// A difference of exactly 1e-6 sits on the boundary and is rejected
	boundary := models.Entry{Amount: decimal.NewFromInt(100), Kind: "PURCHASE"}
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		return models.RecordEntry(tx, &boundary, []models.Allocation{
			{ItemProjectID: project.ID, CategoryID: category.ID, Amount: decimal.RequireFromString("99.999999")},
		})
	})
	assert.ErrorIs(suite.T(), err, models.ErrUnbalancedAllocations)
}
