package v1_test

import (
	"fmt"
	"net/http"

	v1 "github.com/dan-homisak/Nexus/internal/controllers/v1"
	"github.com/dan-homisak/Nexus/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *TestSuiteStandard) TestReconcile() {
	fundingSource := createTestFundingSource(suite.T(), v1.FundingSourceEditable{Name: "Lab Equipment"})
	itemProject := createTestItemProject(suite.T(), v1.ItemProjectEditable{BudgetID: fundingSource.Data.ID})

	amount := decimal.NewFromInt(100)
	_ = createTestCategory(suite.T(), v1.CategoryEditable{ItemProjectID: itemProject.Data.ID, AmountLeaf: &amount})

	_ = createTestFundingSource(suite.T(), v1.FundingSourceEditable{Name: "Office"})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/reconcile", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ReconcileResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), 2, response.Data.BudgetsReconciled)

	total, ok := response.Data.Totals[fundingSource.Data.ID.String()]
	require.True(suite.T(), ok)
	assert.True(suite.T(), total.Equal(decimal.NewFromInt(100)), "total is %s, expected 100", total)
}

func (suite *TestSuiteStandard) TestReconcilePattern() {
	fundingSource := createTestFundingSource(suite.T(), v1.FundingSourceEditable{Name: "Lab Equipment"})
	_ = createTestFundingSource(suite.T(), v1.FundingSourceEditable{Name: "Office"})

	r := test.Request(suite.T(), http.MethodPost, fmt.Sprintf("http://example.com/v1/reconcile?pattern=%s", "Lab*"), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.ReconcileResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), 1, response.Data.BudgetsReconciled)

	_, ok := response.Data.Totals[fundingSource.Data.ID.String()]
	assert.True(suite.T(), ok, "the matching funding source is missing from the totals")
}

func (suite *TestSuiteStandard) TestReconcileOptions() {
	r := test.Request(suite.T(), http.MethodOptions, "http://example.com/v1/reconcile", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
	assert.Equal(suite.T(), "POST", r.Header().Get("allow"))
}
