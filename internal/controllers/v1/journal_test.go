package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/dan-homisak/Nexus/internal/controllers/v1"
	"github.com/dan-homisak/Nexus/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// journalTestFixture creates an entry with two allocations on separate leaf
// categories so they can be corrected against each other.
func (suite *TestSuiteStandard) journalTestFixture() (v1.AllocationResponse, v1.AllocationResponse) {
	fundingSource := createTestFundingSource(suite.T(), v1.FundingSourceEditable{})
	itemProject := createTestItemProject(suite.T(), v1.ItemProjectEditable{BudgetID: fundingSource.Data.ID})

	amount := decimal.NewFromInt(500)
	first := createTestCategory(suite.T(), v1.CategoryEditable{ItemProjectID: itemProject.Data.ID, AmountLeaf: &amount})
	second := createTestCategory(suite.T(), v1.CategoryEditable{ItemProjectID: itemProject.Data.ID})

	entry := createTestEntry(suite.T(), v1.EntryEditable{Amount: decimal.NewFromInt(120)})

	firstAllocation := createTestAllocation(suite.T(), v1.AllocationEditable{
		EntryID:       entry.Data.ID,
		BudgetID:      fundingSource.Data.ID,
		ItemProjectID: itemProject.Data.ID,
		CategoryID:    first.Data.ID,
		Amount:        decimal.NewFromInt(90),
	})

	secondAllocation := createTestAllocation(suite.T(), v1.AllocationEditable{
		EntryID:       entry.Data.ID,
		BudgetID:      fundingSource.Data.ID,
		ItemProjectID: itemProject.Data.ID,
		CategoryID:    second.Data.ID,
		Amount:        decimal.NewFromInt(30),
	})

	return firstAllocation, secondAllocation
}

func (suite *TestSuiteStandard) TestJournalsCreate() {
	first, second := suite.journalTestFixture()

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/journals", v1.JournalEditable{
		Kind: "CORRECTION",
		Note: "Invoice was booked against the wrong category",
		Postings: []v1.JournalPostingEditable{
			{AllocationID: &first.Data.ID, Amount: decimal.NewFromInt(-25)},
			{AllocationID: &second.Data.ID, Amount: decimal.NewFromInt(25)},
		},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var journal v1.JournalResponse
	test.DecodeResponse(suite.T(), &r, &journal)
	assert.Equal(suite.T(), "CORRECTION", journal.Data.Kind)
	assert.Len(suite.T(), journal.Data.Postings, 2)
	assert.False(suite.T(), journal.Data.PostedAt.IsZero())
}

func (suite *TestSuiteStandard) TestJournalsCreateFails() {
	first, second := suite.journalTestFixture()
	missing := uuid.New()

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{
			"Invalid kind",
			v1.JournalEditable{Kind: "TRANSFER", Postings: []v1.JournalPostingEditable{
				{AllocationID: &first.Data.ID, Amount: decimal.NewFromInt(-1)},
				{AllocationID: &second.Data.ID, Amount: decimal.NewFromInt(1)},
			}},
			http.StatusBadRequest, "invalid_journal_kind",
		},
		{
			"No postings",
			v1.JournalEditable{Kind: "CORRECTION"},
			http.StatusBadRequest, "no_postings",
		},
		{
			"Zero amount posting",
			v1.JournalEditable{Kind: "CORRECTION", Postings: []v1.JournalPostingEditable{
				{AllocationID: &first.Data.ID, Amount: decimal.Zero},
			}},
			http.StatusBadRequest, "zero_amount_posting",
		},
		{
			"Unbalanced journal",
			v1.JournalEditable{Kind: "CORRECTION", Postings: []v1.JournalPostingEditable{
				{AllocationID: &first.Data.ID, Amount: decimal.NewFromInt(-25)},
				{AllocationID: &second.Data.ID, Amount: decimal.NewFromFloat(24.99)},
			}},
			http.StatusBadRequest, "unbalanced_journal",
		},
		{
			"Missing allocation",
			v1.JournalEditable{Kind: "CORRECTION", Postings: []v1.JournalPostingEditable{
				{AllocationID: &missing, Amount: decimal.NewFromInt(-1)},
				{AllocationID: &first.Data.ID, Amount: decimal.NewFromInt(1)},
			}},
			http.StatusNotFound, "not_found",
		},
		{
			"Posting without a target",
			v1.JournalEditable{Kind: "CORRECTION", Postings: []v1.JournalPostingEditable{
				{Amount: decimal.NewFromInt(-1)},
				{AllocationID: &first.Data.ID, Amount: decimal.NewFromInt(1)},
			}},
			http.StatusBadRequest, "invalid_posting_target",
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/journals", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
			assert.Equal(t, tt.code, decodeErrorCode(t, &r))
		})
	}
}

// TestJournalsReallocate verifies the two-posting REALLOC convenience
// endpoint and its effect on the effective amounts.
func (suite *TestSuiteStandard) TestJournalsReallocate() {
	first, second := suite.journalTestFixture()

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/journals/reallocate", v1.ReallocationEditable{
		From:      first.Data.ID,
		To:        second.Data.ID,
		Amount:    decimal.NewFromInt(30),
		Note:      "Rebalance between categories",
		CreatedBy: "dan",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var journal v1.JournalResponse
	test.DecodeResponse(suite.T(), &r, &journal)
	assert.Equal(suite.T(), "REALLOC", journal.Data.Kind)
	assert.Equal(suite.T(), "dan", journal.Data.CreatedBy)
	require.Len(suite.T(), journal.Data.Postings, 2)

	for id, expected := range map[uuid.UUID]decimal.Decimal{
		first.Data.ID:  decimal.NewFromInt(60),
		second.Data.ID: decimal.NewFromInt(60),
	} {
		rec := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/allocations/%s", id), "")
		test.AssertHTTPStatus(suite.T(), &rec, http.StatusOK)

		var allocation v1.AllocationResponse
		test.DecodeResponse(suite.T(), &rec, &allocation)
		assert.True(suite.T(), allocation.Data.EffectiveAmount.Equal(expected), "effective amount of %s is %s, expected %s", id, allocation.Data.EffectiveAmount, expected)
	}
}

func (suite *TestSuiteStandard) TestJournalsReallocateFails() {
	first, second := suite.journalTestFixture()

	tests := []struct {
		name   string
		body   v1.ReallocationEditable
		status int
		code   string
	}{
		{"Zero amount", v1.ReallocationEditable{From: first.Data.ID, To: second.Data.ID, Amount: decimal.Zero}, http.StatusBadRequest, "amount_not_positive"},
		{"Negative amount", v1.ReallocationEditable{From: first.Data.ID, To: second.Data.ID, Amount: decimal.NewFromInt(-5)}, http.StatusBadRequest, "amount_not_positive"},
		{"Missing source", v1.ReallocationEditable{From: uuid.New(), To: second.Data.ID, Amount: decimal.NewFromInt(5)}, http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/journals/reallocate", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
			assert.Equal(t, tt.code, decodeErrorCode(t, &r))
		})
	}
}

// TestJournalsAdjust verifies the posting-list ADJUST endpoint and that the
// author is recorded with the journal.
func (suite *TestSuiteStandard) TestJournalsAdjust() {
	first, second := suite.journalTestFixture()

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/journals/adjust", v1.AdjustmentEditable{
		Postings: []v1.JournalPostingEditable{
			{AllocationID: &first.Data.ID, Amount: decimal.NewFromInt(-25)},
			{AllocationID: &second.Data.ID, Amount: decimal.NewFromInt(25)},
		},
		Note:      "Quarterly true-up",
		CreatedBy: "dan",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var journal v1.JournalResponse
	test.DecodeResponse(suite.T(), &r, &journal)
	assert.Equal(suite.T(), "ADJUST", journal.Data.Kind)
	assert.Equal(suite.T(), "dan", journal.Data.CreatedBy)
	require.Len(suite.T(), journal.Data.Postings, 2)
}

func (suite *TestSuiteStandard) TestJournalsAdjustFails() {
	first, _ := suite.journalTestFixture()

	tests := []struct {
		name   string
		body   v1.AdjustmentEditable
		status int
		code   string
	}{
		{"No postings", v1.AdjustmentEditable{Note: "empty"}, http.StatusBadRequest, "no_postings"},
		{
			"Unbalanced postings",
			v1.AdjustmentEditable{Postings: []v1.JournalPostingEditable{
				{AllocationID: &first.Data.ID, Amount: decimal.NewFromInt(-25)},
			}},
			http.StatusBadRequest, "unbalanced_journal",
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/journals/adjust", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
			assert.Equal(t, tt.code, decodeErrorCode(t, &r))
		})
	}
}

func (suite *TestSuiteStandard) TestJournalsGet() {
	first, second := suite.journalTestFixture()

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/journals/reallocate", v1.ReallocationEditable{
		From:   first.Data.ID,
		To:     second.Data.ID,
		Amount: decimal.NewFromInt(10),
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	r = test.Request(suite.T(), http.MethodPost, "http://example.com/v1/journals/adjust", v1.AdjustmentEditable{
		Postings: []v1.JournalPostingEditable{
			{AllocationID: &first.Data.ID, Amount: decimal.NewFromInt(-5)},
			{AllocationID: &second.Data.ID, Amount: decimal.NewFromInt(5)},
		},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"All journals", "", 2},
		{"Reallocations", "kind=REALLOC", 1},
		{"Adjustments", "kind=ADJUST", 1},
		{"Corrections", "kind=CORRECTION", 0},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/journals?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.JournalListResponse
			test.DecodeResponse(t, &r, &response)
			assert.Equal(t, tt.len, len(response.Data))

			// Postings are always included
			for _, journal := range response.Data {
				assert.NotEmpty(t, journal.Postings)
			}
		})
	}
}

func (suite *TestSuiteStandard) TestJournalsGetSingle() {
	first, second := suite.journalTestFixture()

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/journals/reallocate", v1.ReallocationEditable{
		From:   first.Data.ID,
		To:     second.Data.ID,
		Amount: decimal.NewFromInt(10),
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var created v1.JournalResponse
	test.DecodeResponse(suite.T(), &r, &created)

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"Existing journal", created.Data.ID.String(), http.StatusOK},
		{"No journal with this ID", uuid.New().String(), http.StatusNotFound},
		{"Invalid ID", "notaUUID", http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/journals/%s", tt.id), "")
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

// TestJournalsNoMutation verifies that journals expose neither PATCH nor
// DELETE handlers.
func (suite *TestSuiteStandard) TestJournalsNoMutation() {
	first, second := suite.journalTestFixture()

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/journals/reallocate", v1.ReallocationEditable{
		From:   first.Data.ID,
		To:     second.Data.ID,
		Amount: decimal.NewFromInt(10),
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	var created v1.JournalResponse
	test.DecodeResponse(suite.T(), &r, &created)

	for _, method := range []string{http.MethodPatch, http.MethodDelete} {
		r := test.Request(suite.T(), method, fmt.Sprintf("http://example.com/v1/journals/%s", created.Data.ID), "")
		test.AssertHTTPStatus(suite.T(), &r, http.StatusMethodNotAllowed)
	}
}
