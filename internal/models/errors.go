package models

import (
	"errors"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = errors.New("there is no")

	// Category tree errors
	ErrInvalidParent         = errors.New("the parent category does not exist or does not share the budget and item project of the category")
	ErrHasChildren           = errors.New("a category with child categories cannot be marked as leaf")
	ErrAllocationsPresent    = errors.New("the category subtree has allocations posted against it, move or correct them with journals first")
	ErrCategoriesPresent     = errors.New("the funding source still has categories")
	ErrCategoryNameNotUnique = errors.New("the category name is already in use by a sibling category")

	// Funding source errors
	ErrMissingLeafAmounts = errors.New("the funding source needs leaf category amounts before cost center mode can be disabled")

	// Ledger errors
	ErrAppendOnlyViolation   = errors.New("entries and allocations are append-only, use a journal to correct them")
	ErrNotLeaf               = errors.New("allocations must reference a leaf category")
	ErrScopeMismatch         = errors.New("the category does not belong to the given budget and item project")
	ErrUnbalancedAllocations = errors.New("the allocations must sum to the entry amount")
	ErrInvalidCurrency       = errors.New("the currency is not a valid ISO 4217 code")

	// Journal errors
	ErrInvalidJournalKind   = errors.New("the journal kind must be one of REALLOC, ADJUST, CORRECTION")
	ErrNoPostings           = errors.New("a journal needs at least one posting")
	ErrZeroAmountPosting    = errors.New("journal postings cannot have a zero amount")
	ErrInvalidPostingTarget = errors.New("a journal posting must target either an allocation or a budget, item project and category")
	ErrUnbalancedJournal    = errors.New("the journal postings must sum to zero")
	ErrAmountNotPositive    = errors.New("the amount must be larger than zero")
)

// Code returns the stable error code for an error so that API clients can
// dispatch on it without parsing the human readable message.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrResourceNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidParent):
		return "invalid_parent"
	case errors.Is(err, ErrHasChildren):
		return "has_children"
	case errors.Is(err, ErrAllocationsPresent):
		return "allocations_present"
	case errors.Is(err, ErrCategoriesPresent):
		return "categories_present"
	case errors.Is(err, ErrCategoryNameNotUnique):
		return "name_not_unique"
	case errors.Is(err, ErrMissingLeafAmounts):
		return "missing_leaf_amounts"
	case errors.Is(err, ErrAppendOnlyViolation):
		return "append_only_violation"
	case errors.Is(err, ErrNotLeaf):
		return "not_leaf"
	case errors.Is(err, ErrScopeMismatch):
		return "scope_mismatch"
	case errors.Is(err, ErrUnbalancedAllocations):
		return "unbalanced_allocations"
	case errors.Is(err, ErrInvalidCurrency):
		return "invalid_currency"
	case errors.Is(err, ErrInvalidJournalKind):
		return "invalid_journal_kind"
	case errors.Is(err, ErrNoPostings):
		return "no_postings"
	case errors.Is(err, ErrZeroAmountPosting):
		return "zero_amount_posting"
	case errors.Is(err, ErrInvalidPostingTarget):
		return "invalid_posting_target"
	case errors.Is(err, ErrUnbalancedJournal):
		return "unbalanced_journal"
	case errors.Is(err, ErrAmountNotPositive):
		return "amount_not_positive"
	default:
		return "error"
	}
}
