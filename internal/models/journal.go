package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// Journal kinds. REALLOC moves money between allocations, ADJUST revises
// effective amounts through a caller-supplied balanced posting set,
// CORRECTION is the free-form variant for fixing past mistakes.
const (
	JournalKindRealloc    = "REALLOC"
	JournalKindAdjust     = "ADJUST"
	JournalKindCorrection = "CORRECTION"
)

var journalKinds = []string{JournalKindRealloc, JournalKindAdjust, JournalKindCorrection}

// JournalEntry is a balanced set of correcting postings. Stored entries and
// allocations never change, every correction is a new journal whose postings
// net out to zero.
type JournalEntry struct {
	DefaultModel
	Kind      string           `json:"kind" example:"REALLOC"`
	PostedAt  time.Time        `json:"postedAt"`
	Note      string           `json:"note" default:""`
	CreatedBy string           `json:"createdBy" default:""`
	Postings  []JournalPosting `json:"postings" gorm:"foreignKey:JournalID;constraint:OnDelete:CASCADE"`
}

// JournalPosting is one signed leg of a journal. It targets either an
// allocation or a budget/item project/category triple, never both.
type JournalPosting struct {
	DefaultModel
	JournalID uuid.UUID `json:"journalId"`

	AllocationID *uuid.UUID `json:"allocationId"`
	Allocation   Allocation `json:"-"`

	BudgetID      *uuid.UUID    `json:"budgetId"`
	FundingSource FundingSource `json:"-" gorm:"foreignKey:BudgetID"`
	ItemProjectID *uuid.UUID    `json:"itemProjectId"`
	ItemProject   ItemProject   `json:"-"`
	CategoryID    *uuid.UUID    `json:"categoryId"`
	Category      Category      `json:"-"`

	Amount   decimal.Decimal `json:"amount" gorm:"type:DECIMAL(20,8)" example:"-250.00"`
	Currency string          `json:"currency" example:"USD"`
}

// NetAmount is the sum of all posting amounts.
func (j JournalEntry) NetAmount() decimal.Decimal {
	net := decimal.Zero
	for _, p := range j.Postings {
		net = net.Add(p.Amount)
	}

	return net
}

// Balanced reports whether the postings net out to zero within tolerance.
func (j JournalEntry) Balanced() bool {
	return j.NetAmount().Abs().LessThan(balanceTolerance)
}

// CreateJournal validates and appends a journal with all its postings
// atomically. The journal must carry a known kind, at least one posting,
// and the postings must net out to zero within tolerance.
func CreateJournal(tx *gorm.DB, j *JournalEntry) error {
	if !slices.Contains(journalKinds, j.Kind) {
		return ErrInvalidJournalKind
	}

	if len(j.Postings) == 0 {
		return ErrNoPostings
	}

	for i := range j.Postings {
		err := validatePosting(tx, &j.Postings[i])
		if err != nil {
			return err
		}
	}

	if !j.Balanced() {
		return ErrUnbalancedJournal
	}

	if j.PostedAt.IsZero() {
		j.PostedAt = time.Now().In(time.UTC)
	} else {
		j.PostedAt = j.PostedAt.In(time.UTC)
	}

	return tx.Create(j).Error
}

// Reallocate moves a positive amount from one allocation to another through
// a two-posting REALLOC journal.
func Reallocate(tx *gorm.DB, fromID, toID uuid.UUID, amount decimal.Decimal, note, createdBy string) (*JournalEntry, error) {
	if !amount.IsPositive() {
		return nil, ErrAmountNotPositive
	}

	journal := JournalEntry{
		Kind:      JournalKindRealloc,
		Note:      note,
		CreatedBy: createdBy,
		Postings: []JournalPosting{
			{AllocationID: &fromID, Amount: amount.Neg()},
			{AllocationID: &toID, Amount: amount},
		},
	}

	err := CreateJournal(tx, &journal)
	if err != nil {
		return nil, err
	}

	return &journal, nil
}

// Adjust appends an ADJUST journal from a caller-supplied posting set. The
// postings target allocations or scope triples freely, they only have to
// net out to zero. This covers revisions where no single allocation row is
// the right target, like spreading a price change across a few categories.
func Adjust(tx *gorm.DB, postings []JournalPosting, note, createdBy string) (*JournalEntry, error) {
	journal := JournalEntry{
		Kind:      JournalKindAdjust,
		Note:      note,
		CreatedBy: createdBy,
		Postings:  postings,
	}

	err := CreateJournal(tx, &journal)
	if err != nil {
		return nil, err
	}

	return &journal, nil
}

// Journals returns journals ordered newest first, optionally filtered by
// kind. A limit below zero returns everything.
func Journals(tx *gorm.DB, kind string, limit int) ([]JournalEntry, error) {
	query := tx.Preload("Postings").Order("posted_at DESC, created_at DESC")

	if kind != "" {
		if !slices.Contains(journalKinds, kind) {
			return nil, ErrInvalidJournalKind
		}
		query = query.Where("kind = ?", kind)
	}

	if limit >= 0 {
		query = query.Limit(limit)
	}

	var journals []JournalEntry
	err := query.Find(&journals).Error
	if err != nil {
		return nil, err
	}

	return journals, nil
}

// validatePosting checks a single journal leg: a non-zero amount, exactly
// one target form, an existing target and a consistent scope triple.
func validatePosting(tx *gorm.DB, p *JournalPosting) error {
	if p.Amount.IsZero() {
		return ErrZeroAmountPosting
	}

	var err error
	p.Currency, err = normalizeCurrency(p.Currency)
	if err != nil {
		return err
	}

	if p.AllocationID != nil {
		if p.BudgetID != nil || p.ItemProjectID != nil || p.CategoryID != nil {
			return ErrInvalidPostingTarget
		}

		return tx.First(&Allocation{}, "id = ?", *p.AllocationID).Error
	}

	if p.BudgetID == nil || p.ItemProjectID == nil || p.CategoryID == nil {
		return ErrInvalidPostingTarget
	}

	var category Category
	err = tx.First(&category, "id = ?", *p.CategoryID).Error
	if err != nil {
		return err
	}

	if category.ItemProjectID != *p.ItemProjectID || category.BudgetID != *p.BudgetID {
		return ErrScopeMismatch
	}

	return nil
}
