package v1

import (
	"net/http"
	"time"

	"github.com/dan-homisak/Nexus/internal/httputil"
	"github.com/dan-homisak/Nexus/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type JournalPostingEditable struct {
	AllocationID  *uuid.UUID      `json:"allocationId"`
	BudgetID      *uuid.UUID      `json:"budgetId"`
	ItemProjectID *uuid.UUID      `json:"itemProjectId"`
	CategoryID    *uuid.UUID      `json:"categoryId"`
	Amount        decimal.Decimal `json:"amount" example:"-250.00"`
	Currency      string          `json:"currency" example:"USD"`
}

func (e JournalPostingEditable) model() models.JournalPosting {
	return models.JournalPosting{
		AllocationID:  e.AllocationID,
		BudgetID:      e.BudgetID,
		ItemProjectID: e.ItemProjectID,
		CategoryID:    e.CategoryID,
		Amount:        e.Amount,
		Currency:      e.Currency,
	}
}

type JournalEditable struct {
	Kind      string                   `json:"kind" example:"CORRECTION"`
	PostedAt  time.Time                `json:"postedAt"`
	Note      string                   `json:"note"`
	CreatedBy string                   `json:"createdBy"`
	Postings  []JournalPostingEditable `json:"postings"`
}

func (e JournalEditable) model() models.JournalEntry {
	postings := make([]models.JournalPosting, 0, len(e.Postings))
	for _, p := range e.Postings {
		postings = append(postings, p.model())
	}

	return models.JournalEntry{
		Kind:      e.Kind,
		PostedAt:  e.PostedAt,
		Note:      e.Note,
		CreatedBy: e.CreatedBy,
		Postings:  postings,
	}
}

// ReallocationEditable moves a positive amount between two allocations.
type ReallocationEditable struct {
	From      uuid.UUID       `json:"from"`
	To        uuid.UUID       `json:"to"`
	Amount    decimal.Decimal `json:"amount" example:"30.00"`
	Note      string          `json:"note"`
	CreatedBy string          `json:"createdBy"`
}

// AdjustmentEditable revises effective amounts through a balanced set of
// postings.
type AdjustmentEditable struct {
	Postings  []JournalPostingEditable `json:"postings"`
	Note      string                   `json:"note"`
	CreatedBy string                   `json:"createdBy"`
}

type JournalResponse struct {
	Data models.JournalEntry `json:"data"`
}

type JournalListResponse struct {
	Data       []models.JournalEntry `json:"data"`
	Pagination Pagination            `json:"pagination"`
}

type JournalQueryFilter struct {
	listParams
	Kind string `form:"kind" example:"REALLOC"`
}

// RegisterJournalRoutes registers the routes for journals with the
// RouterGroup that is passed. Journals are append-only by construction,
// only OPTIONS, GET and POST exist.
func RegisterJournalRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsJournalList)
		r.GET("", GetJournals)
		r.POST("", CreateJournal)
	}

	{
		r.OPTIONS("/:id", OptionsJournalDetail)
		r.GET("/:id", GetJournal)
	}

	r.POST("/reallocate", CreateReallocation)
	r.POST("/adjust", CreateAdjustment)
}

func OptionsJournalList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func OptionsJournalDetail(c *gin.Context) {
	httputil.OptionsGet(c)
}

func CreateJournal(c *gin.Context) {
	var editable JournalEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		httpError(c, err)
		return
	}

	journal := editable.model()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		return models.CreateJournal(tx, &journal)
	})
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusCreated, JournalResponse{Data: journal})
}

// CreateReallocation is a convenience endpoint that builds a balanced
// two-posting REALLOC journal.
func CreateReallocation(c *gin.Context) {
	var editable ReallocationEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		httpError(c, err)
		return
	}

	var journal *models.JournalEntry
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		journal, txErr = models.Reallocate(tx, editable.From, editable.To, editable.Amount, editable.Note, editable.CreatedBy)
		return txErr
	})
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusCreated, JournalResponse{Data: *journal})
}

// CreateAdjustment builds an ADJUST journal from the posted set of
// balanced postings.
func CreateAdjustment(c *gin.Context) {
	var editable AdjustmentEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		httpError(c, err)
		return
	}

	postings := make([]models.JournalPosting, 0, len(editable.Postings))
	for _, p := range editable.Postings {
		postings = append(postings, p.model())
	}

	var journal *models.JournalEntry
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		journal, txErr = models.Adjust(tx, postings, editable.Note, editable.CreatedBy)
		return txErr
	})
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusCreated, JournalResponse{Data: *journal})
}

func GetJournals(c *gin.Context) {
	var filter JournalQueryFilter
	_ = c.Bind(&filter)

	journals, err := models.Journals(models.DB.Offset(int(filter.Offset)), filter.Kind, filter.limit())
	if err != nil {
		httpError(c, err)
		return
	}

	var count int64
	q := models.DB.Model(&models.JournalEntry{})
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	err = q.Count(&count).Error
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusOK, JournalListResponse{
		Data: journals,
		Pagination: Pagination{
			Count:  len(journals),
			Offset: filter.Offset,
			Limit:  filter.limit(),
			Total:  count,
		},
	})
}

func GetJournal(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}

	var journal models.JournalEntry
	err := models.DB.Preload("Postings").First(&journal, "id = ?", id).Error
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusOK, JournalResponse{Data: journal})
}
