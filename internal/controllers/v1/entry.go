package v1

import (
	"net/http"
	"time"

	"github.com/dan-homisak/Nexus/internal/httputil"
	"github.com/dan-homisak/Nexus/internal/models"
	ez_uuid "github.com/dan-homisak/Nexus/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EntryEditable struct {
	Date        time.Time       `json:"date"`
	Kind        string          `json:"kind" example:"PURCHASE"`
	Amount      decimal.Decimal `json:"amount" example:"1480.50"`
	Description string          `json:"description"`

	BudgetID      *uuid.UUID `json:"budgetId"`
	ItemProjectID *uuid.UUID `json:"itemProjectId"`
	CategoryID    *uuid.UUID `json:"categoryId"`

	// Allocations are created in the same transaction as the entry. When
	// given, their amounts must sum to the entry amount.
	Allocations []AllocationEditable `json:"allocations"`
}

func (e EntryEditable) model() models.Entry {
	return models.Entry{
		Date:          e.Date,
		Kind:          e.Kind,
		Amount:        e.Amount,
		Description:   e.Description,
		BudgetID:      e.BudgetID,
		ItemProjectID: e.ItemProjectID,
		CategoryID:    e.CategoryID,
	}
}

type EntryResponse struct {
	Data models.Entry `json:"data"`
}

type EntryListResponse struct {
	Data       []models.Entry `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

type EntryQueryFilter struct {
	listParams
	Kind          string       `form:"kind"`
	BudgetID      ez_uuid.UUID `form:"budget"`
	ItemProjectID ez_uuid.UUID `form:"itemProject"`
	CategoryID    ez_uuid.UUID `form:"category"`
}

// RegisterEntryRoutes registers the routes for entries with the RouterGroup
// that is passed. Entries are append-only, PATCH and DELETE always fail.
func RegisterEntryRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsEntryList)
		r.GET("", GetEntries)
		r.POST("", CreateEntry)
	}

	{
		r.OPTIONS("/:id", OptionsEntryDetail)
		r.GET("/:id", GetEntry)
		r.PATCH("/:id", UpdateEntry)
		r.DELETE("/:id", DeleteEntry)
	}
}

func OptionsEntryList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func OptionsEntryDetail(c *gin.Context) {
	httputil.OptionsGet(c)
}

func CreateEntry(c *gin.Context) {
	var editable EntryEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		httpError(c, err)
		return
	}

	entry := editable.model()
	allocations := make([]models.Allocation, 0, len(editable.Allocations))
	for _, a := range editable.Allocations {
		allocations = append(allocations, a.model())
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		return models.RecordEntry(tx, &entry, allocations)
	})
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusCreated, EntryResponse{Data: entry})
}

func GetEntries(c *gin.Context) {
	var filter EntryQueryFilter
	_ = c.Bind(&filter)

	q := models.DB.Order("date DESC, created_at DESC")
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}
	if filter.BudgetID != ez_uuid.Nil {
		q = q.Where("budget_id = ?", filter.BudgetID.UUID)
	}
	if filter.ItemProjectID != ez_uuid.Nil {
		q = q.Where("item_project_id = ?", filter.ItemProjectID.UUID)
	}
	if filter.CategoryID != ez_uuid.Nil {
		q = q.Where("category_id = ?", filter.CategoryID.UUID)
	}

	var entries []models.Entry
	limit := filter.limit()
	err := q.Offset(int(filter.Offset)).Limit(limit).Find(&entries).Error
	if err != nil {
		httpError(c, err)
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusOK, EntryListResponse{
		Data: entries,
		Pagination: Pagination{
			Count:  len(entries),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  count,
		},
	})
}

func GetEntry(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}

	entry, err := getModelByID[models.Entry](id)
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusOK, EntryResponse{Data: entry})
}

func UpdateEntry(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}

	err := models.UpdateEntry(models.DB, id)
	httpError(c, err)
}

func DeleteEntry(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}

	err := models.DeleteEntry(models.DB, id)
	httpError(c, err)
}
