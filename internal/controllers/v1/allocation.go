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

type AllocationEditable struct {
	EntryID       uuid.UUID       `json:"entryId"`
	BudgetID      uuid.UUID       `json:"budgetId"`
	ItemProjectID uuid.UUID       `json:"itemProjectId"`
	CategoryID    uuid.UUID       `json:"categoryId"`
	Amount        decimal.Decimal `json:"amount" example:"740.25"`
	Currency      string          `json:"currency" example:"USD"`
	PostedAt      time.Time       `json:"postedAt"`
}

func (e AllocationEditable) model() models.Allocation {
	return models.Allocation{
		EntryID:       e.EntryID,
		BudgetID:      e.BudgetID,
		ItemProjectID: e.ItemProjectID,
		CategoryID:    e.CategoryID,
		Amount:        e.Amount,
		Currency:      e.Currency,
		PostedAt:      e.PostedAt,
	}
}

// Allocation is the API representation of an allocation, with the derived
// effective amount included.
type Allocation struct {
	models.Allocation
	EffectiveAmount decimal.Decimal `json:"effectiveAmount" example:"710.25"`
}

type AllocationResponse struct {
	Data Allocation `json:"data"`
}

type AllocationListResponse struct {
	Data       []Allocation `json:"data"`
	Pagination Pagination   `json:"pagination"`
}

type AllocationQueryFilter struct {
	listParams
	EntryID       ez_uuid.UUID `form:"entry"`
	BudgetID      ez_uuid.UUID `form:"budget"`
	ItemProjectID ez_uuid.UUID `form:"itemProject"`
	CategoryID    ez_uuid.UUID `form:"category"`
}

// RegisterAllocationRoutes registers the routes for allocations with the
// RouterGroup that is passed. Allocations are append-only, PATCH and DELETE
// always fail.
func RegisterAllocationRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsAllocationList)
		r.GET("", GetAllocations)
		r.POST("", CreateAllocation)
	}

	{
		r.OPTIONS("/:id", OptionsAllocationDetail)
		r.GET("/:id", GetAllocation)
		r.PATCH("/:id", UpdateAllocation)
		r.DELETE("/:id", DeleteAllocation)
	}
}

func OptionsAllocationList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func OptionsAllocationDetail(c *gin.Context) {
	httputil.OptionsGet(c)
}

func newAllocation(m models.Allocation) (Allocation, error) {
	effective, err := m.EffectiveAmount(models.DB)
	if err != nil {
		return Allocation{}, err
	}

	return Allocation{Allocation: m, EffectiveAmount: effective}, nil
}

func CreateAllocation(c *gin.Context) {
	var editable AllocationEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		httpError(c, err)
		return
	}

	allocation := editable.model()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		return models.RecordAllocation(tx, &allocation)
	})
	if err != nil {
		httpError(c, err)
		return
	}

	apiResource, err := newAllocation(allocation)
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AllocationResponse{Data: apiResource})
}

func GetAllocations(c *gin.Context) {
	var filter AllocationQueryFilter
	_ = c.Bind(&filter)

	q := models.DB.Order("posted_at DESC, created_at DESC")
	if filter.EntryID != ez_uuid.Nil {
		q = q.Where("entry_id = ?", filter.EntryID.UUID)
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

	var allocations []models.Allocation
	limit := filter.limit()
	err := q.Offset(int(filter.Offset)).Limit(limit).Find(&allocations).Error
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

	apiResources := make([]Allocation, 0, len(allocations))
	for _, allocation := range allocations {
		apiResource, err := newAllocation(allocation)
		if err != nil {
			httpError(c, err)
			return
		}
		apiResources = append(apiResources, apiResource)
	}

	c.JSON(http.StatusOK, AllocationListResponse{
		Data: apiResources,
		Pagination: Pagination{
			Count:  len(apiResources),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  count,
		},
	})
}

func GetAllocation(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}

	allocation, err := getModelByID[models.Allocation](id)
	if err != nil {
		httpError(c, err)
		return
	}

	apiResource, err := newAllocation(allocation)
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusOK, AllocationResponse{Data: apiResource})
}

func UpdateAllocation(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}

	err := models.UpdateAllocation(models.DB, id)
	httpError(c, err)
}

func DeleteAllocation(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}

	err := models.DeleteAllocation(models.DB, id)
	httpError(c, err)
}
