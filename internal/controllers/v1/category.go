package v1

import (
	"net/http"

	"github.com/dan-homisak/Nexus/internal/httputil"
	"github.com/dan-homisak/Nexus/internal/models"
	ez_uuid "github.com/dan-homisak/Nexus/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type CategoryEditable struct {
	Name          string           `json:"name" example:"Vacuum pumps"`
	ParentID      *uuid.UUID       `json:"parentId"`
	ItemProjectID uuid.UUID        `json:"itemProjectId"`
	BudgetID      uuid.UUID        `json:"budgetId"`
	Description   string           `json:"description"`
	IsLeaf        *bool            `json:"isLeaf"`
	AmountLeaf    *decimal.Decimal `json:"amountLeaf" example:"1500.00"`
}

func (e CategoryEditable) model() models.Category {
	category := models.Category{
		Name:          e.Name,
		ParentID:      e.ParentID,
		ItemProjectID: e.ItemProjectID,
		BudgetID:      e.BudgetID,
		Description:   e.Description,
		IsLeaf:        true,
	}

	if e.IsLeaf != nil {
		category.IsLeaf = *e.IsLeaf
	}
	if e.AmountLeaf != nil {
		category.AmountLeaf = decimal.NullDecimal{Decimal: *e.AmountLeaf, Valid: true}
	}

	return category
}

type CategoryResponse struct {
	Data models.Category `json:"data"`
}

type CategoryListResponse struct {
	Data       []models.Category `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

type CategoryMoveCheckResponse struct {
	Data models.CategoryMoveCheck `json:"data"`
}

type CategoryQueryFilter struct {
	listParams
	Name          string       `form:"name"`
	BudgetID      ez_uuid.UUID `form:"budget"`
	ItemProjectID ez_uuid.UUID `form:"itemProject"`
	ParentID      ez_uuid.UUID `form:"parent"`
	IsLeaf        *bool        `form:"isLeaf"`
	Search        string       `form:"search"`
}

// RegisterCategoryRoutes registers the routes for categories with
// the RouterGroup that is passed.
func RegisterCategoryRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsCategoryList)
		r.GET("", GetCategories)
		r.POST("", CreateCategory)
	}

	{
		r.OPTIONS("/:id", OptionsCategoryDetail)
		r.GET("/:id", GetCategory)
		r.PATCH("/:id", UpdateCategory)
		r.DELETE("/:id", DeleteCategory)
		r.GET("/:id/can-move", GetCategoryCanMove)
	}
}

func OptionsCategoryList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func OptionsCategoryDetail(c *gin.Context) {
	httputil.OptionsGetPatchDelete(c)
}

func CreateCategory(c *gin.Context) {
	var editable CategoryEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		httpError(c, err)
		return
	}

	category := editable.model()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		return models.CreateCategory(tx, &category)
	})
	if err != nil {
		httpError(c, err)
		return
	}

	// Re-read to pick up the derived tree state
	category, err = getModelByID[models.Category](category.ID)
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CategoryResponse{Data: category})
}

func GetCategories(c *gin.Context) {
	var filter CategoryQueryFilter
	_ = c.Bind(&filter)

	q := models.DB.Order("name ASC")
	if filter.Name != "" {
		q = q.Where("name = ?", filter.Name)
	}
	if filter.BudgetID != ez_uuid.Nil {
		q = q.Where("budget_id = ?", filter.BudgetID.UUID)
	}
	if filter.ItemProjectID != ez_uuid.Nil {
		q = q.Where("item_project_id = ?", filter.ItemProjectID.UUID)
	}
	if filter.ParentID != ez_uuid.Nil {
		q = q.Where("parent_id = ?", filter.ParentID.UUID)
	}
	if filter.IsLeaf != nil {
		q = q.Where("is_leaf = ?", *filter.IsLeaf)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	var categories []models.Category
	limit := filter.limit()
	err := q.Offset(int(filter.Offset)).Limit(limit).Find(&categories).Error
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

	c.JSON(http.StatusOK, CategoryListResponse{
		Data: categories,
		Pagination: Pagination{
			Count:  len(categories),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  count,
		},
	})
}

func GetCategory(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}

	category, err := getModelByID[models.Category](id)
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusOK, CategoryResponse{Data: category})
}

// GetCategoryCanMove checks whether a category could be moved under the
// parent given in the "parent" query parameter without performing the move.
// An empty parameter checks a move to the tree root.
func GetCategoryCanMove(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}

	category, err := getModelByID[models.Category](id)
	if err != nil {
		httpError(c, err)
		return
	}

	var newParentID *uuid.UUID
	if param := c.Query("parent"); param != "" {
		parsed, err := httputil.UUIDFromString(param)
		if err != nil {
			httpError(c, err)
			return
		}
		newParentID = &parsed
	}

	check, err := models.CanMoveCategory(models.DB, &category, newParentID)
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusOK, CategoryMoveCheckResponse{Data: check})
}

func UpdateCategory(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}

	category, err := getModelByID[models.Category](id)
	if err != nil {
		httpError(c, err)
		return
	}

	fields, err := httputil.GetBodyFields(c, CategoryEditable{})
	if err != nil {
		httpError(c, err)
		return
	}

	var editable CategoryEditable
	err = httputil.BindData(c, &editable)
	if err != nil {
		httpError(c, err)
		return
	}

	var update models.CategoryUpdate
	if slices.Contains(fields, "Name") {
		update.Name = &editable.Name
	}
	if slices.Contains(fields, "Description") {
		update.Description = &editable.Description
	}
	if slices.Contains(fields, "ParentID") {
		update.ParentID = editable.ParentID
		update.ParentSet = true
	}
	if slices.Contains(fields, "ItemProjectID") {
		update.ItemProjectID = &editable.ItemProjectID
	}
	if slices.Contains(fields, "BudgetID") {
		update.BudgetID = &editable.BudgetID
	}
	update.IsLeaf = editable.IsLeaf
	update.AmountLeaf = editable.AmountLeaf

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		return models.UpdateCategory(tx, &category, update)
	})
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusOK, CategoryResponse{Data: category})
}

func DeleteCategory(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}

	category, err := getModelByID[models.Category](id)
	if err != nil {
		httpError(c, err)
		return
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		return models.DeleteCategory(tx, &category)
	})
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
