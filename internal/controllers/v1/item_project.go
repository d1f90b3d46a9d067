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

type ItemProjectEditable struct {
	Name        string    `json:"name" example:"Cryostat upgrade"`
	BudgetID    uuid.UUID `json:"budgetId"`
	Description string    `json:"description"`
}

func (e ItemProjectEditable) model() models.ItemProject {
	return models.ItemProject{
		Name:        e.Name,
		BudgetID:    e.BudgetID,
		Description: e.Description,
	}
}

type ItemProjectResponse struct {
	Data models.ItemProject `json:"data"`
}

type ItemProjectListResponse struct {
	Data       []models.ItemProject `json:"data"`
	Pagination Pagination           `json:"pagination"`
}

type ItemProjectRollupResponse struct {
	Data decimal.Decimal `json:"data"`
}

type ItemProjectQueryFilter struct {
	listParams
	Name     string       `form:"name"`
	BudgetID ez_uuid.UUID `form:"budget"`
	Search   string       `form:"search"`
}

// RegisterItemProjectRoutes registers the routes for item projects with
// the RouterGroup that is passed.
func RegisterItemProjectRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsItemProjectList)
		r.GET("", GetItemProjects)
		r.POST("", CreateItemProject)
	}

	{
		r.OPTIONS("/:id", OptionsItemProjectDetail)
		r.GET("/:id", GetItemProject)
		r.PATCH("/:id", UpdateItemProject)
		r.DELETE("/:id", DeleteItemProject)
		r.GET("/:id/rollup", GetItemProjectRollup)
	}
}

func OptionsItemProjectList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func OptionsItemProjectDetail(c *gin.Context) {
	httputil.OptionsGetPatchDelete(c)
}

func CreateItemProject(c *gin.Context) {
	var editable ItemProjectEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		httpError(c, err)
		return
	}

	itemProject := editable.model()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		return models.CreateItemProject(tx, &itemProject)
	})
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ItemProjectResponse{Data: itemProject})
}

func GetItemProjects(c *gin.Context) {
	var filter ItemProjectQueryFilter
	_ = c.Bind(&filter)

	q := models.DB.Order("name ASC")
	if filter.Name != "" {
		q = q.Where("name = ?", filter.Name)
	}
	if filter.BudgetID != ez_uuid.Nil {
		q = q.Where("budget_id = ?", filter.BudgetID.UUID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	var itemProjects []models.ItemProject
	limit := filter.limit()
	err := q.Offset(int(filter.Offset)).Limit(limit).Find(&itemProjects).Error
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

	c.JSON(http.StatusOK, ItemProjectListResponse{
		Data: itemProjects,
		Pagination: Pagination{
			Count:  len(itemProjects),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  count,
		},
	})
}

func GetItemProject(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}

	itemProject, err := getModelByID[models.ItemProject](id)
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusOK, ItemProjectResponse{Data: itemProject})
}

// GetItemProjectRollup returns the sum of the leaf category amounts of the
// item project.
func GetItemProjectRollup(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}

	itemProject, err := getModelByID[models.ItemProject](id)
	if err != nil {
		httpError(c, err)
		return
	}

	rollup, err := itemProject.Rollup(models.DB)
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusOK, ItemProjectRollupResponse{Data: rollup})
}

func UpdateItemProject(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}

	itemProject, err := getModelByID[models.ItemProject](id)
	if err != nil {
		httpError(c, err)
		return
	}

	fields, err := httputil.GetBodyFields(c, ItemProjectEditable{})
	if err != nil {
		httpError(c, err)
		return
	}

	var editable ItemProjectEditable
	err = httputil.BindData(c, &editable)
	if err != nil {
		httpError(c, err)
		return
	}

	var update models.ItemProjectUpdate
	if slices.Contains(fields, "Name") {
		update.Name = &editable.Name
	}
	if slices.Contains(fields, "Description") {
		update.Description = &editable.Description
	}
	if slices.Contains(fields, "BudgetID") {
		update.BudgetID = &editable.BudgetID
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		return models.UpdateItemProject(tx, &itemProject, update)
	})
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusOK, ItemProjectResponse{Data: itemProject})
}

func DeleteItemProject(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}

	itemProject, err := getModelByID[models.ItemProject](id)
	if err != nil {
		httpError(c, err)
		return
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		return models.DeleteItemProject(tx, &itemProject)
	})
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
