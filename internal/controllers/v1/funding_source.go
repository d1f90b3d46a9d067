package v1

import (
	"net/http"
	"time"

	"github.com/dan-homisak/Nexus/internal/httputil"
	"github.com/dan-homisak/Nexus/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type FundingSourceEditable struct {
	Name         string     `json:"name" example:"FY24 Lab Equipment"`
	IsCostCenter bool       `json:"isCostCenter" example:"false"`
	Owner        string     `json:"owner" example:"morre"`
	ClosureDate  *time.Time `json:"closureDate"`
	Description  string     `json:"description"`
}

func (e FundingSourceEditable) model() models.FundingSource {
	return models.FundingSource{
		Name:         e.Name,
		IsCostCenter: e.IsCostCenter,
		Owner:        e.Owner,
		ClosureDate:  e.ClosureDate,
		Description:  e.Description,
	}
}

type FundingSourceResponse struct {
	Data models.FundingSource `json:"data"`
}

type FundingSourceListResponse struct {
	Data       []models.FundingSource `json:"data"`
	Pagination Pagination             `json:"pagination"`
}

type FundingSourceQueryFilter struct {
	listParams
	Name         string `form:"name"`
	Owner        string `form:"owner"`
	IsCostCenter *bool  `form:"isCostCenter"`
	Search       string `form:"search"`
}

// RegisterFundingSourceRoutes registers the routes for funding sources with
// the RouterGroup that is passed.
func RegisterFundingSourceRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsFundingSourceList)
		r.GET("", GetFundingSources)
		r.POST("", CreateFundingSource)
	}

	{
		r.OPTIONS("/:id", OptionsFundingSourceDetail)
		r.GET("/:id", GetFundingSource)
		r.PATCH("/:id", UpdateFundingSource)
		r.DELETE("/:id", DeleteFundingSource)
	}
}

func OptionsFundingSourceList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

func OptionsFundingSourceDetail(c *gin.Context) {
	httputil.OptionsGetPatchDelete(c)
}

func CreateFundingSource(c *gin.Context) {
	var editable FundingSourceEditable
	err := httputil.BindData(c, &editable)
	if err != nil {
		httpError(c, err)
		return
	}

	fundingSource := editable.model()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		return models.CreateFundingSource(tx, &fundingSource)
	})
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusCreated, FundingSourceResponse{Data: fundingSource})
}

func GetFundingSources(c *gin.Context) {
	var filter FundingSourceQueryFilter
	_ = c.Bind(&filter)

	q := models.DB.Order("name ASC")
	if filter.Name != "" {
		q = q.Where("name = ?", filter.Name)
	}
	if filter.Owner != "" {
		q = q.Where("owner = ?", filter.Owner)
	}
	if filter.IsCostCenter != nil {
		q = q.Where("is_cost_center = ?", *filter.IsCostCenter)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name LIKE ? OR description LIKE ?", like, like)
	}

	var fundingSources []models.FundingSource
	limit := filter.limit()
	err := q.Offset(int(filter.Offset)).Limit(limit).Find(&fundingSources).Error
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

	c.JSON(http.StatusOK, FundingSourceListResponse{
		Data: fundingSources,
		Pagination: Pagination{
			Count:  len(fundingSources),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  count,
		},
	})
}

func GetFundingSource(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}

	fundingSource, err := getModelByID[models.FundingSource](id)
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusOK, FundingSourceResponse{Data: fundingSource})
}

func UpdateFundingSource(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}

	fundingSource, err := getModelByID[models.FundingSource](id)
	if err != nil {
		httpError(c, err)
		return
	}

	fields, err := httputil.GetBodyFields(c, FundingSourceEditable{})
	if err != nil {
		httpError(c, err)
		return
	}

	var editable FundingSourceEditable
	err = httputil.BindData(c, &editable)
	if err != nil {
		httpError(c, err)
		return
	}

	var update models.FundingSourceUpdate
	if slices.Contains(fields, "Name") {
		update.Name = &editable.Name
	}
	if slices.Contains(fields, "Owner") {
		update.Owner = &editable.Owner
	}
	if slices.Contains(fields, "IsCostCenter") {
		update.IsCostCenter = &editable.IsCostCenter
	}
	if slices.Contains(fields, "ClosureDate") {
		update.ClosureDate = editable.ClosureDate
	}
	if slices.Contains(fields, "Description") {
		update.Description = &editable.Description
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		return models.UpdateFundingSource(tx, &fundingSource, update)
	})
	if err != nil {
		httpError(c, err)
		return
	}

	fundingSource, err = getModelByID[models.FundingSource](id)
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusOK, FundingSourceResponse{Data: fundingSource})
}

func DeleteFundingSource(c *gin.Context) {
	id, ok := requireID(c)
	if !ok {
		return
	}

	fundingSource, err := getModelByID[models.FundingSource](id)
	if err != nil {
		httpError(c, err)
		return
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		return models.DeleteFundingSource(tx, &fundingSource)
	})
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
