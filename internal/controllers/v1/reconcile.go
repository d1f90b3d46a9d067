package v1

import (
	"net/http"

	"github.com/dan-homisak/Nexus/internal/httputil"
	"github.com/dan-homisak/Nexus/internal/models"
	"github.com/gin-gonic/gin"
)

type ReconcileResponse struct {
	Data models.ReconcileResult `json:"data"`
}

// RegisterReconcileRoutes registers the reconcile endpoint with the
// RouterGroup that is passed.
func RegisterReconcileRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsReconcile)
	r.POST("", CreateReconciliation)
}

func OptionsReconcile(c *gin.Context) {
	httputil.OptionsPost(c)
}

// CreateReconciliation recomputes the derived state of all funding sources,
// optionally restricted to names matching the "pattern" query parameter.
//
// Mutating endpoints keep the derived state current themselves, so a run
// over a healthy database reports unchanged totals.
func CreateReconciliation(c *gin.Context) {
	result, err := models.ReconcileMatching(models.DB, c.Query("pattern"))
	if err != nil {
		httpError(c, err)
		return
	}

	c.JSON(http.StatusOK, ReconcileResponse{Data: result})
}
