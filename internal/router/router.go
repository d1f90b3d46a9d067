package router

import (
	"net/http"
	"os"
	"strings"

	v1 "github.com/dan-homisak/Nexus/internal/controllers/v1"
	"github.com/dan-homisak/Nexus/internal/httputil"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/logger"
	"github.com/gin-contrib/pprof"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Overridden at build time with -ldflags "-X ...router.version=".
var version = "0.0.0"

// Config sets up the router with all middlewares.
func Config() (*gin.Engine, error) {
	r := gin.New()

	// Don’t process X-Forwarded-For header as we do not do anything with
	// client IPs
	r.ForwardedByClientIP = false

	// Send a HTTP 405 (Method not allowed) for all paths where there is
	// a handler, but not for the specific method used
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(requestid.New())
	r.Use(logger.SetLogger(
		logger.WithDefaultLevel(zerolog.InfoLevel),
		logger.WithClientErrorLevel(zerolog.InfoLevel),
		logger.WithServerErrorLevel(zerolog.ErrorLevel),
		logger.WithLogger(func(c *gin.Context, logger zerolog.Logger) zerolog.Logger {
			return logger.With().
				Str("request-id", requestid.Get(c)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Int("status", c.Writer.Status()).
				Int("size", c.Writer.Size()).
				Str("user-agent", c.Request.UserAgent()).
				Logger()
		})))

	// CORS settings
	allowOrigins, ok := os.LookupEnv("CORS_ALLOW_ORIGINS")
	if ok {
		log.Debug().Str("CORS Allowed Origins", allowOrigins).Msg("Router")

		r.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Fields(allowOrigins),
			AllowMethods:     []string{"OPTIONS", "GET", "POST", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	if err := registerPrometheusMetrics(); err != nil {
		return nil, err
	}
	r.Use(MetricsMiddleware())

	// Disable the gin debug route printing as it clutters logs (and test logs)
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, numHandlers int) {}

	// Don’t trust any proxy. We do not process any client IPs,
	// therefore we don’t need to trust anyone here.
	_ = r.SetTrustedProxies([]string{})

	log.Info().Str("version", version).Msg("Router")

	return r, nil
}

// AttachRoutes attaches the API routes to the router group that is passed in.
// Separating this from Config() allows us to attach it to different paths for
// different use cases.
func AttachRoutes(group *gin.RouterGroup) {
	group.GET("", GetRoot)
	group.OPTIONS("", OptionsRoot)
	group.GET("/version", GetVersion)
	group.OPTIONS("/version", OptionsVersion)

	group.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// pprof performance profiles
	enablePprof, ok := os.LookupEnv("ENABLE_PPROF")
	if ok && enablePprof == "true" {
		pprof.RouteRegister(group, "debug/pprof")
	}

	// API v1 setup
	apiV1 := group.Group("/v1")
	{
		apiV1.GET("", GetV1)
		apiV1.OPTIONS("", OptionsV1)
	}

	v1.RegisterFundingSourceRoutes(apiV1.Group("/funding-sources"))
	v1.RegisterItemProjectRoutes(apiV1.Group("/item-projects"))
	v1.RegisterCategoryRoutes(apiV1.Group("/categories"))
	v1.RegisterEntryRoutes(apiV1.Group("/entries"))
	v1.RegisterAllocationRoutes(apiV1.Group("/allocations"))
	v1.RegisterJournalRoutes(apiV1.Group("/journals"))
	v1.RegisterReconcileRoutes(apiV1.Group("/reconcile"))
}

type RootResponse struct {
	Links RootLinks `json:"links"`
}

type RootLinks struct {
	Version string `json:"version" example:"https://example.com/api/version"` // Endpoint returning the version of the backend
	Metrics string `json:"metrics" example:"https://example.com/api/metrics"` // Prometheus metrics
	V1      string `json:"v1" example:"https://example.com/api/v1"`           // List endpoint for all v1 endpoints
}

// GetRoot returns the link list for the API root.
func GetRoot(c *gin.Context) {
	url := httputil.RequestHost(c)

	c.JSON(http.StatusOK, RootResponse{
		Links: RootLinks{
			Version: url + "/version",
			Metrics: url + "/metrics",
			V1:      url + "/v1",
		},
	})
}

type VersionResponse struct {
	Data VersionObject `json:"data"`
}

type VersionObject struct {
	Version string `json:"version" example:"1.1.0"`
}

// GetVersion returns the software version of the API.
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, VersionResponse{
		Data: VersionObject{
			Version: version,
		},
	})
}

func OptionsRoot(c *gin.Context) {
	httputil.OptionsGet(c)
}

func OptionsVersion(c *gin.Context) {
	httputil.OptionsGet(c)
}

type V1Response struct {
	Links V1Links `json:"links"`
}

type V1Links struct {
	FundingSources string `json:"fundingSources" example:"https://example.com/api/v1/funding-sources"`
	ItemProjects   string `json:"itemProjects" example:"https://example.com/api/v1/item-projects"`
	Categories     string `json:"categories" example:"https://example.com/api/v1/categories"`
	Entries        string `json:"entries" example:"https://example.com/api/v1/entries"`
	Allocations    string `json:"allocations" example:"https://example.com/api/v1/allocations"`
	Journals       string `json:"journals" example:"https://example.com/api/v1/journals"`
	Reconcile      string `json:"reconcile" example:"https://example.com/api/v1/reconcile"`
}

// GetV1 returns general information about the v1 API.
func GetV1(c *gin.Context) {
	url := httputil.RequestHost(c) + "/v1"

	c.JSON(http.StatusOK, V1Response{
		Links: V1Links{
			FundingSources: url + "/funding-sources",
			ItemProjects:   url + "/item-projects",
			Categories:     url + "/categories",
			Entries:        url + "/entries",
			Allocations:    url + "/allocations",
			Journals:       url + "/journals",
			Reconcile:      url + "/reconcile",
		},
	})
}

func OptionsV1(c *gin.Context) {
	httputil.OptionsGet(c)
}
