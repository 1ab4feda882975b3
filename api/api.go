package api

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"portfolioanalysis/internal/domain"
	"portfolioanalysis/internal/logger"
	"portfolioanalysis/internal/service"
	"portfolioanalysis/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// route groups that can be served independently
const (
	DataRoutes          = "data"
	AnalysisRoutes      = "analysis"
	VisualizationRoutes = "visualization"
	DashboardRoutes     = "dashboard"
)

var AllRoutes = []string{DataRoutes, AnalysisRoutes, VisualizationRoutes, DashboardRoutes}

type ApiHandler struct {
	// price cache, nil when caching is off
	Db              *sql.DB
	PriceService    service.PriceService
	AnalysisService service.AnalysisService
	Config          util.Config
	Logger          *zap.SugaredLogger
	// Routes picks which route groups are registered. Empty means all.
	Routes []string
}

func (m ApiHandler) enabled(group string) bool {
	if len(m.Routes) == 0 {
		return true
	}
	for _, r := range m.Routes {
		if r == group {
			return true
		}
	}
	return false
}

func (m ApiHandler) InitializeRouterEngine() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(m.logRequestMiddleware)
	router.SetHTMLTemplate(template.Must(
		template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"),
	))

	if m.enabled(DashboardRoutes) {
		router.GET("/", m.dashboard)
		router.POST("/dashboard/analyze", m.analyzeDashboard)
		router.GET("/dashboard/sample", m.sampleDashboard)
	} else {
		router.GET("/", func(c *gin.Context) {
			c.JSON(200, gin.H{"message": "portfolio analysis"})
		})
	}
	if m.enabled(DataRoutes) {
		router.GET("/assets/list", m.listAssets)
		router.GET("/assets/:ticker/history", m.getAssetHistory)
	}
	if m.enabled(AnalysisRoutes) {
		router.POST("/portfolio/optimize", m.optimizePortfolio)
		router.POST("/portfolio/frontier", m.portfolioFrontier)
	}
	if m.enabled(VisualizationRoutes) {
		router.GET("/portfolio/plot/efficient-frontier", m.plotEfficientFrontier)
	}

	return router
}

func (m ApiHandler) StartApi(port int) error {
	router := m.InitializeRouterEngine()
	return router.Run(fmt.Sprintf(":%d", port))
}

// errorStatusCode maps error kinds onto http statuses
func errorStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyData):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidDateFormat), errors.Is(err, domain.ErrInvalidWeights), errors.Is(err, domain.ErrDuplicateSymbol):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrZeroVolatility):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrProvider):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, errorStatusCode(err))
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	log := logger.FromContext(c.Request.Context())
	if code >= 500 {
		log.Errorf("request failed: %v", err)
	} else {
		log.Infof("request rejected: %v", err)
	}
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

func (m ApiHandler) logRequestMiddleware(c *gin.Context) {
	base := m.Logger
	if base == nil {
		base = zap.S()
	}
	requestID := uuid.New()
	log := base.With(
		"requestId", requestID.String(),
		"method", c.Request.Method,
		"route", c.Request.URL.Path,
	)
	profile := domain.NewProfile()
	ctx := logger.WithLogger(c.Request.Context(), log)
	ctx = domain.WithProfile(ctx, profile)
	c.Set(string(logger.ContextKey), log)
	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Request-Id", requestID.String())

	c.Next()

	log.Infow(
		"handled request",
		"status", c.Writer.Status(),
		"latencyMs", profile.TotalMs(),
		"spans", profile.Spans(),
		"ip", c.ClientIP(),
	)
}
