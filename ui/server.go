package ui

import (
	"log"
	"net/http"
	"strings"

	"churnboard/internal/analysis"
	"churnboard/internal/errors"
	"churnboard/internal/filter"
	"churnboard/internal/metrics"
	"churnboard/ui/services"

	"github.com/gin-gonic/gin"
)

// Server represents the web server for the churn dashboard
type Server struct {
	router    *gin.Engine
	dashboard *services.DashboardService
	charts    *services.ChartService
	render    *services.RenderService
}

// NewServer creates the dashboard server with its routes registered.
func NewServer(dashboard *services.DashboardService, chartService *services.ChartService) (*Server, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:    gin.New(),
		dashboard: dashboard,
		charts:    chartService,
		render:    services.NewRenderService(templates),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.GET("/dashboard", s.handleDashboard)
	api.GET("/metrics", s.handleMetrics)
	api.GET("/bounds", s.handleBounds)
	api.GET("/preview", s.handlePreview)
	api.GET("/correlation", s.handleCorrelation)
	api.GET("/locations", s.handleLocations)

	s.router.GET("/charts/:file", s.handleChart)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("[Server] Starting churn dashboard on http://%s", addr)
	return s.router.Run(addr)
}

// abortWithError sends the {"error","code"} body with the status for err's code.
func abortWithError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[Server] %s %s failed (id=%s): %v", c.Request.Method, c.Request.URL.Path, c.GetString(requestIDKey), err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}

func (s *Server) selection(c *gin.Context) (filter.Selection, bool) {
	sel, err := s.dashboard.Select(c.Request.Context(), c.Query("churn"), c.Query("min"), c.Query("max"))
	if err != nil {
		abortWithError(c, err)
		return filter.Selection{}, false
	}
	return sel, true
}

func (s *Server) handleIndex(c *gin.Context) {
	sel, ok := s.selection(c)
	if !ok {
		return
	}
	d, err := s.dashboard.Build(c.Request.Context(), sel)
	if err != nil {
		abortWithError(c, err)
		return
	}
	page := services.NewDashboardPage(d, s.render.Takeaways(), c.GetString(requestIDKey))
	html, err := s.render.RenderDashboard(dashboardTemplate, page)
	if err != nil {
		abortWithError(c, errors.Wrap(err, "render dashboard"))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (s *Server) handleDashboard(c *gin.Context) {
	sel, ok := s.selection(c)
	if !ok {
		return
	}
	d, err := s.dashboard.Build(c.Request.Context(), sel)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) handleMetrics(c *gin.Context) {
	sel, ok := s.selection(c)
	if !ok {
		return
	}
	view, err := s.dashboard.View(c.Request.Context(), sel)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics.Compute(view))
}

func (s *Server) handleBounds(c *gin.Context) {
	b, err := s.dashboard.Bounds(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) handlePreview(c *gin.Context) {
	sel, ok := s.selection(c)
	if !ok {
		return
	}
	view, err := s.dashboard.View(c.Request.Context(), sel)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total": view.Len(),
		"rows":  analysis.Preview(view, s.dashboard.PreviewRows()),
	})
}

func (s *Server) handleCorrelation(c *gin.Context) {
	sel, ok := s.selection(c)
	if !ok {
		return
	}
	view, err := s.dashboard.View(c.Request.Context(), sel)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis.Correlation(view))
}

func (s *Server) handleLocations(c *gin.Context) {
	c.JSON(http.StatusOK, analysis.Locations())
}

func (s *Server) handleChart(c *gin.Context) {
	name, ok := strings.CutSuffix(c.Param("file"), ".png")
	if !ok {
		abortWithError(c, errors.NotFound("chart "+c.Param("file")))
		return
	}
	sel, ok := s.selection(c)
	if !ok {
		return
	}
	img, err := s.charts.Render(c.Request.Context(), name, sel)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", img)
}

func (s *Server) handleHealth(c *gin.Context) {
	ds, err := s.dashboard.Dataset(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"rows":        ds.Len(),
		"fingerprint": ds.Fingerprint().Short(),
	})
}
