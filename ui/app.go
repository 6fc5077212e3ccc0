package ui

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"churnboard/internal/analysis"
	"churnboard/internal/errors"
	"churnboard/internal/filter"
	"churnboard/internal/metrics"
	"churnboard/ui/services"
)

// App is the lightweight chi front end serving the same read-only routes as Server.
type App struct {
	router    *chi.Mux
	dashboard *services.DashboardService
	charts    *services.ChartService
	render    *services.RenderService
	port      string
}

// Config holds UI application configuration
type Config struct {
	Port string
}

// NewApp creates a new UI application
func NewApp(config Config, dashboard *services.DashboardService, chartService *services.ChartService) (*App, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	if config.Port == "" {
		config.Port = "8080"
	}

	app := &App{
		router:    chi.NewRouter(),
		dashboard: dashboard,
		charts:    chartService,
		render:    services.NewRenderService(templates),
		port:      config.Port,
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(requestIDHandler)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Get("/healthz", a.handleHealth)

	a.router.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", a.handleDashboard)
		r.Get("/metrics", a.handleMetrics)
		r.Get("/bounds", a.handleBounds)
		r.Get("/preview", a.handlePreview)
		r.Get("/correlation", a.handleCorrelation)
		r.Get("/locations", a.handleLocations)
	})

	a.router.Get("/charts/{name}.png", a.handleChart)
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start() error {
	addr := ":" + a.port
	log.Printf("[App] Starting churn dashboard UI on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

func requestIDHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := requestID(r.Header.Get(RequestIDHeader))
		r.Header.Set(RequestIDHeader, id)
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[App] Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[App] %s %s failed (id=%s): %v", r.Method, r.URL.Path, r.Header.Get(RequestIDHeader), err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error(), "code": errors.GetCode(err)})
}

func (a *App) selection(w http.ResponseWriter, r *http.Request) (filter.Selection, bool) {
	q := r.URL.Query()
	sel, err := a.dashboard.Select(r.Context(), q.Get("churn"), q.Get("min"), q.Get("max"))
	if err != nil {
		writeError(w, r, err)
		return filter.Selection{}, false
	}
	return sel, true
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	sel, ok := a.selection(w, r)
	if !ok {
		return
	}
	d, err := a.dashboard.Build(r.Context(), sel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page := services.NewDashboardPage(d, a.render.Takeaways(), r.Header.Get(RequestIDHeader))
	html, err := a.render.RenderDashboard(dashboardTemplate, page)
	if err != nil {
		writeError(w, r, errors.Wrap(err, "render dashboard"))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(html)); err != nil {
		log.Printf("[App] Error writing page: %v", err)
	}
}

func (a *App) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sel, ok := a.selection(w, r)
	if !ok {
		return
	}
	d, err := a.dashboard.Build(r.Context(), sel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *App) handleMetrics(w http.ResponseWriter, r *http.Request) {
	sel, ok := a.selection(w, r)
	if !ok {
		return
	}
	view, err := a.dashboard.View(r.Context(), sel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics.Compute(view))
}

func (a *App) handleBounds(w http.ResponseWriter, r *http.Request) {
	b, err := a.dashboard.Bounds(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *App) handlePreview(w http.ResponseWriter, r *http.Request) {
	sel, ok := a.selection(w, r)
	if !ok {
		return
	}
	view, err := a.dashboard.View(r.Context(), sel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total": view.Len(),
		"rows":  analysis.Preview(view, a.dashboard.PreviewRows()),
	})
}

func (a *App) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	sel, ok := a.selection(w, r)
	if !ok {
		return
	}
	view, err := a.dashboard.View(r.Context(), sel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis.Correlation(view))
}

func (a *App) handleLocations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, analysis.Locations())
}

func (a *App) handleChart(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	sel, ok := a.selection(w, r)
	if !ok {
		return
	}
	img, err := a.charts.Render(r.Context(), name, sel)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(img); err != nil {
		log.Printf("[App] Error writing chart %s: %v", name, err)
	}
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ds, err := a.dashboard.Dataset(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"rows":        ds.Len(),
		"fingerprint": ds.Fingerprint().Short(),
	})
}
