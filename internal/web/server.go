// Package web serves the attrition dashboard over HTTP: the HTML page, a
// JSON API for other front ends and a spreadsheet download.
package web

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/attrition-dashboard/internal/chart"
	"github.com/sells-group/attrition-dashboard/internal/config"
	"github.com/sells-group/attrition-dashboard/internal/dashboard"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server holds the handlers' dependencies.
type Server struct {
	svc     *dashboard.Service
	srv     config.ServerConfig
	bars    chart.Size
	pie     chart.Size
	tmpl    *template.Template
	limiter *rate.Limiter
}

// New creates a Server. A zero MaxRPS disables rate limiting.
func New(svc *dashboard.Service, srv config.ServerConfig, charts config.ChartConfig) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"selected": contains,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, eris.Wrap(err, "web: parse templates")
	}

	s := &Server{
		svc:  svc,
		srv:  srv,
		bars: chart.Size{WidthIn: charts.WidthIn, HeightIn: charts.HeightIn},
		pie:  chart.Size{WidthIn: charts.PieSizeIn, HeightIn: charts.PieSizeIn},
		tmpl: tmpl,
	}
	if srv.MaxRPS > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(srv.MaxRPS), srv.Burst)
	}
	return s, nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if s.limiter != nil {
		r.Use(rateLimit(s.limiter))
	}

	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleDashboard)
	r.Get("/export.xlsx", s.handleExport)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.srv.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/dashboard", s.handleAPIDashboard)
		r.Get("/options", s.handleAPIOptions)
		r.Post("/reload", s.handleAPIReload)
	})
	return r
}

// HTTPServer wraps Handler in an http.Server with the configured timeouts.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: time.Duration(s.srv.ReadTimeoutSecs) * time.Second,
		ReadTimeout:       time.Duration(s.srv.ReadTimeoutSecs) * time.Second,
		WriteTimeout:      time.Duration(s.srv.WriteTimeoutSecs) * time.Second,
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
