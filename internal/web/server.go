// Package web serves the portfolio page and its HTMX fragment endpoints.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oogunniyi/portfolio/internal/config"
	"github.com/oogunniyi/portfolio/internal/contact"
	"github.com/oogunniyi/portfolio/internal/content"
	"github.com/oogunniyi/portfolio/internal/session"
	"github.com/oogunniyi/portfolio/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// requiredTemplates must all be present for the server to start.
var requiredTemplates = []string{
	"index.html",
	"theme-toggle.html",
	"modal.html",
	"contact-form.html",
	"privacy.html",
	"admin-login.html",
	"admin-dashboard.html",
	"admin-error.html",
}

// Options wires the server's collaborators. DB is optional; without it
// visitors are not tracked and the admin area is not mounted.
type Options struct {
	Catalogue *content.Catalogue
	Pages     *session.Registry
	Submitter *contact.Submitter
	DB        *store.DB
	ImagesDir string
	Admin     config.AdminConfig
	Logger    *slog.Logger
}

// Server is the portfolio HTTP host.
type Server struct {
	engine     *gin.Engine
	catalogue  *content.Catalogue
	pages      *session.Registry
	submitter  *contact.Submitter
	db         *store.DB
	admin      config.AdminConfig
	adminToken string
	logger     *slog.Logger

	// track records a page view; it runs in its own goroutine.
	track func(ip, userAgent, path string)
}

// New builds the server and registers every route. It fails when a page
// template is missing.
func New(opts Options) (*Server, error) {
	tmpl, err := parseTemplates(templateFS)
	if err != nil {
		return nil, err
	}
	return newServer(opts, tmpl)
}

func newServer(opts Options, tmpl *template.Template) (*Server, error) {
	if opts.Catalogue == nil || opts.Pages == nil || opts.Submitter == nil {
		return nil, fmt.Errorf("web: catalogue, pages and submitter are required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		engine:    gin.New(),
		catalogue: opts.Catalogue,
		pages:     opts.Pages,
		submitter: opts.Submitter,
		db:        opts.DB,
		admin:     opts.Admin,
		logger:    opts.Logger,
	}
	s.track = s.trackVisit

	s.engine.Use(s.recovery(), s.requestLogger())
	s.engine.SetHTMLTemplate(tmpl)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}
	s.engine.StaticFS("/static", http.FS(static))
	if opts.ImagesDir != "" {
		s.engine.Static("/images", opts.ImagesDir)
	}

	if s.db != nil {
		s.engine.Use(s.visitorTracking())
	}
	s.registerRoutes()

	if s.db != nil && s.admin.Password != "" {
		token, err := store.RandomToken()
		if err != nil {
			return nil, err
		}
		s.adminToken = token
		s.registerAdminRoutes()
		s.logger.Info("admin area enabled", "path", "/admin/login")
	}
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.GET("/", s.handleIndex)
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/privacy", s.handlePrivacy)

	s.engine.POST("/theme", s.handleThemeToggle)
	s.engine.POST("/reveal/:id", s.handleReveal)
	s.engine.GET("/modal/:item", s.handleModalOpen)
	s.engine.POST("/modal/close", s.handleModalClose)
	s.engine.POST("/contact", s.handleContact)
}

func parseTemplates(fsys fs.FS) (*template.Template, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"join": strings.Join,
	}).ParseFS(fsys, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	for _, name := range requiredTemplates {
		if tmpl.Lookup(name) == nil {
			return nil, fmt.Errorf("template %s is missing", name)
		}
	}
	return tmpl, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "pages": s.pages.Len()})
}

func (s *Server) handlePrivacy(c *gin.Context) {
	c.HTML(http.StatusOK, "privacy.html", gin.H{
		"title":    "Privacy Policy",
		"owner":    s.catalogue.Owner,
		"tracking": s.db != nil,
	})
}

// requestLogger logs one line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/static/") || strings.HasPrefix(path, "/images/") {
			return
		}
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// recovery turns panics into a logged 500.
func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		s.logger.Error("panic recovered",
			"panic", rec,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}
