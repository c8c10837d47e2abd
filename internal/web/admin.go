package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oogunniyi/portfolio/internal/store"
)

const adminCookie = "admin_token"

// trackVisit records a page view with a hashed IP.
func (s *Server) trackVisit(ip, userAgent, path string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.db.TrackVisit(ctx, ip, userAgent, path); err != nil {
		s.logger.Warn("record visitor", "error", err)
	}
}

// visitorTracking records full page views. Fragment requests, assets,
// admin pages and visitors sending DNT are skipped.
func (s *Server) visitorTracking() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if c.Request.Method != http.MethodGet ||
			c.GetHeader("HX-Request") == "true" ||
			c.GetHeader("DNT") == "1" ||
			strings.HasPrefix(path, "/admin/") ||
			strings.HasPrefix(path, "/privacy") ||
			strings.HasPrefix(path, "/healthz") ||
			strings.HasPrefix(path, "/favicon") {
			c.Next()
			return
		}

		go s.track(c.ClientIP(), c.GetHeader("User-Agent"), path)
		c.Next()
	}
}

func (s *Server) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) validCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.admin.Password)) == 1
	return userOK && passOK
}

func (s *Server) registerAdminRoutes() {
	s.engine.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{"title": "Admin Login"})
	})

	s.engine.POST("/admin/login", func(c *gin.Context) {
		client := s.db.HashIP(c.ClientIP())
		if !s.validCredentials(c.PostForm("username"), c.PostForm("password")) {
			s.logger.Warn("failed admin login", "client", client)
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
				"title": "Admin Login",
				"error": "Invalid credentials",
			})
			return
		}

		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(adminCookie, s.adminToken, 24*60*60, "/admin", "", false, true)
		s.logger.Info("admin login", "client", client)
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	s.engine.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	admin := s.engine.Group("/admin")
	admin.Use(s.adminAuth())

	admin.GET("/dashboard", func(c *gin.Context) {
		stats, err := s.db.Stats(c.Request.Context())
		if err != nil {
			s.logger.Error("load admin stats", "error", err)
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load statistics",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats": stats,
			"pages": s.pages.Len(),
		})
	})

	admin.GET("/api/stats", func(c *gin.Context) {
		stats, err := s.db.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	admin.GET("/export/stats", func(c *gin.Context) {
		stats, err := s.db.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", "attachment; filename=portfolio-stats.json")
		c.JSON(http.StatusOK, stats)
	})

	admin.POST("/privacy/prune", func(c *gin.Context) {
		n, err := s.db.Prune(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		s.logger.Info("privacy cleanup", "removed", n)
		c.JSON(http.StatusOK, gin.H{"removed": n})
	})

	admin.DELETE("/messages/:id", func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		if err := s.db.DeleteMessage(c.Request.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "deleted"})
	})
}
