package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oogunniyi/portfolio/internal/contact"
	"github.com/oogunniyi/portfolio/internal/content"
	"github.com/oogunniyi/portfolio/internal/modal"
	"github.com/oogunniyi/portfolio/internal/reveal"
	"github.com/oogunniyi/portfolio/internal/session"
	"github.com/oogunniyi/portfolio/internal/theme"
)

// PageHeader carries the page session id on every fragment request.
const PageHeader = "X-Page-ID"

// cookieStore persists the theme preference in the visitor's browser.
type cookieStore struct {
	c *gin.Context
}

func (s cookieStore) Load() (string, error) {
	v, err := s.c.Cookie(theme.StorageKey)
	if errors.Is(err, http.ErrNoCookie) {
		return "", nil
	}
	return v, err
}

func (s cookieStore) Save(value string) error {
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(theme.StorageKey, value, 365*24*60*60, "/", "", false, true)
	return nil
}

type pageView struct {
	PageID    string
	Headers   string
	Theme     theme.Mode
	C         *content.Catalogue
	Sections  map[string]bool
	Graphics  []content.Media
	Videos    []content.Media
	Hacking   []content.Media
	Modal     modal.State
	Contact   contactView
	Threshold float64
}

type contactView struct {
	Form   contact.Form
	Notice string
	Sent   bool
	Failed bool
}

func (s *Server) handleIndex(c *gin.Context) {
	page := s.pages.Create()
	pref := theme.New(cookieStore{c})

	headers, _ := json.Marshal(map[string]string{PageHeader: page.ID})
	c.HTML(http.StatusOK, "index.html", pageView{
		PageID:    page.ID,
		Headers:   string(headers),
		Theme:     pref.Get(),
		C:         s.catalogue,
		Sections:  page.Tracker.Snapshot(),
		Graphics:  s.catalogue.MediaIn("graphics"),
		Videos:    s.catalogue.MediaIn("multimedia"),
		Hacking:   s.catalogue.MediaIn("ethical-hacking"),
		Modal:     page.Modal.State(),
		Threshold: reveal.Threshold,
	})
}

func (s *Server) handleThemeToggle(c *gin.Context) {
	pref := theme.New(cookieStore{c})
	pref.Subscribe(func(m theme.Mode) {
		trigger, _ := json.Marshal(map[string]any{
			"themeChanged": map[string]string{"theme": m.String()},
		})
		c.Header("HX-Trigger", string(trigger))
	})

	mode := pref.Toggle()
	c.HTML(http.StatusOK, "theme-toggle.html", gin.H{"Theme": mode})
}

// page resolves the page session of a fragment request. A stale page is
// told to reload.
func (s *Server) page(c *gin.Context) (*session.Page, bool) {
	page, ok := s.pages.Get(c.GetHeader(PageHeader))
	if !ok {
		c.Header("HX-Refresh", "true")
		c.AbortWithStatus(http.StatusGone)
		return nil, false
	}
	return page, true
}

func (s *Server) handleReveal(c *gin.Context) {
	page, ok := s.page(c)
	if !ok {
		return
	}

	ratio := reveal.Threshold
	if raw := c.PostForm("ratio"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil || r < 0 || r > 1 {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		ratio = r
	}

	id := c.Param("id")
	if page.Tracker.Observe(id, ratio) {
		trigger, _ := json.Marshal(map[string]any{
			"revealed": map[string]string{"id": id},
		})
		c.Header("HX-Trigger", string(trigger))
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleModalOpen(c *gin.Context) {
	page, ok := s.page(c)
	if !ok {
		return
	}

	item, err := s.catalogue.Media(c.Param("item"))
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	page.Modal.Open(item.URL, item.Video)
	c.HTML(http.StatusOK, "modal.html", page.Modal.State())
}

func (s *Server) handleModalClose(c *gin.Context) {
	page, ok := s.page(c)
	if !ok {
		return
	}
	page.Modal.Close()
	c.HTML(http.StatusOK, "modal.html", page.Modal.State())
}
