// Package content loads the portfolio copy and media catalogue.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

// ErrNotFound is returned for an unknown media id.
var ErrNotFound = errors.New("media not found")

var sections = []string{
	"hero", "about", "skills", "projects", "graphics", "multimedia", "ethical-hacking", "contact",
}

// Sections returns the section ids in page order. Each one is revealed on scroll.
func Sections() []string {
	return slices.Clone(sections)
}

type Hero struct {
	Headline string `yaml:"headline"`
	Tagline  string `yaml:"tagline"`
}

type Badge struct {
	Vanity string `yaml:"vanity"`
	URL    string `yaml:"url"`
	Script string `yaml:"script"`
}

type Tool struct {
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
}

type Skills struct {
	Technical []string `yaml:"technical"`
	Tools     []Tool   `yaml:"tools"`
}

type Project struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Link        string   `yaml:"link"`
	Image       string   `yaml:"image"`
	Reverse     bool     `yaml:"reverse"`
	Note        string   `yaml:"note"`
	Languages   []string `yaml:"languages"`
	Workflow    string   `yaml:"workflow"`

	DescriptionHTML template.HTML `yaml:"-"`
}

// Media is an item that opens in the modal: an image, or a video embed when Video is set.
type Media struct {
	ID      string `yaml:"id"`
	Section string `yaml:"section"`
	Title   string `yaml:"title"`
	Caption string `yaml:"caption"`
	Thumb   string `yaml:"thumb"`
	URL     string `yaml:"url"`
	Video   bool   `yaml:"video"`
	Reverse bool   `yaml:"reverse"`
}

type Footer struct {
	Text     string `yaml:"text"`
	LinkText string `yaml:"link_text"`
	Link     string `yaml:"link"`
}

// Catalogue is the whole page copy.
type Catalogue struct {
	Owner        string    `yaml:"owner"`
	Title        string    `yaml:"title"`
	Description  string    `yaml:"description"`
	ProfileImage string    `yaml:"profile_image"`
	Hero         Hero      `yaml:"hero"`
	About        string    `yaml:"about"`
	Badge        Badge     `yaml:"badge"`
	Skills       Skills    `yaml:"skills"`
	Projects     []Project `yaml:"projects"`
	Items        []Media   `yaml:"media"`
	Footer       Footer    `yaml:"footer"`

	AboutHTML template.HTML `yaml:"-"`

	byID map[string]Media
}

// Default returns the embedded catalogue.
func Default() (*Catalogue, error) {
	return Parse(defaultContent)
}

// Parse decodes and validates a YAML catalogue and renders its Markdown fields.
func Parse(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}

	c.byID = make(map[string]Media, len(c.Items))
	for _, m := range c.Items {
		if err := validateMedia(m); err != nil {
			return nil, err
		}
		if _, dup := c.byID[m.ID]; dup {
			return nil, fmt.Errorf("media %q: duplicate id", m.ID)
		}
		c.byID[m.ID] = m
	}

	var err error
	if c.AboutHTML, err = renderMarkdown(c.About); err != nil {
		return nil, fmt.Errorf("render about: %w", err)
	}
	for i := range c.Projects {
		p := &c.Projects[i]
		if p.DescriptionHTML, err = renderMarkdown(p.Description); err != nil {
			return nil, fmt.Errorf("render project %q: %w", p.Title, err)
		}
	}
	return &c, nil
}

func validateMedia(m Media) error {
	if m.ID == "" {
		return fmt.Errorf("media %q: missing id", m.Title)
	}
	if m.URL == "" {
		return fmt.Errorf("media %q: missing url", m.ID)
	}
	if m.Video {
		u, err := url.Parse(m.URL)
		if err != nil || u.Scheme != "https" || u.Host == "" {
			return fmt.Errorf("media %q: video url must be an https embed", m.ID)
		}
	}
	return nil
}

// Media returns the item with the given id.
func (c *Catalogue) Media(id string) (Media, error) {
	m, ok := c.byID[id]
	if !ok {
		return Media{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m, nil
}

// MediaIn returns the items of one section in catalogue order.
func (c *Catalogue) MediaIn(section string) []Media {
	var out []Media
	for _, m := range c.Items {
		if m.Section == section {
			out = append(out, m)
		}
	}
	return out
}

func renderMarkdown(src string) (template.HTML, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
