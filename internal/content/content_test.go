package content

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogue(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "Oluwayomi Favour Ogunniyi", c.Owner)
	assert.Len(t, c.Projects, 8)
	assert.Len(t, c.MediaIn("graphics"), 3)
	assert.Len(t, c.MediaIn("multimedia"), 2)
	assert.Len(t, c.MediaIn("ethical-hacking"), 1)
	assert.Contains(t, string(c.AboutHTML), "<strong>Kali Linux</strong>")
	assert.Contains(t, string(c.Projects[2].DescriptionHTML), "<em>")
}

func TestMediaLookup(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	m, err := c.Media("animation-demo")
	require.NoError(t, err)
	assert.True(t, m.Video)
	assert.True(t, strings.HasPrefix(m.URL, "https://drive.google.com/"))

	m, err = c.Media("business-card")
	require.NoError(t, err)
	assert.False(t, m.Video)

	_, err = c.Media("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestParseRejectsBadMedia(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing id", "media: [{url: /a.jpg}]", "missing id"},
		{"missing url", "media: [{id: a}]", "missing url"},
		{"duplicate", "media: [{id: a, url: /a.jpg}, {id: a, url: /b.jpg}]", "duplicate id"},
		{"insecure video", "media: [{id: v, url: 'http://example.com/v', video: true}]", "https embed"},
		{"relative video", "media: [{id: v, url: /v.mp4, video: true}]", "https embed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("owner: [unterminated"))
	assert.Error(t, err)
}

func TestSectionsReturnsCopy(t *testing.T) {
	got := Sections()
	require.NotEmpty(t, got)
	assert.Equal(t, "hero", got[0])
	assert.Equal(t, "contact", got[len(got)-1])

	got[0] = "changed"
	assert.Equal(t, "hero", Sections()[0])
}
