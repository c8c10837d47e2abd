package modal

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStartsClosed(t *testing.T) {
	assert.Equal(t, State{}, NewController().State())
}

func TestOpenReplacesContent(t *testing.T) {
	c := NewController()
	c.Open("https://drive.google.com/file/d/abc/preview", true)
	c.Open("images/card.jpg", false)

	assert.Equal(t, State{IsOpen: true, Content: "images/card.jpg", IsVideo: false}, c.State())
}

func TestCloseClearsAndIsIdempotent(t *testing.T) {
	c := NewController()
	c.Open("images/card.jpg", false)
	c.Close()
	assert.Equal(t, State{}, c.State())

	c.Close()
	assert.Equal(t, State{IsOpen: false, Content: "", IsVideo: false}, c.State())
}

func TestOpenNeverExposesClosedState(t *testing.T) {
	c := NewController()
	c.Open("a.jpg", false)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if i%2 == 0 {
				c.Open("a.jpg", false)
			} else {
				c.Open("https://example.com/embed", true)
			}
		}
		close(stop)
	}()

	for {
		select {
		case <-stop:
			wg.Wait()
			return
		default:
			s := c.State()
			assert.True(t, s.IsOpen)
			assert.Equal(t, s.IsVideo, s.Content == "https://example.com/embed")
		}
	}
}
