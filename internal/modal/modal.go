// Package modal holds the single overlay of a page.
package modal

import "sync"

// State is what the page renders. The zero value is a closed modal.
type State struct {
	IsOpen  bool   `json:"is_open"`
	Content string `json:"content"`
	IsVideo bool   `json:"is_video"`
}

// Controller owns one page's modal.
type Controller struct {
	mu    sync.RWMutex
	state State
}

// NewController returns a closed modal.
func NewController() *Controller {
	return &Controller{}
}

// Open shows content, replacing whatever is open.
func (c *Controller) Open(content string, isVideo bool) {
	c.mu.Lock()
	c.state = State{IsOpen: true, Content: content, IsVideo: isVideo}
	c.mu.Unlock()
}

// Close hides the modal and clears its content.
func (c *Controller) Close() {
	c.mu.Lock()
	c.state = State{}
	c.mu.Unlock()
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}
