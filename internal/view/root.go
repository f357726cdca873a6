package view

import (
	"sync"

	"cpubars/internal/models"
)

// Display receives the full tree on every commit and replaces what it shows.
type Display interface {
	Commit(tree *Node) error
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(tree *Node) error

// Commit calls f.
func (f DisplayFunc) Commit(tree *Node) error { return f(tree) }

// MultiDisplay commits to every display in order and returns the first error.
type MultiDisplay []Display

// Commit forwards tree to each display.
func (m MultiDisplay) Commit(tree *Node) error {
	var first error
	for _, d := range m {
		if d == nil {
			continue
		}
		if err := d.Commit(tree); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Root mounts App trees onto a Display. It keeps the last committed tree and
// skips commits that would not change anything.
type Root struct {
	mu      sync.RWMutex
	display Display
	current *Node
	commits int
}

// NewRoot mounts onto display.
func NewRoot(display Display) *Root {
	return &Root{display: display}
}

// Render builds the tree for samples and commits it as the sole content of
// the display.
func (r *Root) Render(samples models.SampleSet) error {
	tree := App(samples)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current != nil && Equal(r.current, tree) {
		return nil
	}
	if r.display != nil {
		if err := r.display.Commit(tree); err != nil {
			return err
		}
	}
	r.current = tree
	r.commits++
	return nil
}

// Current returns the last committed tree, or nil before the first render.
func (r *Root) Current() *Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Commits returns how many times the display was actually written.
func (r *Root) Commits() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.commits
}
