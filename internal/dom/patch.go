// Package dom describes mutations of a rendered page as patches.
//
// Components never talk to the browser directly: they emit patches to an
// Emitter, and the page stream translates them into datastar events.
package dom

import "sync"

// Mode selects how an element patch is merged into the page.
type Mode string

const (
	ModeOuter  Mode = "outer"
	ModeInner  Mode = "inner"
	ModeAppend Mode = "append"
	ModeAfter  Mode = "after"
	ModeRemove Mode = "remove"
)

// Kind distinguishes patch payloads.
type Kind int

const (
	KindElements Kind = iota
	KindSignals
	KindRedirect
)

// Patch is a single mutation of the page.
type Patch struct {
	Kind     Kind
	Selector string
	Mode     Mode
	HTML     string
	Signals  map[string]any
	URL      string
}

// Emitter accepts patches for delivery to one page.
type Emitter interface {
	Emit(p Patch)
}

// ID returns the CSS selector for an element id.
func ID(id string) string {
	return "#" + id
}

// Elements builds an element patch.
func Elements(selector string, mode Mode, html string) Patch {
	return Patch{Kind: KindElements, Selector: selector, Mode: mode, HTML: html}
}

// Remove builds a patch that detaches the selected element.
func Remove(selector string) Patch {
	return Patch{Kind: KindElements, Selector: selector, Mode: ModeRemove}
}

// Signals builds a patch that merges client-side signal values.
func Signals(values map[string]any) Patch {
	return Patch{Kind: KindSignals, Signals: values}
}

// Redirect builds a navigation patch.
func Redirect(url string) Patch {
	return Patch{Kind: KindRedirect, URL: url}
}

// Recorder is an Emitter that keeps every patch in memory.
type Recorder struct {
	mu      sync.Mutex
	patches []Patch
}

// Emit records p.
func (r *Recorder) Emit(p Patch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patches = append(r.patches, p)
}

// Patches returns a copy of the recorded patches.
func (r *Recorder) Patches() []Patch {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Patch, len(r.patches))
	copy(out, r.patches)
	return out
}

// Reset forgets all recorded patches.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patches = nil
}

// Matching returns the recorded patches targeting selector.
func (r *Recorder) Matching(selector string) []Patch {
	var out []Patch
	for _, p := range r.Patches() {
		if p.Selector == selector {
			out = append(out, p)
		}
	}
	return out
}
