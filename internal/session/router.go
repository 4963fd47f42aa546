// Package session tracks which tool each browser session is looking at.
package session

import (
	"maps"

	"github.com/hpungsan/docmint/internal/tool"
)

// Router holds the navigation state of one session: the active tool, the
// unsubmitted form values for it, and a revision that changes on every
// navigation so views know to re-render.
type Router struct {
	reg    *tool.Registry
	active string
	draft  map[string]string
	rev    uint64
}

// NewRouter starts on the home pseudo-tool.
func NewRouter(reg *tool.Registry) *Router {
	return &Router{reg: reg, active: tool.HomeID}
}

// Navigate makes id the active tool and discards the draft. Navigating to the
// tool already active still discards the draft and bumps the revision.
func (r *Router) Navigate(id string) error {
	if id != tool.HomeID {
		if _, err := r.reg.Lookup(id); err != nil {
			return err
		}
	}
	r.active = id
	r.draft = nil
	r.rev++
	return nil
}

// ActiveID returns the active tool id.
func (r *Router) ActiveID() string {
	return r.active
}

// Current returns the active descriptor, or the home pseudo-tool.
func (r *Router) Current() *tool.Descriptor {
	if r.active == tool.HomeID {
		return r.reg.Home()
	}
	d, err := r.reg.Lookup(r.active)
	if err != nil {
		return r.reg.Home()
	}
	return d
}

// AtHome reports whether no tool is selected.
func (r *Router) AtHome() bool {
	return r.active == tool.HomeID
}

// SaveDraft remembers form values for the active tool.
func (r *Router) SaveDraft(values map[string]string) {
	r.draft = maps.Clone(values)
}

// Draft returns the remembered form values (nil when none).
func (r *Router) Draft() map[string]string {
	return maps.Clone(r.draft)
}

// Revision increases with every navigation.
func (r *Router) Revision() uint64 {
	return r.rev
}
