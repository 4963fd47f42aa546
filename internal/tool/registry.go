package tool

import (
	"fmt"
	"slices"
	"sync"

	"github.com/hpungsan/docmint/internal/artifact"
	"github.com/hpungsan/docmint/internal/errors"
)

// HomeID is the identifier of the home pseudo-tool.
const HomeID = "home"

// Group is one navigation category with its tools.
type Group struct {
	Category Category
	Tools    []*Descriptor
}

// Registry is the static catalog of tools. It is built once at startup
// and read concurrently afterwards.
type Registry struct {
	mu    sync.RWMutex
	order []*Descriptor
	byID  map[string]*Descriptor
	// unavailable records dependency check failures found at registration.
	unavailable map[string]error
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:        make(map[string]*Descriptor),
		unavailable: make(map[string]error),
	}
}

// Register adds a tool. Ids are unique and "home" is reserved.
func (r *Registry) Register(d *Descriptor) error {
	if d == nil || d.ID == "" {
		return fmt.Errorf("tool descriptor needs an id")
	}
	if d.Execute == nil {
		return fmt.Errorf("tool %s has no execute function", d.ID)
	}
	if len(d.Accepts) == 0 {
		return fmt.Errorf("tool %s accepts no kinds", d.ID)
	}
	if !slices.Contains(AllCategories, d.Category) {
		return fmt.Errorf("tool %s has unknown category %q", d.ID, d.Category)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byID[d.ID]; dup || d.ID == HomeID {
		return errors.NewDuplicateID(d.ID)
	}
	r.byID[d.ID] = d
	r.order = append(r.order, d)
	if err := d.Available(); err != nil {
		r.unavailable[d.ID] = err
	}
	return nil
}

// Lookup returns the tool with the given id.
func (r *Registry) Lookup(id string) (*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byID[id]
	if !ok {
		return nil, errors.NewUnknownTool(id)
	}
	return d, nil
}

// List returns every tool in registration order.
func (r *Registry) List() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Categories returns the categories in use, in first registration order.
func (r *Registry) Categories() []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Category
	for _, d := range r.order {
		if !slices.Contains(out, d.Category) {
			out = append(out, d.Category)
		}
	}
	return out
}

// Groups returns the tools grouped by category in navigation order.
// Empty categories are omitted.
func (r *Registry) Groups() []Group {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var groups []Group
	for _, c := range AllCategories {
		g := Group{Category: c}
		for _, d := range r.order {
			if d.Category == c {
				g.Tools = append(g.Tools, d)
			}
		}
		if len(g.Tools) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

// Availability returns the dependency check failure recorded for id at registration,
// or nil when the tool is usable.
func (r *Registry) Availability(id string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.unavailable[id]
}

// Recheck re-runs every dependency check, e.g. after the operator installs a backend.
func (r *Registry) Recheck() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.unavailable)
	for _, d := range r.order {
		if err := d.Available(); err != nil {
			r.unavailable[d.ID] = err
		}
	}
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Home returns the home pseudo-tool. It has no inputs and is not part of List.
func (r *Registry) Home() *Descriptor {
	return &Descriptor{
		ID:          HomeID,
		Name:        "DocMint",
		Description: "Pick a tool from the menu to get started.",
	}
}

// Info is the serializable summary of one registered tool.
type Info struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    Category        `json:"category"`
	Description string          `json:"description"`
	Accepts     []artifact.Kind `json:"accepts"`
	Multiple    bool            `json:"multiple"`
	Options     []Option        `json:"options"`
	Available   bool            `json:"available"`
	Reason      string          `json:"unavailable_reason,omitempty"`
}

// Describe summarizes every tool in registration order.
func (r *Registry) Describe() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.order))
	for _, d := range r.order {
		info := Info{
			ID:          d.ID,
			Name:        d.Name,
			Category:    d.Category,
			Description: d.Description,
			Accepts:     d.Accepts,
			Multiple:    d.Multiple,
			Options:     d.Options,
			Available:   true,
		}
		if err := r.unavailable[d.ID]; err != nil {
			info.Available = false
			info.Reason = err.Error()
		}
		out = append(out, info)
	}
	return out
}
