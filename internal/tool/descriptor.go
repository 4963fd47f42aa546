// Package tool defines the tool catalog: descriptors, option schemas, the
// registry that groups them, and the executor that runs them.
package tool

import (
	"context"
	"slices"

	"github.com/hpungsan/docmint/internal/artifact"
)

// Category groups tools in navigation.
type Category string

const (
	CategoryImage  Category = "Image tools"
	CategoryPDF    Category = "PDF tools"
	CategoryOffice Category = "Office tools"
)

// AllCategories lists every category in navigation order.
var AllCategories = []Category{CategoryImage, CategoryPDF, CategoryOffice}

// Input is what a transformation receives after validation.
type Input struct {
	Artifacts []*artifact.Artifact
	Options   Options
}

// Output is what a transformation returns: exactly one of Artifact or
// Bundle. ArchiveName names the ZIP a bundle is delivered as.
type Output struct {
	Artifact    *artifact.Artifact
	Bundle      *artifact.Bundle
	ArchiveName string
}

// ExecuteFunc runs a transformation over validated input.
type ExecuteFunc func(ctx context.Context, in Input) (*Output, error)

// Descriptor is the static description of one tool.
type Descriptor struct {
	ID          string
	Name        string
	Category    Category
	Description string // markdown
	Accepts     []artifact.Kind
	Multiple    bool
	Options     []Option

	// Check reports whether the tool's external dependency is present.
	// Nil means the tool has none.
	Check func() error

	Execute ExecuteFunc
}

// AcceptsKind reports whether k is an accepted input kind.
func (d *Descriptor) AcceptsKind(k artifact.Kind) bool {
	return slices.Contains(d.Accepts, k)
}

// Available checks the tool's dependency.
func (d *Descriptor) Available() error {
	if d.Check == nil {
		return nil
	}
	return d.Check()
}

// Option returns the schema entry for name.
func (d *Descriptor) Option(name string) (Option, bool) {
	for _, o := range d.Options {
		if o.Name == name {
			return o, true
		}
	}
	return Option{}, false
}
