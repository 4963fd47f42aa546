package catalog

import (
	"github.com/hpungsan/docmint/internal/artifact"
	"github.com/hpungsan/docmint/internal/pdfdoc"
	"github.com/hpungsan/docmint/internal/slides"
)

// Summary describes what a result file contains.
type Summary struct {
	Pages  []pdfdoc.Size `json:"pages,omitempty"`
	Slides int           `json:"slides,omitempty"`
}

// Summarize inspects a single result artifact. Kinds without a summary, and
// files the backends cannot read back, give nil.
func Summarize(a *artifact.Artifact) *Summary {
	switch a.Kind() {
	case artifact.KindPDF:
		sizes, err := pdfdoc.PageSizes(a.Data())
		if err != nil {
			return nil
		}
		return &Summary{Pages: sizes}
	case artifact.KindSlideshow:
		n, err := slides.SlideCount(a.Data())
		if err != nil {
			return nil
		}
		return &Summary{Slides: n}
	}
	return nil
}
