package catalog

import (
	"context"

	"github.com/hpungsan/docmint/internal/artifact"
	"github.com/hpungsan/docmint/internal/slides"
	"github.com/hpungsan/docmint/internal/tool"
)

func mergePPTX() *tool.Descriptor {
	return &tool.Descriptor{
		ID:       "merge_pptx",
		Name:     "Merge PPTX",
		Category: tool.CategoryOffice,
		Description: "Merge PowerPoint decks into one, slides in the order of the file list.\n\n" +
			"**Limitation:** only text boxes and placeholders are carried over. " +
			"Pictures, tables, charts, groups and connectors are dropped, and " +
			"slides use a plain blank layout.",
		Accepts:  []artifact.Kind{artifact.KindSlideshow},
		Multiple: true,
		Execute: func(_ context.Context, in tool.Input) (*tool.Output, error) {
			decks := make([][]byte, len(in.Artifacts))
			for i, a := range in.Artifacts {
				decks[i] = a.Data()
			}
			merged, err := slides.Merge(decks)
			if err != nil {
				return nil, err
			}
			return &tool.Output{Artifact: artifact.New("docmint_merged.pptx", merged, artifact.KindSlideshow, "")}, nil
		},
	}
}

func pptxText() *tool.Descriptor {
	return &tool.Descriptor{
		ID:          "pptx_text",
		Name:        "PPTX to Text",
		Category:    tool.CategoryOffice,
		Description: "Extract the text of every slide of a PowerPoint deck.",
		Accepts:     []artifact.Kind{artifact.KindSlideshow},
		Execute: func(_ context.Context, in tool.Input) (*tool.Output, error) {
			texts, err := slides.Text(in.Artifacts[0].Data())
			if err != nil {
				return nil, err
			}
			text := joinSections("Slide", texts)
			return &tool.Output{Artifact: artifact.New("docmint_slides.txt", []byte(text), artifact.KindText, "")}, nil
		},
	}
}
