package catalog

import (
	"context"
	"fmt"

	"github.com/hpungsan/docmint/internal/artifact"
	"github.com/hpungsan/docmint/internal/pdfdoc"
	"github.com/hpungsan/docmint/internal/raster"
	"github.com/hpungsan/docmint/internal/tool"
)

func mergePDF() *tool.Descriptor {
	return &tool.Descriptor{
		ID:          "merge_pdf",
		Name:        "Merge PDF",
		Category:    tool.CategoryPDF,
		Description: "Merge PDFs into one document. Pages follow the order of the file list, not the upload order.",
		Accepts:     []artifact.Kind{artifact.KindPDF},
		Multiple:    true,
		Execute: func(_ context.Context, in tool.Input) (*tool.Output, error) {
			docs := make([][]byte, len(in.Artifacts))
			for i, a := range in.Artifacts {
				docs[i] = a.Data()
			}
			merged, err := pdfdoc.Merge(docs)
			if err != nil {
				return nil, err
			}
			return &tool.Output{Artifact: artifact.New("docmint_merged.pdf", merged, artifact.KindPDF, "")}, nil
		},
	}
}

func splitPDF() *tool.Descriptor {
	return &tool.Descriptor{
		ID:       "split_pdf",
		Name:     "Split PDF",
		Category: tool.CategoryPDF,
		Description: "Extract one page, or split every page into its own PDF.\n\n" +
			"*Split all* downloads a ZIP with `page_1.pdf`, `page_2.pdf`, …",
		Accepts: []artifact.Kind{artifact.KindPDF},
		Options: []tool.Option{
			tool.EnumOption("mode", "Mode", "extract_one", "extract_one", "split_all"),
			{Name: "page", Label: "Page number", Type: tool.OptInt, Default: 1, Help: "Used by extract_one; pages start at 1."},
		},
		Execute: func(ctx context.Context, in tool.Input) (*tool.Output, error) {
			doc := in.Artifacts[0].Data()
			if in.Options.String("mode") == "extract_one" {
				k := in.Options.Int("page")
				page, err := pdfdoc.ExtractPage(doc, k)
				if err != nil {
					return nil, err
				}
				return &tool.Output{Artifact: artifact.New(fmt.Sprintf("page_%d.pdf", k), page, artifact.KindPDF, "")}, nil
			}

			pages, err := pdfdoc.SplitAll(ctx, doc)
			if err != nil {
				return nil, err
			}
			b := artifact.NewBundle()
			for i, p := range pages {
				if err := b.Add(artifact.New(fmt.Sprintf("page_%d.pdf", i+1), p, artifact.KindPDF, "")); err != nil {
					return nil, err
				}
			}
			return &tool.Output{Bundle: b, ArchiveName: "split.zip"}, nil
		},
	}
}

func pdfToImages(s settings) *tool.Descriptor {
	return &tool.Descriptor{
		ID:       "pdf_to_images",
		Name:     "PDF to Images",
		Category: tool.CategoryPDF,
		Description: "Render every page of a PDF as an image and download them as a ZIP.\n\n" +
			"Needs the `pdftoppm` tool (poppler-utils) on the server.",
		Accepts: []artifact.Kind{artifact.KindPDF},
		Options: []tool.Option{
			tool.EnumOption("format", "Image format", string(raster.PNG), string(raster.PNG), string(raster.JPEG)),
			tool.IntOption("dpi", "Resolution (DPI)", s.rasterDPI, 50, 600),
		},
		Check: s.renderer.Check,
		Execute: func(ctx context.Context, in tool.Input) (*tool.Output, error) {
			format := raster.Format(in.Options.String("format"))
			pages, err := s.renderer.Render(ctx, in.Artifacts[0].Data(), format, in.Options.Int("dpi"))
			if err != nil {
				return nil, err
			}
			b := artifact.NewBundle()
			for _, p := range pages {
				name := fmt.Sprintf("page_%d.%s", p.Number, format.Ext())
				if err := b.Add(artifact.New(name, p.Data, artifact.KindImage, "")); err != nil {
					return nil, err
				}
			}
			return &tool.Output{Bundle: b, ArchiveName: "pdf_images.zip"}, nil
		},
	}
}

func pdfText() *tool.Descriptor {
	return &tool.Descriptor{
		ID:          "pdf_text",
		Name:        "PDF to Text",
		Category:    tool.CategoryPDF,
		Description: "Extract the text of every page. Scanned pages without a text layer come out empty.",
		Accepts:     []artifact.Kind{artifact.KindPDF},
		Execute: func(_ context.Context, in tool.Input) (*tool.Output, error) {
			pages, err := pdfdoc.ExtractText(in.Artifacts[0].Data())
			if err != nil {
				return nil, err
			}
			text := joinSections("Page", pages)
			return &tool.Output{Artifact: artifact.New("docmint_text.txt", []byte(text), artifact.KindText, "")}, nil
		},
	}
}
