package catalog

import (
	"context"
	"fmt"
	"image"
	"slices"

	"github.com/hpungsan/docmint/internal/artifact"
	"github.com/hpungsan/docmint/internal/imgops"
	"github.com/hpungsan/docmint/internal/pdfdoc"
	"github.com/hpungsan/docmint/internal/tool"
)

func resizeImage(s settings) *tool.Descriptor {
	return &tool.Descriptor{
		ID:       "resize_image",
		Name:     "Resize Image",
		Category: tool.CategoryImage,
		Description: "Resize an image by **pixels** or by **percentage**.\n\n" +
			"With *lock aspect ratio* on, the height follows the width. " +
			"Transparent areas are filled with white when the output format has no alpha channel.",
		Accepts: []artifact.Kind{artifact.KindImage},
		Options: []tool.Option{
			tool.EnumOption("unit", "Resize by", "pixels", "pixels", "percent"),
			tool.IntOption("width", "Width (px)", 800, 1, 10000),
			tool.IntOption("height", "Height (px)", 600, 1, 10000).WithHelp("Ignored while the aspect ratio is locked."),
			tool.BoolOption("lock_aspect", "Lock aspect ratio", true),
			tool.IntOption("percent", "Percentage", 100, 1, 200),
			tool.EnumOption("format", "Output format", string(imgops.JPEG), imgops.Formats...),
			tool.IntOption("quality", "Quality", s.jpegQuality, 10, 100).WithHelp("JPEG only."),
		},
		Execute: func(_ context.Context, in tool.Input) (*tool.Output, error) {
			dec, err := imgops.Decode(in.Artifacts[0].Data())
			if err != nil {
				return nil, err
			}
			out, err := imgops.Resize(dec.Image, imgops.ResizeSpec{
				UsePercent: in.Options.String("unit") == "percent",
				Percent:    in.Options.Int("percent"),
				Width:      in.Options.Int("width"),
				Height:     in.Options.Int("height"),
				LockAspect: in.Options.Bool("lock_aspect"),
			})
			if err != nil {
				return nil, err
			}
			return encodeImage("resized", out, in.Options.String("format"), in.Options.Int("quality"))
		},
	}
}

func imageEditor(s settings) *tool.Descriptor {
	return &tool.Descriptor{
		ID:       "image_editor",
		Name:     "Image Editor",
		Category: tool.CategoryImage,
		Description: "Rotate an image, then apply a filter.\n\n" +
			"Rotation is counter-clockwise; the canvas grows so nothing is cropped. " +
			"The result keeps the input's format when possible (WEBP input is saved as PNG).",
		Accepts: []artifact.Kind{artifact.KindImage},
		Options: []tool.Option{
			tool.EnumOption("filter", "Filter", string(imgops.FilterNone), imgops.Filters...),
			tool.IntOption("rotate", "Rotation (degrees)", 0, 0, 360),
		},
		Execute: func(_ context.Context, in tool.Input) (*tool.Output, error) {
			dec, err := imgops.Decode(in.Artifacts[0].Data())
			if err != nil {
				return nil, err
			}
			// Filters run on the rotated canvas, so its new corners are filtered too.
			img := imgops.Rotate(dec.Image, in.Options.Int("rotate"))
			img, err = imgops.Apply(img, imgops.Filter(in.Options.String("filter")))
			if err != nil {
				return nil, err
			}

			format := imgops.PNG
			if f, ok := dec.SourceFormat(); ok {
				format = f
			}
			return encodeImage("edited", img, string(format), s.jpegQuality)
		},
	}
}

func convertFormat(s settings) *tool.Descriptor {
	return &tool.Descriptor{
		ID:          "convert_format",
		Name:        "Convert Format",
		Category:    tool.CategoryImage,
		Description: "Convert an image to PNG, JPEG, GIF, BMP, TIFF or a one-page PDF.",
		Accepts:     []artifact.Kind{artifact.KindImage},
		Options: []tool.Option{
			tool.EnumOption("target", "Convert to", string(imgops.PNG), append(slices.Clone(imgops.Formats), "pdf")...),
			tool.IntOption("quality", "Quality", s.jpegQuality, 10, 100).WithHelp("JPEG only."),
		},
		Execute: func(_ context.Context, in tool.Input) (*tool.Output, error) {
			dec, err := imgops.Decode(in.Artifacts[0].Data())
			if err != nil {
				return nil, err
			}
			target := in.Options.String("target")
			if target == "pdf" {
				doc, err := imagesToDocument([]*imgops.Decoded{dec})
				if err != nil {
					return nil, err
				}
				return &tool.Output{Artifact: artifact.New("conv.pdf", doc, artifact.KindPDF, "")}, nil
			}
			return encodeImage("conv", dec.Image, target, in.Options.Int("quality"))
		},
	}
}

func imagesToPDF() *tool.Descriptor {
	return &tool.Descriptor{
		ID:          "images_to_pdf",
		Name:        "Images to PDF",
		Category:    tool.CategoryPDF,
		Description: "Combine images into one PDF, one page per image, in the order shown.",
		Accepts:     []artifact.Kind{artifact.KindImage},
		Multiple:    true,
		Execute: func(ctx context.Context, in tool.Input) (*tool.Output, error) {
			decoded := make([]*imgops.Decoded, 0, len(in.Artifacts))
			for _, a := range in.Artifacts {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				dec, err := imgops.Decode(a.Data())
				if err != nil {
					return nil, fmt.Errorf("%s: %w", a.Name(), err)
				}
				decoded = append(decoded, dec)
			}
			doc, err := imagesToDocument(decoded)
			if err != nil {
				return nil, err
			}
			return &tool.Output{Artifact: artifact.New("docmint_images.pdf", doc, artifact.KindPDF, "")}, nil
		},
	}
}

// imagesToDocument flattens each image on white and lays them out one per page.
func imagesToDocument(images []*imgops.Decoded) ([]byte, error) {
	encoded := make([][]byte, len(images))
	for i, d := range images {
		data, err := imgops.Encode(imgops.Flatten(d.Image), imgops.PNG, 0)
		if err != nil {
			return nil, err
		}
		encoded[i] = data
	}
	return pdfdoc.FromImages(encoded)
}

func encodeImage(stem string, img image.Image, formatName string, quality int) (*tool.Output, error) {
	f, err := imgops.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	data, err := imgops.Encode(img, f, quality)
	if err != nil {
		return nil, err
	}
	return &tool.Output{Artifact: artifact.New(stem+"."+f.Ext(), data, artifact.KindImage, "")}, nil
}
