// Package catalog assembles the default tool registry from the document and
// image backends.
package catalog

import (
	"log/slog"
	"slices"

	"github.com/hpungsan/docmint/internal/config"
	"github.com/hpungsan/docmint/internal/raster"
	"github.com/hpungsan/docmint/internal/tool"
)

// settings carries the config values the tools read at run time.
type settings struct {
	jpegQuality int
	rasterDPI   int
	renderer    *raster.Renderer
}

// Descriptors returns every tool, in menu order.
func Descriptors(cfg *config.Config) []*tool.Descriptor {
	s := settings{
		jpegQuality: cfg.JPEGQuality,
		rasterDPI:   cfg.RasterDPI,
		renderer:    raster.New(cfg.PdftoppmPath),
	}
	return []*tool.Descriptor{
		resizeImage(s),
		imageEditor(s),
		convertFormat(s),
		imagesToPDF(),
		mergePDF(),
		splitPDF(),
		pdfToImages(s),
		pdfText(),
		mergePPTX(),
		pptxText(),
	}
}

// Build registers every tool not listed in cfg.DisabledTools. Disabled ids
// that match no tool are logged as warnings.
func Build(cfg *config.Config, logger *slog.Logger) (*tool.Registry, error) {
	reg := tool.NewRegistry()
	descs := Descriptors(cfg)
	for _, id := range cfg.DisabledTools {
		if !slices.ContainsFunc(descs, func(d *tool.Descriptor) bool { return d.ID == id }) {
			logger.Warn("disabled_tools names an unknown tool", "tool", id)
		}
	}
	for _, d := range descs {
		if slices.Contains(cfg.DisabledTools, d.ID) {
			logger.Debug("tool disabled by config", "tool", d.ID)
			continue
		}
		if err := reg.Register(d); err != nil {
			return nil, err
		}
		if err := reg.Availability(d.ID); err != nil {
			logger.Warn("tool unavailable", "tool", d.ID, "err", err)
		}
	}
	return reg, nil
}
