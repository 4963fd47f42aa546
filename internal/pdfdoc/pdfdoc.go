// Package pdfdoc wraps the PDF libraries behind byte-in/byte-out helpers:
// page counting, merging, page extraction, splitting, text extraction and
// building a document from images.
package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/hpungsan/docmint/internal/errors"
)

func init() {
	// pdfcpu otherwise creates a config directory under the user's home.
	api.DisableConfigDir()
}

// Size is a page size in PDF user space units (1/72 inch).
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func conf() *model.Configuration {
	return model.NewDefaultConfiguration()
}

// PageCount returns the number of pages in doc.
func PageCount(doc []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(doc), conf())
	if err != nil {
		return 0, fmt.Errorf("read pdf: %w", err)
	}
	return n, nil
}

// PageSizes returns the effective size of every page, in page order.
func PageSizes(doc []byte) ([]Size, error) {
	dims, err := api.PageDims(bytes.NewReader(doc), conf())
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	sizes := make([]Size, len(dims))
	for i, d := range dims {
		sizes[i] = Size{Width: d.Width, Height: d.Height}
	}
	return sizes, nil
}

// Merge concatenates docs in the given order.
func Merge(docs [][]byte) ([]byte, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("nothing to merge")
	}
	readers := make([]io.ReadSeeker, len(docs))
	for i, d := range docs {
		readers[i] = bytes.NewReader(d)
	}
	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, conf()); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	return out.Bytes(), nil
}

// ExtractPage returns a one-page document holding page (1-indexed).
func ExtractPage(doc []byte, page int) ([]byte, error) {
	n, err := PageCount(doc)
	if err != nil {
		return nil, err
	}
	if page < 1 || page > n {
		return nil, errors.NewIndexOutOfRange(page, n)
	}
	return trim(doc, page)
}

// SplitAll returns one single-page document per page, in page order.
func SplitAll(ctx context.Context, doc []byte) ([][]byte, error) {
	n, err := PageCount(doc)
	if err != nil {
		return nil, err
	}
	pages := make([][]byte, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := trim(doc, i)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func trim(doc []byte, page int) ([]byte, error) {
	var out bytes.Buffer
	if err := api.Trim(bytes.NewReader(doc), &out, []string{strconv.Itoa(page)}, conf()); err != nil {
		return nil, fmt.Errorf("extract page %d: %w", page, err)
	}
	return out.Bytes(), nil
}

// FromImages builds a document with one page per encoded image, each page
// sized to its image.
func FromImages(images [][]byte) ([]byte, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("no images")
	}
	readers := make([]io.Reader, len(images))
	for i, img := range images {
		readers[i] = bytes.NewReader(img)
	}
	var out bytes.Buffer
	if err := api.ImportImages(nil, &out, readers, pdfcpu.DefaultImportConfig(), conf()); err != nil {
		return nil, fmt.Errorf("import images: %w", err)
	}
	return out.Bytes(), nil
}
