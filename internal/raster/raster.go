// Package raster renders PDF pages to images with the poppler pdftoppm tool.
package raster

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hpungsan/docmint/internal/errors"
)

// Format is a raster output format.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
)

// Ext returns the extension pdftoppm writes for f.
func (f Format) Ext() string {
	if f == JPEG {
		return "jpg"
	}
	return "png"
}

// Page is one rendered page.
type Page struct {
	Number int
	Data   []byte
}

// Renderer runs pdftoppm.
type Renderer struct {
	// Path is the pdftoppm executable, resolved through PATH when bare.
	Path string
}

// New creates a renderer for the given executable.
func New(path string) *Renderer {
	if path == "" {
		path = "pdftoppm"
	}
	return &Renderer{Path: path}
}

// Check reports DependencyUnavailable when pdftoppm cannot be found.
func (r *Renderer) Check() error {
	if _, err := exec.LookPath(r.Path); err != nil {
		return errors.NewDependencyUnavailable("pdftoppm", err)
	}
	return nil
}

// Render rasterizes every page of doc at dpi, returning pages in order.
func (r *Renderer) Render(ctx context.Context, doc []byte, format Format, dpi int) ([]Page, error) {
	bin, err := exec.LookPath(r.Path)
	if err != nil {
		return nil, errors.NewDependencyUnavailable("pdftoppm", err)
	}

	dir, err := os.MkdirTemp("", "docmint-raster-")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, doc, 0o600); err != nil {
		return nil, fmt.Errorf("write input: %w", err)
	}

	flag := "-png"
	if format == JPEG {
		flag = "-jpeg"
	}
	prefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, bin, flag, "-r", strconv.Itoa(dpi), input, prefix)
	if out, err := cmd.CombinedOutput(); err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return nil, fmt.Errorf("pdftoppm: %w", err)
		}
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, msg)
	}

	return collect(dir, format.Ext())
}

// collect reads page-N.ext files (N possibly zero-padded) in page order.
func collect(dir, ext string) ([]Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	var pages []Page
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "page-") || !strings.HasSuffix(name, "."+ext) {
			continue
		}
		var num int
		if _, err := fmt.Sscanf(strings.TrimSuffix(strings.TrimPrefix(name, "page-"), "."+ext), "%d", &num); err != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		pages = append(pages, Page{Number: num, Data: data})
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no pages")
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })
	return pages, nil
}
