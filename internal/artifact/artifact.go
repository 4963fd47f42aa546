// Package artifact holds the byte blobs that flow through a transformation:
// uploaded inputs, produced outputs and multi-file bundles.
package artifact

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hpungsan/docmint/internal/errors"
)

// Kind is the category of document or media an Artifact belongs to.
type Kind string

const (
	KindUnknown   Kind = ""
	KindPDF       Kind = "pdf"
	KindImage     Kind = "image"
	KindSlideshow Kind = "slideshow"
	KindText      Kind = "text"
	KindArchive   Kind = "archive"
)

// Kinds lists every concrete kind in display order.
var Kinds = []Kind{KindPDF, KindImage, KindSlideshow, KindText, KindArchive}

// ParseKind maps a declared kind name to a Kind. An empty name gives
// KindUnknown, which asks Store.Put to detect the kind from content.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == KindUnknown || slices.Contains(Kinds, k) {
		return k, nil
	}
	return KindUnknown, errors.NewInvalidRequest(fmt.Sprintf("unknown kind %q, want one of %s", s, strings.Join(kindNames(Kinds), ", ")))
}

// Artifact is one named, immutable byte blob with a declared kind.
// Data returns the underlying buffer; callers must not modify it.
type Artifact struct {
	name      string
	data      []byte
	kind      Kind
	mediaType string
}

// New creates an Artifact. The artifact takes ownership of data.
// An empty mediaType is derived from the name's extension.
func New(name string, data []byte, kind Kind, mediaType string) *Artifact {
	if mediaType == "" {
		mediaType = MediaTypeForExt(filepath.Ext(name))
	}
	return &Artifact{name: name, data: data, kind: kind, mediaType: mediaType}
}

func (a *Artifact) Name() string      { return a.name }
func (a *Artifact) Data() []byte      { return a.data }
func (a *Artifact) Kind() Kind        { return a.kind }
func (a *Artifact) MediaType() string { return a.mediaType }
func (a *Artifact) Size() int         { return len(a.data) }

// MediaTypeForExt returns the media type DocMint uses for an output extension.
func MediaTypeForExt(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "pdf":
		return "application/pdf"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "tif", "tiff":
		return "image/tiff"
	case "webp":
		return "image/webp"
	case "pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case "txt":
		return "text/plain; charset=utf-8"
	case "zip":
		return "application/zip"
	default:
		return "application/octet-stream"
	}
}
