package artifact

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const pptxMediaType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// Detect infers the kind of an upload from its content, falling back to the
// file extension when the content is ambiguous (e.g. a generic ZIP container).
// Returns KindUnknown and the sniffed media type when nothing matches.
func Detect(name string, data []byte) (Kind, string) {
	mime := mimetype.Detect(data)
	for m := mime; m != nil; m = m.Parent() {
		if k := kindForMediaType(m.String()); k != KindUnknown {
			if k == KindArchive || k == KindText {
				// Zip containers and plain text are the parents of richer
				// formats; let a specific extension win.
				if byExt := kindForExt(filepath.Ext(name)); byExt != KindUnknown {
					return byExt, MediaTypeForExt(filepath.Ext(name))
				}
			}
			return k, m.String()
		}
	}
	if byExt := kindForExt(filepath.Ext(name)); byExt != KindUnknown && len(data) > 0 {
		return byExt, MediaTypeForExt(filepath.Ext(name))
	}
	return KindUnknown, mime.String()
}

func kindForMediaType(mt string) Kind {
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	switch mt {
	case "application/pdf":
		return KindPDF
	case "image/png", "image/jpeg", "image/gif", "image/webp", "image/bmp", "image/tiff":
		return KindImage
	case pptxMediaType:
		return KindSlideshow
	case "text/plain":
		return KindText
	case "application/zip":
		return KindArchive
	}
	return KindUnknown
}

func kindForExt(ext string) Kind {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "pdf":
		return KindPDF
	case "png", "jpg", "jpeg", "gif", "webp", "bmp", "tif", "tiff":
		return KindImage
	case "pptx":
		return KindSlideshow
	case "txt":
		return KindText
	case "zip":
		return KindArchive
	}
	return KindUnknown
}
