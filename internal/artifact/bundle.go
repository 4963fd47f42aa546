package artifact

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"
)

// zipEpoch is the fixed modification time written for every archive entry,
// so the same bundle always produces the same bytes.
var zipEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Bundle is an ordered, uniquely named collection of artifacts produced by a
// multi-output operation.
type Bundle struct {
	items []*Artifact
	names map[string]bool
}

// NewBundle creates an empty bundle.
func NewBundle() *Bundle {
	return &Bundle{names: make(map[string]bool)}
}

// Add appends an artifact. Names must be unique within the bundle.
func (b *Bundle) Add(a *Artifact) error {
	if b.names[a.Name()] {
		return fmt.Errorf("bundle already has an entry named %q", a.Name())
	}
	b.names[a.Name()] = true
	b.items = append(b.items, a)
	return nil
}

// Entries returns the artifacts in insertion order.
func (b *Bundle) Entries() []*Artifact {
	out := make([]*Artifact, len(b.items))
	copy(out, b.items)
	return out
}

// Names returns the entry names in insertion order.
func (b *Bundle) Names() []string {
	out := make([]string, len(b.items))
	for i, a := range b.items {
		out[i] = a.Name()
	}
	return out
}

// Len returns the number of entries.
func (b *Bundle) Len() int {
	return len(b.items)
}

// Archive packages the bundle as a deflate-compressed ZIP named name.
// Entries are written in bundle order with a fixed timestamp.
func (b *Bundle) Archive(name string) (*Artifact, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, a := range b.items {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     a.Name(),
			Method:   zip.Deflate,
			Modified: zipEpoch,
		})
		if err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", a.Name(), err)
		}
		if _, err := w.Write(a.Data()); err != nil {
			return nil, fmt.Errorf("zip entry %s: %w", a.Name(), err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return New(name, buf.Bytes(), KindArchive, "application/zip"), nil
}
