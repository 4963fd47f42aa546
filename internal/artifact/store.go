package artifact

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hpungsan/docmint/internal/errors"
)

// Store holds the uploaded inputs of one operation, in upload order.
// It is not safe for concurrent use; one request owns one store.
type Store struct {
	accepted []Kind
	items    []*Artifact
	released bool
}

// NewStore creates an empty store that admits the given kinds.
// With no kinds, any inferable kind is admitted.
func NewStore(accepted ...Kind) *Store {
	return &Store{accepted: slices.Clone(accepted)}
}

// Put adds an upload. A declared kind of KindUnknown is inferred from the
// content. Names that collide with an earlier upload get a " (n)" suffix so
// every stored name stays a usable reorder key.
func (s *Store) Put(name string, data []byte, declared Kind) (*Artifact, error) {
	if s.released {
		return nil, errors.NewInvalidRequest("artifact store already released")
	}
	name = cleanName(name)
	if len(data) == 0 {
		return nil, errors.NewUnsupportedKind(name, "", kindNames(s.accepted))
	}

	kind, mediaType := declared, ""
	if kind == KindUnknown {
		kind, mediaType = Detect(name, data)
	}
	if kind == KindUnknown {
		return nil, errors.NewUnsupportedKind(name, "", kindNames(s.accepted))
	}
	if len(s.accepted) > 0 && !slices.Contains(s.accepted, kind) {
		return nil, errors.NewUnsupportedKind(name, string(kind), kindNames(s.accepted))
	}
	if mediaType == "" || mediaType == "application/zip" {
		mediaType = MediaTypeForExt(filepath.Ext(name))
	}

	a := New(s.uniqueName(name), data, kind, mediaType)
	s.items = append(s.items, a)
	return a, nil
}

// All returns the artifacts in upload order, or in the order set by Reorder.
func (s *Store) All() []*Artifact {
	return slices.Clone(s.items)
}

// Len returns the number of stored artifacts.
func (s *Store) Len() int {
	return len(s.items)
}

// Reorder replaces the current order with the given permutation of names.
func (s *Store) Reorder(names []string) error {
	if len(names) != len(s.items) {
		return errors.NewInvalidRequest(fmt.Sprintf("order lists %d files, %d were uploaded", len(names), len(s.items)))
	}
	byName := make(map[string]*Artifact, len(s.items))
	for _, a := range s.items {
		byName[a.Name()] = a
	}

	ordered := make([]*Artifact, 0, len(names))
	for _, n := range names {
		a, ok := byName[n]
		if !ok {
			return errors.NewInvalidRequest(fmt.Sprintf("order names %q, which was not uploaded or is listed twice", n))
		}
		delete(byName, n)
		ordered = append(ordered, a)
	}
	s.items = ordered
	return nil
}

// Release drops every held buffer. The store rejects further uploads.
func (s *Store) Release() {
	clear(s.items)
	s.items = nil
	s.released = true
}

func (s *Store) uniqueName(name string) string {
	taken := func(n string) bool {
		for _, a := range s.items {
			if a.Name() == n {
				return true
			}
		}
		return false
	}
	if !taken(name) {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, i, ext)
		if !taken(candidate) {
			return candidate
		}
	}
}

// cleanName keeps only the final path element of a client-supplied name.
func cleanName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}

func kindNames(kinds []Kind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
