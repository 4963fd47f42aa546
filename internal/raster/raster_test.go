package raster

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/docmint/internal/errors"
)

func TestCheck_Missing(t *testing.T) {
	r := New(filepath.Join(t.TempDir(), "no-such-pdftoppm"))
	err := r.Check()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDependencyUnavailable))

	pages, err := r.Render(context.Background(), []byte("%PDF-1.4"), PNG, 72)
	assert.Nil(t, pages)
	assert.True(t, errors.Is(err, errors.ErrDependencyUnavailable))
}

func TestNew_DefaultPath(t *testing.T) {
	assert.Equal(t, "pdftoppm", New("").Path)
}

func TestCollect_NumericOrder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"page-10.png", "page-02.png", "page-1.png", "input.pdf", "page-03.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o600))
	}

	pages, err := collect(dir, "png")
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, []int{1, 2, 10}, []int{pages[0].Number, pages[1].Number, pages[2].Number})
	assert.Equal(t, "page-02.png", string(pages[1].Data))

	_, err = collect(t.TempDir(), "png")
	assert.Error(t, err)
}

// TestRender_FakeBinary drives Render with a shell script standing in for
// pdftoppm that writes three zero-padded pages.
func TestRender_FakeBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in")
	}
	bin := filepath.Join(t.TempDir(), "pdftoppm")
	script := "#!/bin/sh\n" +
		"for a; do prefix=$a; done\n" +
		"for i in 1 2 3; do printf \"p$i\" > \"$prefix-0$i.jpg\"; done\n"
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))

	r := New(bin)
	require.NoError(t, r.Check())

	pages, err := r.Render(context.Background(), []byte("%PDF-1.4"), JPEG, 100)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	for i, p := range pages {
		assert.Equal(t, i+1, p.Number)
		assert.Equal(t, "p"+string(rune('1'+i)), string(p.Data))
	}
}

func TestRender_Failure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in")
	}
	bin := filepath.Join(t.TempDir(), "pdftoppm")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\necho 'Syntax Error: broken xref' >&2\nexit 1\n"), 0o755))

	_, err := New(bin).Render(context.Background(), []byte("junk"), PNG, 72)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken xref")
}
