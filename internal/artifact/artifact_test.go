package artifact

import (
	"archive/zip"
	"bytes"
	"image"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/docmint/internal/errors"
)

var pdfHeader = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n%%EOF\n")

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func zipBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("hello.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func names(s *Store) []string {
	var out []string
	for _, a := range s.All() {
		out = append(out, a.Name())
	}
	return out
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		file string
		data func(t *testing.T) []byte
		want Kind
	}{
		{"pdf by content", "report.bin", func(*testing.T) []byte { return pdfHeader }, KindPDF},
		{"png by content", "photo", pngBytes, KindImage},
		{"pptx via zip container and extension", "deck.pptx", zipBytes, KindSlideshow},
		{"plain zip", "bundle.zip", zipBytes, KindArchive},
		{"text", "notes.txt", func(*testing.T) []byte { return []byte("just some notes\n") }, KindText},
		{"binary junk", "blob.bin", func(*testing.T) []byte { return []byte{0x00, 0x01, 0x02, 0xff, 0x00} }, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Detect(tt.file, tt.data(t))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_PutInfersAndFilters(t *testing.T) {
	s := NewStore(KindPDF)

	a, err := s.Put("a.pdf", pdfHeader, KindUnknown)
	require.NoError(t, err)
	assert.Equal(t, KindPDF, a.Kind())
	assert.Equal(t, "application/pdf", a.MediaType())

	_, err = s.Put("photo.png", pngBytes(t), KindUnknown)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnsupportedKind))

	_, err = s.Put("blob.bin", []byte{0x00, 0x01, 0x02, 0xff}, KindUnknown)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnsupportedKind))

	_, err = s.Put("empty.pdf", nil, KindPDF)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnsupportedKind))

	assert.Equal(t, 1, s.Len())
}

func TestStore_DeclaredKindWins(t *testing.T) {
	s := NewStore(KindText)
	a, err := s.Put("data.csv", []byte("a,b\n1,2\n"), KindText)
	require.NoError(t, err)
	assert.Equal(t, KindText, a.Kind())
}

func TestStore_DuplicateNamesDisambiguated(t *testing.T) {
	s := NewStore()
	for range 3 {
		_, err := s.Put("dir/a.pdf", pdfHeader, KindUnknown)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a.pdf", "a (2).pdf", "a (3).pdf"}, names(s))
}

func TestStore_Reorder(t *testing.T) {
	s := NewStore(KindPDF)
	for _, n := range []string{"a.pdf", "b.pdf", "c.pdf"} {
		_, err := s.Put(n, pdfHeader, KindPDF)
		require.NoError(t, err)
	}

	require.NoError(t, s.Reorder([]string{"c.pdf", "a.pdf", "b.pdf"}))
	assert.Equal(t, []string{"c.pdf", "a.pdf", "b.pdf"}, names(s))

	all := s.All()
	assert.Equal(t, "c.pdf", all[0].Name())

	t.Run("not a permutation", func(t *testing.T) {
		for _, order := range [][]string{
			{"a.pdf", "b.pdf"},
			{"a.pdf", "a.pdf", "b.pdf"},
			{"a.pdf", "b.pdf", "z.pdf"},
		} {
			err := s.Reorder(order)
			require.Error(t, err, "order %v", order)
			assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
		}
		// Failed reorders leave the previous order intact.
		assert.Equal(t, []string{"c.pdf", "a.pdf", "b.pdf"}, names(s))
	})
}

func TestStore_Release(t *testing.T) {
	s := NewStore()
	_, err := s.Put("a.pdf", pdfHeader, KindUnknown)
	require.NoError(t, err)

	s.Release()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.All())

	_, err = s.Put("b.pdf", pdfHeader, KindUnknown)
	require.Error(t, err)
}

func TestBundle_UniqueNamesAndArchiveOrder(t *testing.T) {
	b := NewBundle()
	for i := 1; i <= 12; i++ {
		name := "page_" + itoa(i) + ".pdf"
		require.NoError(t, b.Add(New(name, []byte(name), KindPDF, "")))
	}
	require.Error(t, b.Add(New("page_3.pdf", nil, KindPDF, "")))
	assert.Equal(t, 12, b.Len())

	archive, err := b.Archive("split.zip")
	require.NoError(t, err)
	assert.Equal(t, KindArchive, archive.Kind())
	assert.Equal(t, "application/zip", archive.MediaType())

	zr, err := zip.NewReader(bytes.NewReader(archive.Data()), int64(archive.Size()))
	require.NoError(t, err)
	require.Len(t, zr.File, 12)
	for i, f := range zr.File {
		want := "page_" + itoa(i+1) + ".pdf"
		assert.Equal(t, want, f.Name)
		assert.Equal(t, zip.Deflate, f.Method)

		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Equal(t, want, string(content))
	}

	again, err := b.Archive("split.zip")
	require.NoError(t, err)
	assert.Equal(t, archive.Data(), again.Data(), "archives should be byte-identical")
}

func TestMediaTypeForExt(t *testing.T) {
	assert.Equal(t, "image/jpeg", MediaTypeForExt(".jpg"))
	assert.Equal(t, "image/jpeg", MediaTypeForExt("JPEG"))
	assert.Equal(t, "application/pdf", MediaTypeForExt("pdf"))
	assert.Equal(t, "application/octet-stream", MediaTypeForExt(".xyz"))

	a := New("out.png", []byte{1}, KindImage, "")
	assert.Equal(t, "image/png", a.MediaType())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Slideshow ")
	require.NoError(t, err)
	assert.Equal(t, KindSlideshow, k)

	k, err = ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindUnknown, k)

	_, err = ParseKind("video")
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
	assert.Contains(t, err.Error(), "pdf, image, slideshow, text, archive")
}

func itoa(i int) string {
	if i < 10 {
		return string(rune('0' + i))
	}
	return itoa(i/10) + string(rune('0'+i%10))
}
