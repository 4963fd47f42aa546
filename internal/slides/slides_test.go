package slides

import (
	"archive/zip"
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textDeck(t *testing.T, titles ...string) []byte {
	t.Helper()
	d := &Deck{}
	for _, title := range titles {
		d.Slides = append(d.Slides, Slide{Shapes: []Shape{
			{Kind: ShapeText, Name: "Title", X: 100, Y: 200, CX: 3000, CY: 400, Paragraphs: []string{title}},
			{Kind: ShapeText, Paragraphs: []string{"first point", "second\nline"}},
		}})
	}
	data, err := Build(d)
	require.NoError(t, err)
	return data
}

// mixedSlide has one text box followed by a picture, a table and a group,
// the way an authoring tool writes them.
const mixedSlide = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
<p:cSld><p:spTree>
<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>
<p:sp><p:nvSpPr><p:cNvPr id="2" name="Title 1"/><p:cNvSpPr/><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr><p:spPr/>
<p:txBody><a:bodyPr/><a:p><a:r><a:t>Quarterly </a:t></a:r><a:r><a:t>results</a:t></a:r></a:p><a:p><a:fld id="{1}" type="slidenum"><a:t>7</a:t></a:fld></a:p></p:txBody></p:sp>
<p:pic><p:nvPicPr><p:cNvPr id="3" name="Picture 2"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr><p:blipFill/><p:spPr/></p:pic>
<p:graphicFrame><p:nvGraphicFramePr><p:cNvPr id="4" name="Table 3"/><p:cNvGraphicFramePr/><p:nvPr/></p:nvGraphicFramePr><p:xfrm/><a:graphic/></p:graphicFrame>
<p:grpSp><p:nvGrpSpPr><p:cNvPr id="5" name="Group 4"/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/></p:grpSp>
<p:sp><p:nvSpPr><p:cNvPr id="6" name="Rectangle 5"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/></p:sp>
</p:spTree></p:cSld></p:sld>`

func TestBuildParse_RoundTrip(t *testing.T) {
	data := textDeck(t, "Intro", "Agenda")

	d, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, d.Width)
	require.Len(t, d.Slides, 2)

	first := d.Slides[0].Shapes
	require.Len(t, first, 2)
	assert.Equal(t, ShapeText, first[0].Kind)
	assert.Equal(t, "Title", first[0].Name)
	assert.Equal(t, []int64{100, 200, 3000, 400}, []int64{first[0].X, first[0].Y, first[0].CX, first[0].CY})
	assert.Equal(t, []string{"Intro"}, first[0].Paragraphs)
	assert.Equal(t, []string{"first point", "second\nline"}, first[1].Paragraphs)
	assert.Positive(t, first[1].CX, "shapes without geometry get a default box")

	assert.Equal(t, "Agenda\nfirst point\nsecond\nline", d.Slides[1].Text())
}

func TestBuild_EscapesText(t *testing.T) {
	d := &Deck{Slides: []Slide{{Shapes: []Shape{{Kind: ShapeText, Paragraphs: []string{`R&D <2024> "plan"`}}}}}}
	data, err := Build(d)
	require.NoError(t, err)

	texts, err := Text(data)
	require.NoError(t, err)
	assert.Equal(t, []string{`R&D <2024> "plan"`}, texts)
}

func TestParse_ShapeKinds(t *testing.T) {
	data, err := writePackage(DefaultWidth, DefaultHeight, []string{mixedSlide})
	require.NoError(t, err)

	d, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, d.Slides, 1)

	var kinds []ShapeKind
	for _, sh := range d.Slides[0].Shapes {
		kinds = append(kinds, sh.Kind)
	}
	assert.Equal(t, []ShapeKind{ShapeText, ShapePicture, ShapeGraphicFrame, ShapeGroup, ShapeOther}, kinds)
	assert.Equal(t, []string{"Quarterly results", "7"}, d.Slides[0].Shapes[0].Paragraphs)
	assert.Equal(t, "Quarterly results\n7", d.Slides[0].Text())
}

func TestShapeKind_HasText(t *testing.T) {
	for k, name := range shapeKindNames {
		assert.Equal(t, k == ShapeText, k.HasText(), name)
		assert.Equal(t, name, k.String())
	}
}

func TestMerge(t *testing.T) {
	a := textDeck(t, "A1", "A2", "A3")
	b, err := writePackage(4000000, 3000000, []string{mixedSlide, mixedSlide})
	require.NoError(t, err)

	merged, err := Merge([][]byte{b, a})
	require.NoError(t, err)

	d, err := Parse(merged)
	require.NoError(t, err)
	require.Len(t, d.Slides, 5)
	assert.Equal(t, int64(4000000), d.Width)
	assert.Equal(t, int64(3000000), d.Height)

	for _, s := range d.Slides[:2] {
		require.Len(t, s.Shapes, 1, "non-text shapes are dropped")
		assert.Equal(t, "Quarterly results\n7", s.Text())
	}
	for i, s := range d.Slides[2:] {
		assert.Contains(t, s.Text(), fmt.Sprintf("A%d", i+1))
	}
}

func TestMerge_Errors(t *testing.T) {
	_, err := Merge(nil)
	assert.Error(t, err)

	_, err = Merge([][]byte{[]byte("not a zip")})
	assert.Error(t, err)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err = zw.Create("word/document.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	_, err = Merge([][]byte{buf.Bytes()})
	assert.ErrorContains(t, err, "ppt/presentation.xml")
}

func TestSlideCount(t *testing.T) {
	n, err := SlideCount(textDeck(t, "a", "b", "c", "d"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = SlideCount(textDeck(t))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
