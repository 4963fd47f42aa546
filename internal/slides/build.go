package slides

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

const (
	nsP   = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsRel = "http://schemas.openxmlformats.org/package/2006/relationships"

	relOfficeDocument = nsR + "/officeDocument"
	relSlide          = nsR + "/slide"
	relSlideMaster    = nsR + "/slideMaster"
	relSlideLayout    = nsR + "/slideLayout"
	relTheme          = nsR + "/theme"

	ctPresentation = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
	ctSlide        = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ctSlideLayout  = "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"
	ctSlideMaster  = "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"
	ctTheme        = "application/vnd.openxmlformats-officedocument.theme+xml"
	ctRels         = "application/vnd.openxmlformats-package.relationships+xml"

	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
)

var partEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Build writes deck as a minimal PPTX package with one blank layout.
// Only text shapes are written.
func Build(deck *Deck) ([]byte, error) {
	w, h := deck.Width, deck.Height
	if w <= 0 || h <= 0 {
		w, h = DefaultWidth, DefaultHeight
	}
	bodies := make([]string, len(deck.Slides))
	for i, s := range deck.Slides {
		bodies[i] = slideXML(s, w, h)
	}
	return writePackage(w, h, bodies)
}

// writePackage assembles the package around ready-made slide parts.
func writePackage(w, h int64, slideParts []string) ([]byte, error) {
	var ct strings.Builder
	ct.WriteString(xmlHeader)
	ct.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	ct.WriteString(`<Default Extension="rels" ContentType="` + ctRels + `"/>`)
	ct.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	ct.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="` + ctPresentation + `"/>`)
	ct.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="` + ctSlideMaster + `"/>`)
	ct.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="` + ctSlideLayout + `"/>`)
	ct.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="` + ctTheme + `"/>`)
	for i := range slideParts {
		fmt.Fprintf(&ct, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="%s"/>`, i+1, ctSlide)
	}
	ct.WriteString(`</Types>`)

	var pres, presRels strings.Builder
	pres.WriteString(xmlHeader)
	fmt.Fprintf(&pres, `<p:presentation xmlns:a="%s" xmlns:r="%s" xmlns:p="%s" saveSubsetFonts="1">`, nsA, nsR, nsP)
	pres.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	presRels.WriteString(xmlHeader)
	fmt.Fprintf(&presRels, `<Relationships xmlns="%s">`, nsRel)
	fmt.Fprintf(&presRels, `<Relationship Id="rId1" Type="%s" Target="slideMasters/slideMaster1.xml"/>`, relSlideMaster)
	fmt.Fprintf(&presRels, `<Relationship Id="rId2" Type="%s" Target="theme/theme1.xml"/>`, relTheme)
	if len(slideParts) > 0 {
		pres.WriteString(`<p:sldIdLst>`)
		for i := range slideParts {
			fmt.Fprintf(&pres, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, 3+i)
			fmt.Fprintf(&presRels, `<Relationship Id="rId%d" Type="%s" Target="slides/slide%d.xml"/>`, 3+i, relSlide, i+1)
		}
		pres.WriteString(`</p:sldIdLst>`)
	}
	fmt.Fprintf(&pres, `<p:sldSz cx="%d" cy="%d"/><p:notesSz cx="%d" cy="%d"/>`, w, h, h, w)
	pres.WriteString(`</p:presentation>`)
	presRels.WriteString(`</Relationships>`)

	parts := []struct{ name, body string }{
		{"[Content_Types].xml", ct.String()},
		{"_rels/.rels", rels(rel{"rId1", relOfficeDocument, "ppt/presentation.xml"})},
		{"ppt/presentation.xml", pres.String()},
		{"ppt/_rels/presentation.xml.rels", presRels.String()},
		{"ppt/slideMasters/slideMaster1.xml", masterXML},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", rels(
			rel{"rId1", relSlideLayout, "../slideLayouts/slideLayout1.xml"},
			rel{"rId2", relTheme, "../theme/theme1.xml"},
		)},
		{"ppt/slideLayouts/slideLayout1.xml", layoutXML},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", rels(rel{"rId1", relSlideMaster, "../slideMasters/slideMaster1.xml"})},
		{"ppt/theme/theme1.xml", themeXML},
	}
	for i, body := range slideParts {
		parts = append(parts,
			struct{ name, body string }{fmt.Sprintf("ppt/slides/slide%d.xml", i+1), body},
			struct{ name, body string }{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1),
				rels(rel{"rId1", relSlideLayout, "../slideLayouts/slideLayout1.xml"})},
		)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: p.name, Method: zip.Deflate, Modified: partEpoch})
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", p.name, err)
		}
		if _, err := fw.Write([]byte(p.body)); err != nil {
			return nil, fmt.Errorf("write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close pptx: %w", err)
	}
	return buf.Bytes(), nil
}

type rel struct{ id, typ, target string }

func rels(rs ...rel) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<Relationships xmlns="%s">`, nsRel)
	for _, r := range rs {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"/>`, r.id, r.typ, r.target)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

// slideXML renders the text shapes of s. Shapes without geometry are
// stacked down the slide.
func slideXML(s Slide, w, h int64) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<p:sld xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">`, nsA, nsR, nsP)
	b.WriteString(`<p:cSld><p:spTree>` + groupProps)

	id, slot := 2, 0
	for _, sh := range s.Shapes {
		if !sh.Kind.HasText() {
			continue
		}
		x, y, cx, cy := sh.X, sh.Y, sh.CX, sh.CY
		if cx <= 0 || cy <= 0 {
			x, y, cx, cy = w/12, h/12+int64(slot)*(h/6), w*10/12, h/6
			slot++
		}
		name := sh.Name
		if name == "" {
			name = fmt.Sprintf("TextBox %d", id-1)
		}
		fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, escape(name))
		fmt.Fprintf(&b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr>`, x, y, cx, cy)
		b.WriteString(`<p:txBody><a:bodyPr wrap="square"/><a:lstStyle/>`)
		paras := sh.Paragraphs
		if len(paras) == 0 {
			paras = []string{""}
		}
		for _, p := range paras {
			if p == "" {
				b.WriteString(`<a:p/>`)
				continue
			}
			b.WriteString(`<a:p>`)
			for i, line := range strings.Split(p, "\n") {
				if i > 0 {
					b.WriteString(`<a:br/>`)
				}
				if line != "" {
					fmt.Fprintf(&b, `<a:r><a:rPr lang="en-US" dirty="0"/><a:t>%s</a:t></a:r>`, escape(line))
				}
			}
			b.WriteString(`</a:p>`)
		}
		b.WriteString(`</p:txBody></p:sp>`)
		id++
	}

	b.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
	return b.String()
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

const groupProps = `<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`

var masterXML = xmlHeader +
	`<p:sldMaster xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">` +
	`<p:cSld><p:bg><p:bgRef idx="1001"><a:schemeClr val="bg1"/></p:bgRef></p:bg><p:spTree>` + groupProps + `</p:spTree></p:cSld>` +
	`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
	`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>` +
	`<p:txStyles><p:titleStyle/><p:bodyStyle/><p:otherStyle/></p:txStyles>` +
	`</p:sldMaster>`

var layoutXML = xmlHeader +
	`<p:sldLayout xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `" type="blank" preserve="1">` +
	`<p:cSld name="Blank"><p:spTree>` + groupProps + `</p:spTree></p:cSld>` +
	`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>` +
	`</p:sldLayout>`

var themeXML = xmlHeader +
	`<a:theme xmlns:a="` + nsA + `" name="DocMint">` +
	`<a:themeElements>` +
	`<a:clrScheme name="DocMint">` +
	`<a:dk1><a:sysClr val="windowText" lastClr="000000"/></a:dk1>` +
	`<a:lt1><a:sysClr val="window" lastClr="FFFFFF"/></a:lt1>` +
	`<a:dk2><a:srgbClr val="1F2937"/></a:dk2>` +
	`<a:lt2><a:srgbClr val="F3F4F6"/></a:lt2>` +
	`<a:accent1><a:srgbClr val="059669"/></a:accent1>` +
	`<a:accent2><a:srgbClr val="2563EB"/></a:accent2>` +
	`<a:accent3><a:srgbClr val="D97706"/></a:accent3>` +
	`<a:accent4><a:srgbClr val="DC2626"/></a:accent4>` +
	`<a:accent5><a:srgbClr val="7C3AED"/></a:accent5>` +
	`<a:accent6><a:srgbClr val="0891B2"/></a:accent6>` +
	`<a:hlink><a:srgbClr val="2563EB"/></a:hlink>` +
	`<a:folHlink><a:srgbClr val="7C3AED"/></a:folHlink>` +
	`</a:clrScheme>` +
	`<a:fontScheme name="DocMint">` +
	`<a:majorFont><a:latin typeface="Calibri Light"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>` +
	`<a:minorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>` +
	`</a:fontScheme>` +
	`<a:fmtScheme name="DocMint">` +
	`<a:fillStyleLst>` + strings.Repeat(`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>`, 3) + `</a:fillStyleLst>` +
	`<a:lnStyleLst>` + strings.Repeat(`<a:ln w="9525"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln>`, 3) + `</a:lnStyleLst>` +
	`<a:effectStyleLst>` + strings.Repeat(`<a:effectStyle><a:effectLst/></a:effectStyle>`, 3) + `</a:effectStyleLst>` +
	`<a:bgFillStyleLst>` + strings.Repeat(`<a:solidFill><a:schemeClr val="phClr"/></a:solidFill>`, 3) + `</a:bgFillStyleLst>` +
	`</a:fmtScheme>` +
	`</a:themeElements>` +
	`</a:theme>`
