package slides

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

type xmlPresentation struct {
	SlideIDs []struct {
		RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
	Size struct {
		CX int64 `xml:"cx,attr"`
		CY int64 `xml:"cy,attr"`
	} `xml:"sldSz"`
}

type xmlRelationships struct {
	Rels []struct {
		ID     string `xml:"Id,attr"`
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

type xmlSlide struct {
	CSld struct {
		SpTree struct {
			Shapes []xmlShape `xml:",any"`
		} `xml:"spTree"`
	} `xml:"cSld"`
}

type xmlXfrm struct {
	Off struct {
		X int64 `xml:"x,attr"`
		Y int64 `xml:"y,attr"`
	} `xml:"off"`
	Ext struct {
		CX int64 `xml:"cx,attr"`
		CY int64 `xml:"cy,attr"`
	} `xml:"ext"`
}

type xmlShape struct {
	XMLName xml.Name
	CNvPr   struct {
		Name string `xml:"name,attr"`
	} `xml:"nvSpPr>cNvPr"`
	Xfrm   *xmlXfrm `xml:"spPr>xfrm"`
	TxBody *struct {
		Paragraphs []struct {
			Items []struct {
				XMLName xml.Name
				T       string `xml:"t"`
			} `xml:",any"`
		} `xml:"p"`
	} `xml:"txBody"`
}

// Parse reads a PPTX package.
func Parse(data []byte) (*Deck, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pptx: %w", err)
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	var pres xmlPresentation
	if err := decodePart(files, "ppt/presentation.xml", &pres); err != nil {
		return nil, err
	}
	var rels xmlRelationships
	if err := decodePart(files, "ppt/_rels/presentation.xml.rels", &rels); err != nil {
		return nil, err
	}
	targets := make(map[string]string, len(rels.Rels))
	for _, r := range rels.Rels {
		targets[r.ID] = resolveTarget("ppt", r.Target)
	}

	deck := &Deck{Width: pres.Size.CX, Height: pres.Size.CY}
	if deck.Width <= 0 || deck.Height <= 0 {
		deck.Width, deck.Height = DefaultWidth, DefaultHeight
	}
	for i, id := range pres.SlideIDs {
		part, ok := targets[id.RID]
		if !ok {
			return nil, fmt.Errorf("slide %d: relationship %q not found", i+1, id.RID)
		}
		var xs xmlSlide
		if err := decodePart(files, part, &xs); err != nil {
			return nil, fmt.Errorf("slide %d: %w", i+1, err)
		}
		deck.Slides = append(deck.Slides, convertSlide(xs))
	}
	return deck, nil
}

func convertSlide(xs xmlSlide) Slide {
	var s Slide
	for _, x := range xs.CSld.SpTree.Shapes {
		kind, ok := shapeKind(x)
		if !ok {
			continue
		}
		sh := Shape{Kind: kind, Name: x.CNvPr.Name}
		if x.Xfrm != nil {
			sh.X, sh.Y = x.Xfrm.Off.X, x.Xfrm.Off.Y
			sh.CX, sh.CY = x.Xfrm.Ext.CX, x.Xfrm.Ext.CY
		}
		if kind == ShapeText {
			for _, p := range x.TxBody.Paragraphs {
				var b strings.Builder
				for _, it := range p.Items {
					switch it.XMLName.Local {
					case "r", "fld":
						b.WriteString(it.T)
					case "br":
						b.WriteString("\n")
					}
				}
				sh.Paragraphs = append(sh.Paragraphs, b.String())
			}
		}
		s.Shapes = append(s.Shapes, sh)
	}
	return s
}

// shapeKind classifies an spTree child. Group properties are not shapes.
func shapeKind(x xmlShape) (ShapeKind, bool) {
	switch x.XMLName.Local {
	case "nvGrpSpPr", "grpSpPr", "extLst":
		return 0, false
	case "sp":
		if x.TxBody != nil {
			return ShapeText, true
		}
		return ShapeOther, true
	case "pic":
		return ShapePicture, true
	case "graphicFrame":
		return ShapeGraphicFrame, true
	case "grpSp":
		return ShapeGroup, true
	case "cxnSp":
		return ShapeConnector, true
	}
	return ShapeOther, true
}

func decodePart(files map[string]*zip.File, name string, v any) error {
	f, ok := files[name]
	if !ok {
		return fmt.Errorf("%s not found in package", name)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := xml.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// resolveTarget turns a relationship target into a package part name.
func resolveTarget(base, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(base, target)
}
