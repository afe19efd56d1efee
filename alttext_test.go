// Copyright © 2026, SAS Institute Inc., Cary, NC, USA.  All Rights Reserved.
// SPDX-License-Identifier: BSD-3-Clause

package remediate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sassoftware/pdf-remediate/graph"
	"github.com/sassoftware/pdf-remediate/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// figureDoc builds a one-page document holding a single figure painted as
// an extractable image through MCID 0.
func figureDoc(t *testing.T, figure graph.Dict) (*graph.MemDoc, graph.Ref) {
	t.Helper()
	doc := graph.NewMemDoc()
	pageRef := doc.AddPage(graph.Dict{})
	img := doc.AddImage([]byte{0x89, 0x50}, "image/png")
	figure["Pg"] = pageRef
	if _, ok := figure["K"]; !ok {
		figure["K"] = 0
	}
	doc.SetPageEvents(1, []graph.ContentEvent{
		{Kind: graph.EventBeginMarked, Tag: "Figure", MCID: 0},
		{Kind: graph.EventImage, Image: img, Width: 4, Height: 4},
		{Kind: graph.EventEndMarked},
	})
	tagDocument(doc, figure)
	return doc, img
}

func TestFixAltText_FigureFromExtractedImage(t *testing.T) {
	figure := graph.Dict{"S": graph.Name("Figure")}
	doc, _ := figureDoc(t, figure)

	descs := &fakeDescriptions{imageResp: "  A  photo of   the campus quad. "}
	rm := newTestRemediator(t, Collaborators{Descriptions: descs})

	figures, links := rm.fixAltText(context.Background(), doc, "test")
	assert.Equal(t, 1, figures)
	assert.Equal(t, 0, links)

	// Whitespace runs collapse before the text lands on the node.
	assert.Equal(t, "A photo of the campus quad.", figure["Alt"])
	require.Len(t, descs.imageReqs, 1)
	assert.Equal(t, "image/png", descs.imageReqs[0].MIME)
	assert.Equal(t, []byte{0x89, 0x50}, descs.imageReqs[0].Image)
}

func TestFixAltText_ServiceErrorFallsBack(t *testing.T) {
	figure := graph.Dict{"S": graph.Name("Figure")}
	doc, _ := figureDoc(t, figure)

	descs := &fakeDescriptions{imageErr: errors.New("model unavailable")}
	rm := newTestRemediator(t, Collaborators{Descriptions: descs})

	figures, _ := rm.fixAltText(context.Background(), doc, "test")
	assert.Equal(t, 1, figures)
	assert.Equal(t, descs.ImageFallback(), figure["Alt"])
}

func TestFixAltText_ResponseCapped(t *testing.T) {
	figure := graph.Dict{"S": graph.Name("Figure")}
	doc, _ := figureDoc(t, figure)

	descs := &fakeDescriptions{imageResp: strings.Repeat("word ", 200)}
	rm := newTestRemediator(t, Collaborators{Descriptions: descs})

	figures, _ := rm.fixAltText(context.Background(), doc, "test")
	require.Equal(t, 1, figures)

	alt := figure["Alt"].(string)
	assert.LessOrEqual(t, len([]rune(alt)), rm.opts.MaxAltTextRunes)
	assert.NotEmpty(t, alt)
}

func TestFixAltText_MeaningfulAltKept(t *testing.T) {
	figure := graph.Dict{"S": graph.Name("Figure"), "Alt": "Floor plan of the east wing"}
	doc, _ := figureDoc(t, figure)

	descs := &fakeDescriptions{imageResp: "should not be used"}
	rm := newTestRemediator(t, Collaborators{Descriptions: descs})

	figures, _ := rm.fixAltText(context.Background(), doc, "test")
	assert.Equal(t, 0, figures)
	assert.Equal(t, "Floor plan of the east wing", figure["Alt"])
	assert.Empty(t, descs.imageReqs)
}

func TestFixAltText_PlaceholderAltReplaced(t *testing.T) {
	tests := []string{"", "  ", "Image", "img", "PICTURE", "graphic"}
	for _, placeholder := range tests {
		t.Run("placeholder "+placeholder, func(t *testing.T) {
			figure := graph.Dict{"S": graph.Name("Figure"), "Alt": placeholder}
			doc, _ := figureDoc(t, figure)

			descs := &fakeDescriptions{imageResp: "A line chart of monthly visits."}
			rm := newTestRemediator(t, Collaborators{Descriptions: descs})

			figures, _ := rm.fixAltText(context.Background(), doc, "test")
			assert.Equal(t, 1, figures)
			assert.Equal(t, "A line chart of monthly visits.", figure["Alt"])
		})
	}
}

func TestFixAltText_RasterizeFallback(t *testing.T) {
	doc := graph.NewMemDoc()
	pageRef := doc.AddPage(graph.Dict{})
	doc.SetPath("/tmp/sample.pdf")

	// No content image matches the figure, so the page must be rendered.
	figure := graph.Dict{"S": graph.Name("Figure"), "Pg": pageRef}
	tagDocument(doc, figure)

	descs := &fakeDescriptions{imageResp: "A decorative border."}
	renderer := &fakeRenderer{width: 40, height: 40}
	rm := newTestRemediator(t, Collaborators{Descriptions: descs, Renderer: renderer})

	figures, _ := rm.fixAltText(context.Background(), doc, "test")
	require.Equal(t, 1, figures)

	assert.Equal(t, "/tmp/sample.pdf", renderer.openedPath)
	assert.Equal(t, rm.opts.RenderDPI, renderer.openedDPI)
	require.Len(t, descs.imageReqs, 1)
	assert.Equal(t, "image/png", descs.imageReqs[0].MIME)
	assert.True(t, strings.HasPrefix(string(descs.imageReqs[0].Image), "\x89PNG"))
}

func TestFixAltText_RenderedPageCached(t *testing.T) {
	doc := graph.NewMemDoc()
	pageRef := doc.AddPage(graph.Dict{})
	doc.SetPath("/tmp/sample.pdf")

	f1 := graph.Dict{"S": graph.Name("Figure"), "Pg": pageRef}
	f2 := graph.Dict{"S": graph.Name("Figure"), "Pg": pageRef}
	tagDocument(doc, f1, f2)

	renderer := &fakeRenderer{width: 20, height: 20}
	rm := newTestRemediator(t, Collaborators{
		Descriptions: &fakeDescriptions{imageResp: "Ornament."},
		Renderer:     renderer,
	})

	figures, _ := rm.fixAltText(context.Background(), doc, "test")
	assert.Equal(t, 2, figures)
	assert.Equal(t, 1, renderer.renders)
}

func TestFixAltText_NoImageNoRendererStillFixed(t *testing.T) {
	doc := graph.NewMemDoc()
	pageRef := doc.AddPage(graph.Dict{})
	figure := graph.Dict{"S": graph.Name("Figure"), "Pg": pageRef}
	tagDocument(doc, figure)

	descs := &fakeDescriptions{imageResp: "never reached"}
	rm := newTestRemediator(t, Collaborators{Descriptions: descs})

	figures, _ := rm.fixAltText(context.Background(), doc, "test")
	assert.Equal(t, 1, figures)
	// No image could be produced, so the service is skipped and the
	// fallback text applies.
	assert.Empty(t, descs.imageReqs)
	assert.Equal(t, descs.ImageFallback(), figure["Alt"])
}

func TestFixAltText_LinkVisibleTextAndContext(t *testing.T) {
	doc := graph.NewMemDoc()
	pageRef := doc.AddPage(graph.Dict{})

	annot := doc.Put(graph.Dict{
		"Subtype": graph.Name("Link"),
		"A":       graph.Dict{"S": graph.Name("URI"), "URI": "https://example.com/report"},
	})
	link := graph.Dict{"S": graph.Name("Link"), "Pg": pageRef, "K": graph.Array{
		graph.Dict{"Type": graph.Name("OBJR"), "Obj": annot},
		graph.Dict{"S": graph.Name("Span"), "ActualText": "click here"},
	}}
	before := graph.Dict{"S": graph.Name("P"), "ActualText": "See the full analysis:"}
	after := graph.Dict{"S": graph.Name("P"), "ActualText": "published last spring."}
	tagDocument(doc, before, link, after)

	descs := &fakeDescriptions{linkResp: "Full analysis report"}
	rm := newTestRemediator(t, Collaborators{Descriptions: descs})

	_, links := rm.fixAltText(context.Background(), doc, "test")
	require.Equal(t, 1, links)
	assert.Equal(t, "Full analysis report", link["Alt"])

	require.Len(t, descs.linkReqs, 1)
	req := descs.linkReqs[0]
	assert.Equal(t, "https://example.com/report", req.Target)
	assert.Equal(t, "click here", req.VisibleText)
	assert.Equal(t, "See the full analysis:", req.ContextBefore)
	assert.Equal(t, "published last spring.", req.ContextAfter)
}

func TestFixAltText_LinkServiceErrorFallsBack(t *testing.T) {
	doc := graph.NewMemDoc()
	pageRef := doc.AddPage(graph.Dict{})
	link := graph.Dict{"S": graph.Name("Link"), "Pg": pageRef}
	tagDocument(doc, link)

	descs := &fakeDescriptions{linkErr: errors.New("model unavailable")}
	rm := newTestRemediator(t, Collaborators{Descriptions: descs})

	_, links := rm.fixAltText(context.Background(), doc, "test")
	assert.Equal(t, 1, links)
	assert.Equal(t, descs.LinkFallback(), link["Alt"])
}

func TestFigureRect(t *testing.T) {
	doc := graph.NewMemDoc()
	bm, err := raster.NewBitmap(150, 200)
	require.NoError(t, err)

	tests := []struct {
		name string
		node graph.Dict
		want [4]int // x, y, w, h
	}{
		{
			name: "no bbox uses full page",
			node: graph.Dict{},
			want: [4]int{0, 0, 150, 200},
		},
		{
			name: "bbox scaled and flipped",
			node: graph.Dict{"A": graph.Dict{"BBox": graph.Array{0, 0, 36, 36}}},
			// 36pt at 72dpi is 36px, anchored to the bitmap bottom.
			want: [4]int{0, 164, 36, 36},
		},
		{
			name: "bbox clamped to page",
			node: graph.Dict{"A": graph.Dict{"BBox": graph.Array{-10, 0, 400, 36}}},
			want: [4]int{0, 164, 150, 36},
		},
		{
			name: "bbox in attribute array",
			node: graph.Dict{"A": graph.Array{
				graph.Dict{"O": graph.Name("Table")},
				graph.Dict{"O": graph.Name("Layout"), "BBox": graph.Array{0, 0, 36, 36}},
			}},
			want: [4]int{0, 164, 36, 36},
		},
		{
			name: "degenerate bbox ignored",
			node: graph.Dict{"A": graph.Dict{"BBox": graph.Array{50, 50, 50, 60}}},
			want: [4]int{0, 0, 150, 200},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := figureRect(doc, tt.node, bm, 72)
			assert.Equal(t, tt.want[0], r.X)
			assert.Equal(t, tt.want[1], r.Y)
			assert.Equal(t, tt.want[2], r.Width)
			assert.Equal(t, tt.want[3], r.Height)
		})
	}
}

func TestNormalizeAlt(t *testing.T) {
	rm := newTestRemediator(t, Collaborators{})
	assert.Equal(t, "a b c", rm.normalizeAlt("  a \n b\t\tc "))
	assert.Equal(t, "", rm.normalizeAlt("   "))

	long := strings.Repeat("é", rm.opts.MaxAltTextRunes+50)
	assert.Equal(t, rm.opts.MaxAltTextRunes, len([]rune(rm.normalizeAlt(long))))
}

func TestHasMeaningfulAlt(t *testing.T) {
	doc := graph.NewMemDoc()
	tests := []struct {
		name string
		alt  any
		want bool
	}{
		{name: "absent", alt: nil, want: false},
		{name: "blank", alt: "   ", want: false},
		{name: "placeholder", alt: "Figure", want: false},
		{name: "real text", alt: "Map of the trail network", want: true},
		{name: "wrong type", alt: 7, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := graph.Dict{"S": graph.Name("Figure")}
			if tt.alt != nil {
				node["Alt"] = tt.alt
			}
			assert.Equal(t, tt.want, hasMeaningfulAlt(doc, node))
		})
	}
}
