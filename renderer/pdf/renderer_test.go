package pdfrenderer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Luo-mary/fresco/layout"
)

func sampleComposition() *layout.Composition {
	return &layout.Composition{
		Canvas: layout.CanvasSpec{
			Width:  120,
			Height: 90,
			Gradient: layout.GradientSpec{
				Start: layout.Color{R: 172, G: 203, B: 242},
				End:   layout.Color{R: 253, G: 153, B: 101},
			},
		},
		Layers: []layout.Layer{
			{Kind: layout.LayerFlower, Flower: &layout.FlowerLayer{
				X: 30, Y: 30, Scale: 0.5, Petals: 5,
				PetalColor:  layout.Color{R: 255, G: 192, B: 203},
				CenterColor: layout.Color{R: 255, G: 255, B: 0},
			}},
			{Kind: layout.LayerQR, QR: &layout.QRLayer{
				Content: "https://example.com", X: 70, Y: 10, Size: 40,
			}},
		},
		Tables: []layout.TableBox{{
			X:            10,
			Y:            60,
			ColumnWidths: []int{40, 60},
			RowHeight:    12,
			Rows: []layout.TableRow{
				{IsHeader: true, Cells: []string{"Item", "Notes"}},
				{Cells: []string{"Flowers", "Spring sale"}},
			},
			Style: layout.TableStyle{
				BorderColor: layout.Color{},
				HeaderFill:  layout.Color{R: 255, G: 215, B: 0},
				BodyFills:   []layout.Color{{R: 230, G: 230, B: 250}, {R: 152, G: 251, B: 152}},
				TextColor:   layout.Color{},
				Font:        "Body",
				FontSize:    8,
				Inset:       4,
			},
		}},
		Resources: layout.ResourceSet{
			Fonts: map[string]layout.FontResource{
				"Body": {Name: "Body", Src: "builtin:Go-Regular", Base: "Go-Regular", IsBuiltin: true},
			},
		},
		Meta: layout.SceneMeta{Title: "Spring Promotion", Author: "Marketing", Creator: "Fresco"},
	}
}

func TestRenderProducesPDF(t *testing.T) {
	r := NewRenderer(".")
	data, err := r.Render(sampleComposition())
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output should start with %%PDF, got %q", data[:min(8, len(data))])
	}
	if len(data) < 1000 {
		t.Fatalf("suspiciously small PDF: %d bytes", len(data))
	}
}

func TestRenderNilComposition(t *testing.T) {
	r := NewRenderer(".")
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("expected error for nil composition")
	}
}

func TestRenderRejectsBadCanvas(t *testing.T) {
	r := NewRenderer(".")
	comp := sampleComposition()
	comp.Canvas.Width = 0
	if _, err := r.Render(comp); err == nil {
		t.Fatalf("expected error for zero width")
	}
}

func TestRenderMissingAsset(t *testing.T) {
	r := NewRenderer(t.TempDir())
	comp := sampleComposition()
	comp.Layers = append(comp.Layers, layout.Layer{
		Kind:  layout.LayerImage,
		Image: &layout.ImageLayer{Src: "missing.png"},
	})
	_, err := r.Render(comp)
	if err == nil {
		t.Fatalf("expected error for missing asset")
	}
	if !strings.Contains(err.Error(), "missing.png") {
		t.Fatalf("error should name the asset: %v", err)
	}
}

func TestRenderColumnMismatch(t *testing.T) {
	r := NewRenderer(".")
	comp := sampleComposition()
	comp.Tables[0].Rows = append(comp.Tables[0].Rows, layout.TableRow{Cells: []string{"lonely"}})
	if _, err := r.Render(comp); err == nil {
		t.Fatalf("expected error for column mismatch")
	}
}

func TestTruncateByTextWidth(t *testing.T) {
	r := NewRenderer(".")
	face, err := r.fontFace(layout.FontResource{Name: "Body", Src: "builtin:Go-Regular"}, 8, layout.Color{})
	if err != nil {
		t.Fatalf("fontFace error: %v", err)
	}

	long := "a very long cell value that cannot possibly fit"
	got := truncate(long, face, 10)
	if got == long {
		t.Fatalf("expected truncation")
	}
	if face.TextWidth(got) > 10 {
		t.Fatalf("truncated text still too wide: %g", face.TextWidth(got))
	}
	if truncate("ok", face, 100) != "ok" {
		t.Fatalf("short text must pass through")
	}
}
