package raster

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/Luo-mary/fresco/layout"
)

var (
	black = layout.Color{R: 0, G: 0, B: 0}
	white = layout.Color{R: 255, G: 255, B: 255}
)

// pixelAt 统一转成 NRGBA 再比较，PNG 解码结果可能是 RGBA 或 NRGBA。
func pixelAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestGradientEndpointsAndMonotonic(t *testing.T) {
	canvas, err := NewCanvas(100, 1, layout.GradientSpec{Start: black, End: white, Horizontal: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := pixelAt(canvas, 0, 0); got != (color.NRGBA{0, 0, 0, 255}) {
		t.Fatalf("first pixel should be start color, got %+v", got)
	}
	if got := pixelAt(canvas, 99, 0); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Fatalf("last pixel should be end color, got %+v", got)
	}

	// 各通道沿渐变方向单调不减
	prev := pixelAt(canvas, 0, 0)
	for x := 1; x < 100; x++ {
		cur := pixelAt(canvas, x, 0)
		if cur.R < prev.R || cur.G < prev.G || cur.B < prev.B {
			t.Fatalf("gradient not monotonic at x=%d: %+v -> %+v", x, prev, cur)
		}
		prev = cur
	}
}

func TestGradientVerticalUniformRows(t *testing.T) {
	start := layout.Color{R: 10, G: 20, B: 30}
	end := layout.Color{R: 200, G: 100, B: 0}
	canvas, err := NewCanvas(3, 50, layout.GradientSpec{Start: start, End: end})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := pixelAt(canvas, 0, 0); got != (color.NRGBA{10, 20, 30, 255}) {
		t.Fatalf("top row should be start color, got %+v", got)
	}
	if got := pixelAt(canvas, 0, 49); got != (color.NRGBA{200, 100, 0, 255}) {
		t.Fatalf("bottom row should be end color, got %+v", got)
	}
	// 同一行内颜色一致
	for y := 0; y < 50; y += 7 {
		left := pixelAt(canvas, 0, y)
		right := pixelAt(canvas, 2, y)
		if left != right {
			t.Fatalf("row %d not uniform: %+v vs %+v", y, left, right)
		}
	}
}

// TestGradientSingleExtent 验证 extent 为 1 时整行取起始色。
func TestGradientSingleExtent(t *testing.T) {
	start := layout.Color{R: 255, G: 0, B: 0}
	end := layout.Color{R: 0, G: 0, B: 255}
	canvas, err := NewCanvas(5, 1, layout.GradientSpec{Start: start, End: end})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for x := 0; x < 5; x++ {
		if got := pixelAt(canvas, x, 0); got != (color.NRGBA{255, 0, 0, 255}) {
			t.Fatalf("extent-1 canvas should keep start color at x=%d, got %+v", x, got)
		}
	}
}

// TestGradientMirrorMode 验证旧版镜像混合：中点达到终止色后回落，
// 末行接近起始色，因此不满足单调性。
func TestGradientMirrorMode(t *testing.T) {
	canvas, err := NewCanvas(1, 100, layout.GradientSpec{Start: black, End: white, Mode: "mirror"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := pixelAt(canvas, 0, 0); got != (color.NRGBA{0, 0, 0, 255}) {
		t.Fatalf("mirror start should be start color, got %+v", got)
	}
	if got := pixelAt(canvas, 0, 50); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Fatalf("mirror midpoint should reach end color, got %+v", got)
	}
	last := pixelAt(canvas, 0, 99)
	if last.R > 10 {
		t.Fatalf("mirror tail should fall back towards start color, got %+v", last)
	}
}

func TestNewCanvasRejectsBadDimensions(t *testing.T) {
	cases := []struct {
		w, h int
	}{
		{0, 10},
		{10, 0},
		{-1, 10},
		{10, -5},
	}
	for _, tc := range cases {
		_, err := NewCanvas(tc.w, tc.h, layout.GradientSpec{Start: white, End: white})
		if err == nil {
			t.Fatalf("expected error for %dx%d", tc.w, tc.h)
		}
		var dimErr *InvalidDimensionError
		if !errors.As(err, &dimErr) {
			t.Fatalf("expected InvalidDimensionError, got %T", err)
		}
		if dimErr.Width != tc.w || dimErr.Height != tc.h {
			t.Fatalf("error should carry dimensions, got %+v", dimErr)
		}
	}
}
