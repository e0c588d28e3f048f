package raster

import (
	"image"
	"image/color"

	"github.com/Luo-mary/fresco/layout"
)

// NewCanvas 分配 width×height 的画布并铺满背景渐变。
// 默认 linear 模式按 t = i/(extent-1) 做逐行（或逐列）单调插值，
// extent 为 1 时取起始色；mode 为 mirror 时使用旧版镜像混合，
// 颜色在中点附近达到 End 后回落，不保证单调。
func NewCanvas(width, height int, spec layout.GradientSpec) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, &InvalidDimensionError{Width: width, Height: height}
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	fillGradient(img, spec)
	return img, nil
}

func fillGradient(img *image.NRGBA, spec layout.GradientSpec) {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if spec.Horizontal {
		for x := 0; x < w; x++ {
			c := GradientStop(spec, x, w)
			for y := 0; y < h; y++ {
				img.SetNRGBA(x, y, c)
			}
		}
		return
	}
	for y := 0; y < h; y++ {
		c := GradientStop(spec, y, h)
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

// GradientStop 计算第 i 个采样行（或列）的颜色，矢量后端按带复用同一算法。
func GradientStop(spec layout.GradientSpec, i, extent int) color.NRGBA {
	var t float64
	switch {
	case spec.Mode == "mirror":
		t = float64(i) / float64(extent) * 2
		if i > extent/2 {
			t = 2 - float64(i)/float64(extent)*2
		}
	case extent <= 1:
		t = 0
	default:
		t = float64(i) / float64(extent-1)
	}
	return lerpColor(spec.Start, spec.End, t)
}

// lerpColor 通道级线性插值，小数部分截断。
func lerpColor(a, b layout.Color, t float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(int(float64(a.R)*(1-t) + float64(b.R)*t)),
		G: uint8(int(float64(a.G)*(1-t) + float64(b.G)*t)),
		B: uint8(int(float64(a.B)*(1-t) + float64(b.B)*t)),
		A: 0xff,
	}
}

func nrgba(c layout.Color) color.NRGBA {
	return color.NRGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 0xff}
}
