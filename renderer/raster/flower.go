package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/Luo-mary/fresco/layout"
)

// flowerTile 在透明图块上画一朵花：petals 片花瓣圆绕花心均匀分布，
// 花瓣圆心距花心 10×scale、半径 30×scale，最后盖上花心圆。
// 返回图块与锚点偏移 half，调用方把图块贴到 (X-half, Y-half) 即可让
// (X, Y) 落在花心。
func flowerTile(l *layout.FlowerLayer) (*image.NRGBA, int) {
	scale := l.Scale
	if scale <= 0 {
		scale = 1
	}
	petals := l.Petals
	if petals <= 0 {
		petals = 5
	}
	inner := 10 * scale
	outer := 30 * scale

	half := int(math.Ceil(inner + outer))
	size := 2*half + 1
	tile := image.NewNRGBA(image.Rect(0, 0, size, size))

	cx := float64(half)
	cy := float64(half)
	petal := nrgba(l.PetalColor)
	for i := 0; i < petals; i++ {
		angle := float64(i) * (2 * math.Pi / float64(petals))
		px := cx + inner*math.Cos(angle)
		py := cy + inner*math.Sin(angle)
		fillCircle(tile, px, py, outer, petal)
	}
	fillCircle(tile, cx, cy, inner, nrgba(l.CenterColor))
	return tile, half
}

// fillCircle 填充实心圆，按整数网格点到圆心的距离判定归属。
func fillCircle(img *image.NRGBA, cx, cy, r float64, c color.NRGBA) {
	minX := int(math.Floor(cx - r))
	maxX := int(math.Ceil(cx + r))
	minY := int(math.Floor(cy - r))
	maxY := int(math.Ceil(cy + r))
	rr := r * r
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			dx := float64(x) - cx
			dy := float64(y) - cy
			if dx*dx+dy*dy <= rr {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}
