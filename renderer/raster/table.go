package raster

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/Luo-mary/fresco/layout"
)

// drawTable 在画布上绘制一个表格：先校验每行单元格数与列宽一致，
// 再按列宽前缀和求出各列左缘，逐格填充背景、描边并写入文字。
// 整表使用同一字体面。相邻单元格共享边框线，与逐格闭区间描边等价。
func (r *Renderer) drawTable(dst *image.NRGBA, box *layout.TableBox, res layout.ResourceSet) error {
	if len(box.ColumnWidths) == 0 || len(box.Rows) == 0 {
		return nil
	}
	for i, row := range box.Rows {
		if len(row.Cells) != len(box.ColumnWidths) {
			return &ColumnMismatchError{Row: i, Cells: len(row.Cells), Want: len(box.ColumnWidths)}
		}
	}

	// edges 比列数多 1，最后一项是表格右缘。
	edges := make([]int, len(box.ColumnWidths)+1)
	edges[0] = box.X
	for i, w := range box.ColumnWidths {
		edges[i+1] = edges[i] + w
	}

	face, err := r.fontFace(resolveFont(box.Style.Font, res.Fonts), box.Style.FontSize)
	if err != nil {
		return err
	}

	border := nrgba(box.Style.BorderColor)
	textColor := nrgba(box.Style.TextColor)
	for rIdx, row := range box.Rows {
		top := box.Y + rIdx*box.RowHeight
		bottom := top + box.RowHeight
		for cIdx, cell := range row.Cells {
			left := edges[cIdx]
			right := edges[cIdx+1]

			if row.IsHeader {
				fillRect(dst, left, top, right, bottom, nrgba(box.Style.HeaderFill))
			} else if len(box.Style.BodyFills) > 0 {
				fill := box.Style.BodyFills[cIdx%len(box.Style.BodyFills)]
				fillRect(dst, left, top, right, bottom, nrgba(fill))
			}
			strokeRect(dst, left, top, right, bottom, border)

			// 空单元格只保留背景与边框
			if cell == "" {
				continue
			}
			drawCellText(dst, face, cell, left, top, right, bottom, box.Style, textColor)
		}
	}
	return nil
}

// drawCellText 按对齐方式写入单元格文本并做垂直居中。超出内容宽度
// （列宽减去左右 Inset）的文本从末尾逐字符截断，不缩小字号。
func drawCellText(dst *image.NRGBA, face font.Face, content string, left, top, right, bottom int, style layout.TableStyle, col color.NRGBA) {
	limit := right - left - 2*style.Inset
	if limit <= 0 {
		return
	}
	text := truncateToWidth(content, face, limit)
	if text == "" {
		return
	}
	width := font.MeasureString(face, text).Ceil()

	x := left + style.Inset
	if strings.EqualFold(style.Align, "center") {
		x = left + (right-left-width)/2
	}

	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()
	baseline := top + (bottom-top-ascent-descent)/2 + ascent

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(text)
}

// truncateToWidth 去掉尾部字符直到测量宽度不超过 limit。
func truncateToWidth(s string, face font.Face, limit int) string {
	if font.MeasureString(face, s).Ceil() <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		if font.MeasureString(face, string(runes)).Ceil() <= limit {
			break
		}
	}
	return string(runes)
}

// resolveFont 与布局阶段相同的字体回退顺序：指定名 → Body → 任意 → 内置。
func resolveFont(name string, fonts map[string]layout.FontResource) layout.FontResource {
	if f, ok := fonts[name]; ok {
		return f
	}
	if f, ok := fonts["Body"]; ok {
		return f
	}
	for _, f := range fonts {
		return f
	}
	return layout.FontResource{Name: "Body", Src: "builtin:Go-Regular", IsBuiltin: true}
}

// fillRect 填充闭区间 [x0,x1]×[y0,y1] 矩形，含右缘与下缘。
func fillRect(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

// strokeRect 沿闭区间矩形画一像素宽边框。
func strokeRect(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	for x := x0; x <= x1; x++ {
		img.SetNRGBA(x, y0, c)
		img.SetNRGBA(x, y1, c)
	}
	for y := y0; y <= y1; y++ {
		img.SetNRGBA(x0, y, c)
		img.SetNRGBA(x1, y, c)
	}
}
