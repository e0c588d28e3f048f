package pdfrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/Luo-mary/fresco/fonts"
	"github.com/Luo-mary/fresco/layout"
	"github.com/Luo-mary/fresco/renderer"
	"github.com/Luo-mary/fresco/renderer/raster"
)

// 1px 在 72DPI 下等于 1pt，矢量输出时按此换算为毫米。
const pxToMm = layout.PtToMm

const tableBorderWidth = pxToMm

// Renderer draws compositions into a PDF via github.com/tdewolff/canvas.
type Renderer struct {
	baseDir string

	// injected resources
	fontBlobs  map[string][]byte // by unique name
	imageBlobs map[string][]byte // by unique name

	fontMu         sync.Mutex
	fontFamilies   map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
}

var _ renderer.Renderer = (*Renderer)(nil)

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// Options configures the PDF renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // built-in fonts accessible via built-in:<name>
	Images  map[string]Resource // built-in images accessible via built-in:<name>
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a PDF renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		fontBlobs:    map[string][]byte{},
		imageBlobs:   map[string][]byte{},
		fontFamilies: map[string]*fontFamilyEntry{},
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if data := res.data(); len(data) > 0 {
			r.fontBlobs[name] = data
		}
	}
	for name, res := range opts.Images {
		if name == "" {
			continue
		}
		if data := res.data(); len(data) > 0 {
			r.imageBlobs[name] = data
		}
	}
	return r
}

func (res Resource) data() []byte {
	if len(res.Bytes) > 0 {
		return res.Bytes
	}
	if res.Path != "" {
		data, _ := os.ReadFile(res.Path) // 读取失败时留空，实际引用处再报错
		return data
	}
	return nil
}

// Render renders the composition into a single-page PDF byte slice.
func (r *Renderer) Render(comp *layout.Composition) ([]byte, error) {
	if comp == nil {
		return nil, fmt.Errorf("合成描述为空")
	}
	if comp.Canvas.Width <= 0 || comp.Canvas.Height <= 0 {
		return nil, fmt.Errorf("画布尺寸无效：%dx%d", comp.Canvas.Width, comp.Canvas.Height)
	}

	widthMM := float64(comp.Canvas.Width) * pxToMm
	heightMM := float64(comp.Canvas.Height) * pxToMm

	var buf bytes.Buffer
	writer := pdf.New(&buf, widthMM, heightMM, nil)
	r.applyMeta(writer, comp.Meta)

	c := canvas.New(widthMM, heightMM)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与合成保持左上角为原点

	r.drawGradient(ctx, comp.Canvas)
	for i := range comp.Layers {
		if err := r.drawLayer(ctx, &comp.Layers[i]); err != nil {
			return nil, err
		}
	}
	for i := range comp.Tables {
		if err := r.drawTable(ctx, &comp.Tables[i], comp.Resources); err != nil {
			return nil, err
		}
	}
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.SceneMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// drawGradient 以 1px 高（或宽）的色带铺满页面，与位图后端共用同一插值。
func (r *Renderer) drawGradient(ctx *canvas.Context, spec layout.CanvasSpec) {
	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	if spec.Gradient.Horizontal {
		for x := 0; x < spec.Width; x++ {
			ctx.SetFillColor(raster.GradientStop(spec.Gradient, x, spec.Width))
			ctx.DrawPath(px(x), 0, canvas.Rectangle(pxToMm, float64(spec.Height)*pxToMm))
		}
		return
	}
	for y := 0; y < spec.Height; y++ {
		ctx.SetFillColor(raster.GradientStop(spec.Gradient, y, spec.Height))
		ctx.DrawPath(0, px(y), canvas.Rectangle(float64(spec.Width)*pxToMm, pxToMm))
	}
}

func (r *Renderer) drawLayer(ctx *canvas.Context, l *layout.Layer) error {
	switch l.Kind {
	case layout.LayerImage:
		return r.drawImageLayer(ctx, l.Image)
	case layout.LayerFlower:
		drawFlower(ctx, l.Flower)
		return nil
	case layout.LayerQR:
		return drawQR(ctx, l.QR)
	default:
		return fmt.Errorf("未知图层类型：%s", l.Kind)
	}
}

func (r *Renderer) drawImageLayer(ctx *canvas.Context, l *layout.ImageLayer) error {
	img, err := r.decodeImage(l.Src)
	if err != nil {
		return err
	}

	// 目标尺寸先换算成像素，再以固定密度绘制
	targetW := l.Width
	targetH := l.Height
	srcW := img.Bounds().Dx()
	srcH := img.Bounds().Dy()
	if srcW == 0 || srcH == 0 {
		return fmt.Errorf("图片 %s 为空", l.Src)
	}
	switch {
	case targetW > 0 && targetH > 0 && strings.EqualFold(l.Fit, "contain"):
		scale := math.Min(float64(targetW)/float64(srcW), float64(targetH)/float64(srcH))
		if scale > 1 {
			scale = 1 // contain 只缩不放
		}
		targetW = int(math.Round(float64(srcW) * scale))
		targetH = int(math.Round(float64(srcH) * scale))
	case targetW > 0 && targetH == 0:
		targetH = int(math.Round(float64(srcH) * float64(targetW) / float64(srcW)))
	case targetH > 0 && targetW == 0:
		targetW = int(math.Round(float64(srcW) * float64(targetH) / float64(srcH)))
	case targetW == 0 && targetH == 0:
		targetW = srcW
		targetH = srcH
	}
	if targetW <= 0 || targetH <= 0 {
		return fmt.Errorf("图片 %s 目标尺寸无效", l.Src)
	}

	dpmm := float64(srcW) / (float64(targetW) * pxToMm)
	if dpmm <= 0 {
		dpmm = 1
	}
	ctx.DrawImage(px(l.X), px(l.Y), img, canvas.DPMM(dpmm))
	return nil
}

func (r *Renderer) decodeImage(src string) (image.Image, error) {
	if src == "" {
		return nil, fmt.Errorf("图层缺少素材来源")
	}
	if strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		blob, ok := r.imageBlobs[name]
		if !ok {
			return nil, fmt.Errorf("找不到内置图片资源 built-in:%s", name)
		}
		img, _, err := image.Decode(bytes.NewReader(blob))
		if err != nil {
			return nil, fmt.Errorf("解码内置图片 built-in:%s 失败: %w", name, err)
		}
		return img, nil
	}
	path := src
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", src, err)
	}
	img, _, err := image.Decode(file)
	file.Close()
	if err != nil {
		return nil, fmt.Errorf("解码图片 %s 失败: %w", src, err)
	}
	return img, nil
}

// drawFlower 以矢量圆直接画花：花瓣圆绕花心均匀分布，最后盖花心圆。
func drawFlower(ctx *canvas.Context, l *layout.FlowerLayer) {
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
	cx := float64(l.X)
	cy := float64(l.Y)

	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	ctx.SetFillColor(colorFromLayout(l.PetalColor))
	for i := 0; i < petals; i++ {
		angle := float64(i) * (2 * math.Pi / float64(petals))
		pcx := cx + inner*math.Cos(angle)
		pcy := cy + inner*math.Sin(angle)
		ctx.DrawPath((pcx-outer)*pxToMm, (pcy-outer)*pxToMm, canvas.Circle(outer*pxToMm))
	}
	ctx.SetFillColor(colorFromLayout(l.CenterColor))
	ctx.DrawPath((cx-inner)*pxToMm, (cy-inner)*pxToMm, canvas.Circle(inner*pxToMm))
}

func drawQR(ctx *canvas.Context, l *layout.QRLayer) error {
	size := l.Size
	if size <= 0 {
		size = 120
	}
	b, err := qrcode.Encode(l.Content, qrcode.Medium, size)
	if err != nil {
		return fmt.Errorf("生成二维码失败: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("解码二维码失败: %w", err)
	}
	dpmm := float64(img.Bounds().Dx()) / (float64(size) * pxToMm)
	if dpmm <= 0 {
		dpmm = 1
	}
	ctx.DrawImage(px(l.X), px(l.Y), img, canvas.DPMM(dpmm))
	return nil
}

func (r *Renderer) drawTable(ctx *canvas.Context, box *layout.TableBox, res layout.ResourceSet) error {
	if len(box.ColumnWidths) == 0 || len(box.Rows) == 0 {
		return nil
	}
	for i, row := range box.Rows {
		if len(row.Cells) != len(box.ColumnWidths) {
			return fmt.Errorf("表格第 %d 行有 %d 个单元格，期望 %d 个", i, len(row.Cells), len(box.ColumnWidths))
		}
	}

	size := box.Style.FontSize
	if size <= 0 {
		size = 16
	}
	face, err := r.fontFace(resolveFontResource(box.Style.Font, res.Fonts), size, box.Style.TextColor)
	if err != nil {
		return err
	}
	metrics := face.Metrics()

	for rIdx, row := range box.Rows {
		top := float64(box.Y + rIdx*box.RowHeight)
		x := float64(box.X)
		for cIdx, cell := range row.Cells {
			colWidth := float64(box.ColumnWidths[cIdx])

			fill := color.RGBA{0, 0, 0, 0}
			if row.IsHeader {
				fill = colorFromLayout(box.Style.HeaderFill)
			} else if len(box.Style.BodyFills) > 0 {
				fill = colorFromLayout(box.Style.BodyFills[cIdx%len(box.Style.BodyFills)])
			}
			ctx.SetFillColor(fill)
			ctx.SetStrokeColor(colorFromLayout(box.Style.BorderColor))
			ctx.SetStrokeWidth(tableBorderWidth)
			ctx.DrawPath(x*pxToMm, top*pxToMm, canvas.Rectangle(colWidth*pxToMm, float64(box.RowHeight)*pxToMm))

			if cell != "" {
				text := truncate(cell, face, (colWidth-2*float64(box.Style.Inset))*pxToMm)
				if text != "" {
					textWidth := face.TextWidth(text)
					tx := (x + float64(box.Style.Inset)) * pxToMm
					if strings.EqualFold(box.Style.Align, "center") {
						tx = x*pxToMm + (colWidth*pxToMm-textWidth)/2
					}
					textHeight := metrics.Ascent + metrics.Descent
					baseline := top*pxToMm + (float64(box.RowHeight)*pxToMm-textHeight)/2 + metrics.Ascent
					ctx.DrawText(tx, baseline, canvas.NewTextLine(face, text, canvas.Left))
				}
			}
			x += colWidth
		}
	}
	return nil
}

// truncate 去掉尾部字符直到行宽（mm）不超过 limit。
func truncate(s string, face *canvas.FontFace, limit float64) string {
	if limit <= 0 {
		return ""
	}
	if face.TextWidth(s) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		if face.TextWidth(string(runes)) <= limit {
			break
		}
	}
	return string(runes)
}

func (r *Renderer) fontFace(font layout.FontResource, sizePx float64, col layout.Color) (*canvas.FontFace, error) {
	family, style, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	// 字号按 px=pt 传入 Face
	return family.Face(sizePx, colorFromLayout(col), style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontCacheKey(font)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if entry, ok := r.fontFamilies[key]; ok {
		return entry.family, entry.style, nil
	}

	style := parseFontStyle(font.Style)
	familyName := font.Family
	if familyName == "" {
		familyName = font.Name
	}
	if familyName == "" {
		familyName = "Body"
	}
	family := canvas.NewFontFamily(familyName)

	if err := r.loadFontIntoFamily(family, font, style); err != nil {
		fallback, fbStyle, fbErr := r.fallback()
		if fbErr != nil {
			return nil, canvas.FontRegular, err
		}
		r.fontFamilies[key] = &fontFamilyEntry{family: fallback, style: fbStyle}
		return fallback, fbStyle, nil
	}

	entry := &fontFamilyEntry{family: family, style: style}
	r.fontFamilies[key] = entry
	return family, style, nil
}

func (r *Renderer) loadFontIntoFamily(family *canvas.FontFamily, font layout.FontResource, style canvas.FontStyle) error {
	data, err := r.loadFontBytes(font)
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

func (r *Renderer) loadFontBytes(font layout.FontResource) ([]byte, error) {
	if font.Src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", font.Name)
	}
	src := font.Src
	if strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
		return fonts.Load(name)
	}
	path := src
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	return os.ReadFile(path)
}

func (r *Renderer) fallback() (*canvas.FontFamily, canvas.FontStyle, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, canvas.FontRegular, nil
	}
	data, err := fonts.Load("Go-Regular")
	if err != nil {
		return nil, canvas.FontRegular, err
	}
	family := canvas.NewFontFamily("fresco-fallback")
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, canvas.FontRegular, err
	}
	r.fallbackFamily = family
	return family, canvas.FontRegular, nil
}

func resolveFontResource(name string, fonts map[string]layout.FontResource) layout.FontResource {
	if font, ok := fonts[name]; ok {
		return font
	}
	if font, ok := fonts["Body"]; ok {
		return font
	}
	for _, font := range fonts {
		return font
	}
	return layout.FontResource{Name: "Body", Src: "builtin:Go-Regular", IsBuiltin: true}
}

func parseFontStyle(style string) canvas.FontStyle {
	if style == "" {
		return canvas.FontRegular
	}
	s := strings.ToLower(style)
	result := canvas.FontRegular
	switch {
	case strings.Contains(s, "black"):
		result = canvas.FontBlack
	case strings.Contains(s, "extrabold"):
		result = canvas.FontExtraBold
	case strings.Contains(s, "bold"):
		result = canvas.FontBold
	case strings.Contains(s, "semibold"), strings.Contains(s, "demibold"):
		result = canvas.FontSemiBold
	case strings.Contains(s, "medium"):
		result = canvas.FontMedium
	case strings.Contains(s, "light"):
		result = canvas.FontLight
	default:
		result = canvas.FontRegular
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") || strings.Contains(style, "I") {
		result |= canvas.FontItalic
	}
	if strings.Contains(style, "B") && !strings.Contains(s, "bold") {
		result = canvas.FontBold | (result & canvas.FontItalic)
	}
	return result
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s|%s", font.Name, font.Src, font.Style)
}

func colorFromLayout(c layout.Color) color.RGBA {
	return color.RGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 0xff}
}

// px 把像素坐标换算为毫米。
func px(v int) float64 { return float64(v) * pxToMm }
