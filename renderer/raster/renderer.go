package raster

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"github.com/Luo-mary/fresco/fonts"
	"github.com/Luo-mary/fresco/layout"
	"github.com/Luo-mary/fresco/renderer"
)

// Renderer 将 Composition 逐层合成为位图并编码为 PNG。
// 单次 Render 内画布只被当前调用独占，素材逐个打开、解码、释放。
type Renderer struct {
	baseDir string

	// injected resources
	fontBlobs  map[string][]byte // by unique name
	imageBlobs map[string][]byte // by unique name

	fontMu sync.Mutex
	faces  map[string]font.Face
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the raster renderer.
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

// NewRenderer creates a raster renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:    opts.BaseDir,
		fontBlobs:  map[string][]byte{},
		imageBlobs: map[string][]byte{},
		faces:      map[string]font.Face{},
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

// Render 顺序执行合成：先铺渐变画布，再按 Layers 次序逐个贴图层，
// 最后绘制表格，并在内存中编码为 PNG 返回。
func (r *Renderer) Render(comp *layout.Composition) ([]byte, error) {
	if comp == nil {
		return nil, fmt.Errorf("合成描述为空")
	}
	canvas, err := NewCanvas(comp.Canvas.Width, comp.Canvas.Height, comp.Canvas.Gradient)
	if err != nil {
		return nil, err
	}
	for i := range comp.Layers {
		canvas, err = r.drawLayer(canvas, &comp.Layers[i])
		if err != nil {
			return nil, err
		}
	}
	for i := range comp.Tables {
		if err := r.drawTable(canvas, &comp.Tables[i], comp.Resources); err != nil {
			return nil, err
		}
	}
	return EncodePNG(canvas)
}

func (r *Renderer) drawLayer(canvas *image.NRGBA, l *layout.Layer) (*image.NRGBA, error) {
	switch l.Kind {
	case layout.LayerImage:
		img, err := r.loadImageLayer(l.Image)
		if err != nil {
			return nil, err
		}
		return Composite(canvas, img, l.Image.X, l.Image.Y), nil
	case layout.LayerFlower:
		tile, half := flowerTile(l.Flower)
		return Composite(canvas, tile, l.Flower.X-half, l.Flower.Y-half), nil
	case layout.LayerQR:
		tile, err := qrTile(l.QR)
		if err != nil {
			return nil, err
		}
		return Composite(canvas, tile, l.QR.X, l.QR.Y), nil
	default:
		return nil, fmt.Errorf("未知图层类型：%s", l.Kind)
	}
}

// fontFace 构建或复用指定字号的字体面，整张表格共用一个。
func (r *Renderer) fontFace(res layout.FontResource, size float64) (font.Face, error) {
	if size <= 0 {
		size = 16
	}
	key := fontCacheKey(res, size)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if face, ok := r.faces[key]; ok {
		return face, nil
	}

	data, err := r.loadFontBytes(res)
	if err != nil {
		return nil, err
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", res.Name, err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     layout.DefaultDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("创建字体面 %s 失败: %w", res.Name, err)
	}
	r.faces[key] = face
	return face, nil
}

func (r *Renderer) loadFontBytes(res layout.FontResource) ([]byte, error) {
	if res.Src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", res.Name)
	}
	src := res.Src
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
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}

func fontCacheKey(res layout.FontResource, size float64) string {
	return fmt.Sprintf("%s|%s|%.2f", res.Name, res.Src, size)
}
