package raster

import (
	"bytes"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/Luo-mary/fresco/layout"
)

// Composite 将 src 以左上角锚点 (x, y) 按 src-over 规则混合到 dst 上，
// 超出画布的像素静默裁剪，后画的图层覆盖先画的。返回混合后的画布。
func Composite(dst *image.NRGBA, src image.Image, x, y int) *image.NRGBA {
	return imaging.Overlay(dst, src, image.Pt(x, y), 1.0)
}

// loadImageLayer 解码图层素材并按目标尺寸缩放，全程统一使用双线性滤波。
// Fit 为 contain 时保持纵横比缩入 Width×Height 包围盒（只缩不放），
// 否则拉伸到给定尺寸；宽或高为 0 表示按另一边等比推算、都为 0 保持原图。
func (r *Renderer) loadImageLayer(l *layout.ImageLayer) (image.Image, error) {
	img, err := r.decodeImage(l.Src)
	if err != nil {
		return nil, err
	}
	switch {
	case l.Width > 0 && l.Height > 0 && strings.EqualFold(l.Fit, "contain"):
		img = imaging.Fit(img, l.Width, l.Height, imaging.Linear)
	case l.Width > 0 || l.Height > 0:
		img = imaging.Resize(img, l.Width, l.Height, imaging.Linear)
	}
	return img, nil
}

// decodeImage 按来源读取素材：built-in:/builtin: 前缀查注入的资源表，
// 其余按 baseDir 相对路径（或绝对路径）从文件系统解码。
func (r *Renderer) decodeImage(src string) (image.Image, error) {
	if src == "" {
		return nil, &AssetLoadError{Path: src, Err: errMissingSource}
	}
	if strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		blob, ok := r.imageBlobs[name]
		if !ok {
			return nil, &AssetLoadError{Path: src, Err: errUnknownBuiltin}
		}
		img, err := imaging.Decode(bytes.NewReader(blob))
		if err != nil {
			return nil, &AssetLoadError{Path: src, Err: err}
		}
		return img, nil
	}
	path := src
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, &AssetLoadError{Path: src, Err: err}
	}
	return img, nil
}
