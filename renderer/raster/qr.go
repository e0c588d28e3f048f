package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/Luo-mary/fresco/layout"
)

// qrTile 为链接内容生成 Size×Size 的二维码图块。
func qrTile(l *layout.QRLayer) (image.Image, error) {
	size := l.Size
	if size <= 0 {
		size = 120
	}
	b, err := qrcode.Encode(l.Content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("生成二维码失败: %w", err)
	}
	img, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("解码二维码失败: %w", err)
	}
	return img, nil
}
