package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// DefaultOutputName 是输出路径为目录时采用的默认文件名。
const DefaultOutputName = "gradient_flowers_composite_image.png"

// EncodePNG 在内存中完成无损 PNG 编码。
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile 把编码完成的字节一次性写入 path，失败时返回 WriteError。
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// ResolveOutputPath 解析输出位置：path 为空、指向已有目录或以路径
// 分隔符结尾时，返回目录下的默认文件名。
func ResolveOutputPath(path string) string {
	if path == "" {
		return DefaultOutputName
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, DefaultOutputName)
	}
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(os.PathSeparator)) {
		return filepath.Join(path, DefaultOutputName)
	}
	return path
}
