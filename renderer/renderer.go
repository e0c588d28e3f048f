package renderer

import "github.com/Luo-mary/fresco/layout"

// Renderer 将合成描述输出为最终文件字节，例如 PNG 或 PDF。
// Render 返回编码完成的二进制数据以及可能的错误；写盘由调用方负责，
// 这样失败时不会留下半成品文件。
type Renderer interface {
	Render(comp *layout.Composition) ([]byte, error)
}
