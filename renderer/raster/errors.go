package raster

import (
	"errors"
	"fmt"
)

// 渲染管线的失败类型。任何一处失败都立即终止本次渲染，
// 不重试，也不写出部分结果。

var (
	errMissingSource  = errors.New("缺少素材来源")
	errUnknownBuiltin = errors.New("未注册的内置资源")
)

// InvalidDimensionError 表示画布宽高不合法。
type InvalidDimensionError struct {
	Width  int
	Height int
}

func (e *InvalidDimensionError) Error() string {
	return fmt.Sprintf("画布尺寸无效：%dx%d", e.Width, e.Height)
}

// AssetLoadError 表示图层素材无法读取或解码。
type AssetLoadError struct {
	Path string
	Err  error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("读取图层素材 %s 失败: %v", e.Path, e.Err)
}

func (e *AssetLoadError) Unwrap() error { return e.Err }

// ColumnMismatchError 表示表格某行的单元格数与列宽定义不一致。
type ColumnMismatchError struct {
	Row   int // 行下标，含表头行，自 0 起
	Cells int
	Want  int
}

func (e *ColumnMismatchError) Error() string {
	return fmt.Sprintf("表格第 %d 行有 %d 个单元格，期望 %d 个", e.Row, e.Cells, e.Want)
}

// WriteError 表示输出文件写入失败。
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("写入输出文件 %s 失败: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
