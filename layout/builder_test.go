package layout

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/Luo-mary/fresco/dsl"
)

// buildScene 是测试辅助：用给定场景文本与数据构建合成描述。
func buildScene(t *testing.T, sceneText string, data any, debugRaw bool) *Composition {
	t.Helper()
	scene, err := dsl.Parse(strings.NewReader(sceneText))
	if err != nil {
		t.Fatalf("解析场景失败: %v", err)
	}
	comp, err := Build(scene, data, BuildOptions{Debug: DebugOptions{RawUnits: debugRaw}})
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	return comp
}

func mustBuildErr(t *testing.T, sceneText string, data any) error {
	t.Helper()
	scene, err := dsl.Parse(strings.NewReader(sceneText))
	if err != nil {
		t.Fatalf("解析场景失败: %v", err)
	}
	_, err = Build(scene, data, BuildOptions{})
	if err == nil {
		t.Fatalf("期望构建失败，实际成功")
	}
	return err
}

func unmarshalDoc(t *testing.T, raw string) any {
	t.Helper()
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("解析数据失败: %v", err)
	}
	return doc
}

const promoScene = `
scene Promo v1 {
  meta {
    title: "Spring Promotion"
    author: "Marketing"
  }

  resources {
    font Body {
      src: "builtin:Go-Regular"
    }

    color sky = #accbf2
    color coral = #fd9965

    image logo {
      src: "images/front_image.png"
    }
  }

  canvas promo {
    gradient start sky end coral dir vertical
  }

  layers {
    flower x 80 y 80 scale 1.5
    flower x 612 y 80 scale 1.5
    image src "images/1.png" x 35 y 137 width 300 height 168
    image src "images/2.png" x 35 y 340 width 300 height 168
    image src "images/3.png" x 357 y 137 width 300 height 168
    image src "images/4.png" x 357 y 340 width 300 height 168
    image logo x 256 y -10 width 180 height 180 fit contain
    qr content "${promo.url}" x 537 y 820 size 120
  }

  table x 71 y 543 row-height 40 {
    widths: [200, 350]
    rows: data.table
  }
}
`

const promoData = `{
  "promo": {"url": "https://example.com/promo/spring"},
  "table": {
    "columns": ["项目", "说明"],
    "data": [
      ["日期", "4 月 1 日 - 4 月 30 日"],
      ["门店", "全国门店通用"]
    ]
  }
}`

// TestBuildPromoScene 覆盖完整促销场景：画布预设、图层顺序与表格绑定。
func TestBuildPromoScene(t *testing.T) {
	data := unmarshalDoc(t, promoData)
	comp := buildScene(t, promoScene, data, false)

	if comp.Canvas.Width != 692 || comp.Canvas.Height != 982 {
		t.Fatalf("promo 预设尺寸错误: %dx%d", comp.Canvas.Width, comp.Canvas.Height)
	}
	g := comp.Canvas.Gradient
	if g.Start != (Color{R: 0xAC, G: 0xCB, B: 0xF2}) || g.End != (Color{R: 0xFD, G: 0x99, B: 0x65}) {
		t.Fatalf("渐变颜色解析错误: %+v", g)
	}
	if g.Horizontal || g.Mode != "" {
		t.Fatalf("默认应为垂直线性渐变: %+v", g)
	}

	// 图层顺序必须与场景声明一致
	wantKinds := []string{
		LayerFlower, LayerFlower,
		LayerImage, LayerImage, LayerImage, LayerImage, LayerImage,
		LayerQR,
	}
	if len(comp.Layers) != len(wantKinds) {
		t.Fatalf("图层数量错误: got=%d want=%d", len(comp.Layers), len(wantKinds))
	}
	for i, kind := range wantKinds {
		if comp.Layers[i].Kind != kind {
			t.Fatalf("图层 %d 类型错误: got=%s want=%s", i, comp.Layers[i].Kind, kind)
		}
	}

	logo := comp.Layers[6].Image
	if logo == nil || logo.Name != "logo" || logo.Src != "images/front_image.png" {
		t.Fatalf("logo 图层未解析图片资源: %+v", logo)
	}
	if logo.X != 256 || logo.Y != -10 || logo.Fit != "contain" {
		t.Fatalf("logo 位置或 fit 错误: %+v", logo)
	}

	qr := comp.Layers[7].QR
	if qr == nil || qr.Content != "https://example.com/promo/spring" {
		t.Fatalf("qr content 未完成插值: %+v", qr)
	}
	if qr.Size != 120 {
		t.Fatalf("qr 尺寸错误: %+v", qr)
	}

	if len(comp.Tables) != 1 {
		t.Fatalf("期望 1 个表格，实际 %d", len(comp.Tables))
	}
	table := comp.Tables[0]
	if table.X != 71 || table.Y != 543 || table.RowHeight != 40 {
		t.Fatalf("表格位置错误: %+v", table)
	}
	if len(table.ColumnWidths) != 2 || table.ColumnWidths[0] != 200 || table.ColumnWidths[1] != 350 {
		t.Fatalf("表格列宽错误: %v", table.ColumnWidths)
	}
	if len(table.Rows) != 3 || !table.Rows[0].IsHeader {
		t.Fatalf("表头应来自数据文档 columns: %+v", table.Rows)
	}
	if table.Rows[0].Cells[0] != "项目" || table.Rows[2].Cells[1] != "全国门店通用" {
		t.Fatalf("表格单元格内容错误: %+v", table.Rows)
	}

	// 默认样式即促销模板配色
	st := table.Style
	if st.HeaderFill != (Color{R: 255, G: 215, B: 0}) {
		t.Fatalf("表头默认填充应为金色: %+v", st.HeaderFill)
	}
	if len(st.BodyFills) != 2 || st.BodyFills[0] != (Color{R: 230, G: 230, B: 250}) || st.BodyFills[1] != (Color{R: 152, G: 251, B: 152}) {
		t.Fatalf("正文默认填充错误: %+v", st.BodyFills)
	}
	if st.Font != "Body" || st.FontSize != 16 || st.Inset != 10 {
		t.Fatalf("表格文字默认样式错误: %+v", st)
	}

	if comp.Meta.Title != "Spring Promotion" || comp.Meta.Creator != "Fresco" {
		t.Fatalf("meta 解析错误: %+v", comp.Meta)
	}
	font, ok := comp.Resources.Fonts["Body"]
	if !ok || !font.IsBuiltin || font.Base != "Go-Regular" {
		t.Fatalf("内建字体解析错误: %+v", font)
	}
}

// TestCanvasCustomSize 验证 custom 预设与显式宽高覆盖。
func TestCanvasCustomSize(t *testing.T) {
	comp := buildScene(t, `scene S v1 {
  canvas custom width 100 height 50
  table x 0 y 0 { widths: [10] rows: [["a"]] }
}`, nil, false)
	if comp.Canvas.Width != 100 || comp.Canvas.Height != 50 {
		t.Fatalf("custom 画布尺寸错误: %dx%d", comp.Canvas.Width, comp.Canvas.Height)
	}

	err := mustBuildErr(t, `scene S v1 { canvas poster }`, nil)
	if !strings.Contains(err.Error(), "画布预设") {
		t.Fatalf("未知预设应报错: %v", err)
	}

	err = mustBuildErr(t, `scene S v1 { canvas custom width 100 }`, nil)
	if !strings.Contains(err.Error(), "画布尺寸无效") {
		t.Fatalf("缺少高度应报错: %v", err)
	}
}

// TestGradientModes 覆盖 mirror 模式与水平方向。
func TestGradientModes(t *testing.T) {
	comp := buildScene(t, `scene S v1 {
  canvas custom width 10 height 10 {
    gradient start #000000 end #ffffff dir horizontal mode mirror
  }
}`, nil, false)
	g := comp.Canvas.Gradient
	if !g.Horizontal || g.Mode != "mirror" {
		t.Fatalf("渐变参数解析错误: %+v", g)
	}

	err := mustBuildErr(t, `scene S v1 {
  canvas custom width 10 height 10 {
    gradient start #000 end #fff dir diagonal
  }
}`, nil)
	if !strings.Contains(err.Error(), "渐变方向") {
		t.Fatalf("非法方向应报错: %v", err)
	}
}

// TestTableInlineRows 验证内联行数据与 ${} 插值。
func TestTableInlineRows(t *testing.T) {
	data := unmarshalDoc(t, `{"price": "99"}`)
	comp := buildScene(t, `scene S v1 {
  canvas custom width 600 height 400
  table x 10 y 10 {
    widths: [100, 100]
    columns: ["项目", "价格"]
    rows: [
      ["特价", "¥${price}"]
    ]
  }
}`, data, false)

	table := comp.Tables[0]
	if len(table.Rows) != 2 {
		t.Fatalf("期望表头+1 行，实际 %d", len(table.Rows))
	}
	if table.Rows[1].Cells[1] != "¥99" {
		t.Fatalf("单元格插值失败: %+v", table.Rows[1])
	}
}

// TestTableBareRowsDocument 验证整份数据文档就是二维数组的场景。
func TestTableBareRowsDocument(t *testing.T) {
	data := unmarshalDoc(t, `[["A", "1"], ["B", "2"]]`)
	comp := buildScene(t, `scene S v1 {
  canvas custom width 600 height 400
  table x 0 y 0 { widths: [50, 50] rows: data }
}`, data, false)

	table := comp.Tables[0]
	if len(table.Rows) != 2 || table.Rows[0].IsHeader {
		t.Fatalf("裸数组不应产生表头: %+v", table.Rows)
	}
	if table.Rows[1].Cells[0] != "B" {
		t.Fatalf("行内容错误: %+v", table.Rows)
	}
}

// TestTableStyleReference 验证 style 资源合并到表格属性。
func TestTableStyleReference(t *testing.T) {
	comp := buildScene(t, `scene S v1 {
  resources {
    style base {
      row-height: 32
    }
    style fancy extends base {
      align: center
      size: 18px
    }
  }
  canvas custom width 600 height 400
  table fancy x 5 y 5 {
    widths: [100]
    rows: [["x"]]
  }
}`, nil, false)

	table := comp.Tables[0]
	if table.RowHeight != 32 {
		t.Fatalf("style 继承的 row-height 未生效: %+v", table)
	}
	if table.Style.Align != "center" || table.Style.FontSize != 18 {
		t.Fatalf("style 属性未生效: %+v", table.Style)
	}
}

// TestBuildErrors 覆盖常见场景错误。
func TestBuildErrors(t *testing.T) {
	// 缺少 canvas
	err := mustBuildErr(t, `scene S v1 { layers { flower x 1 y 1 } }`, nil)
	if !strings.Contains(err.Error(), "canvas") {
		t.Fatalf("缺少 canvas 应报错: %v", err)
	}

	// 未知图层命令
	err = mustBuildErr(t, `scene S v1 {
  canvas custom width 10 height 10
  layers { sticker x 1 y 1 }
}`, nil)
	if !strings.Contains(err.Error(), "未知图层命令") {
		t.Fatalf("未知图层命令应报错: %v", err)
	}

	// image 缺少 src
	err = mustBuildErr(t, `scene S v1 {
  canvas custom width 10 height 10
  layers { image x 1 y 1 }
}`, nil)
	if !strings.Contains(err.Error(), "src") {
		t.Fatalf("image 缺 src 应报错: %v", err)
	}

	// 引用未定义的图片资源
	err = mustBuildErr(t, `scene S v1 {
  canvas custom width 10 height 10
  layers { image ghost x 1 y 1 }
}`, nil)
	if !strings.Contains(err.Error(), "图片资源") {
		t.Fatalf("未定义图片资源应报错: %v", err)
	}

	// 表格缺少列宽
	err = mustBuildErr(t, `scene S v1 {
  canvas custom width 10 height 10
  table x 0 y 0 { rows: [["a"]] }
}`, nil)
	if !strings.Contains(err.Error(), "widths") {
		t.Fatalf("表格缺 widths 应报错: %v", err)
	}

	// 数据路径不存在
	err = mustBuildErr(t, `scene S v1 {
  canvas custom width 10 height 10
  table x 0 y 0 { widths: [10] rows: data.missing }
}`, unmarshalDoc(t, `{}`))
	if !strings.Contains(err.Error(), "数据路径") {
		t.Fatalf("数据路径缺失应报错: %v", err)
	}
}

// TestDebugRawUnitsOutput 验证开启 Debug.RawUnits 后输出 debug.rawUnits 影子字段。
func TestDebugRawUnitsOutput(t *testing.T) {
	comp := buildScene(t, `scene S v1 {
  canvas custom width 10 height 10
  table x 0 y 0 size 12pt { widths: [10] rows: [["a"]] }
}`, nil, true)
	table := comp.Tables[0]
	if table.Debug == nil || table.Debug.RawUnits == nil || table.Debug.RawUnits.FontSize == nil {
		t.Fatalf("缺少 debug.rawUnits.fontSize")
	}
	if table.Debug.RawUnits.FontSize.Unit != "pt" || table.Debug.RawUnits.FontSize.Value != 12 {
		t.Fatalf("字号应为 12pt，实际: %#v", table.Debug.RawUnits.FontSize)
	}
	// 12pt 在 72 DPI 下即 12px
	if table.Style.FontSize != 12 {
		t.Fatalf("12pt 应换算为 12px，实际: %g", table.Style.FontSize)
	}

	// 未显式指定字号时回落到默认值
	comp = buildScene(t, `scene S v1 {
  canvas custom width 10 height 10
  table x 0 y 0 { widths: [10] rows: [["a"]] }
}`, nil, true)
	table = comp.Tables[0]
	if table.Debug.RawUnits.FontSize.Unit != "px" || table.Debug.RawUnits.FontSize.Value != 16 {
		t.Fatalf("默认字号应为 16px，实际: %#v", table.Debug.RawUnits.FontSize)
	}
}
