package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Luo-mary/fresco/binding"
	"github.com/Luo-mary/fresco/dsl"
)

// 画布预设尺寸（像素），promo 即竖版促销图。
var canvasPresets = map[string][2]int{
	"promo":  {692, 982},
	"square": {1080, 1080},
	"banner": {1200, 628},
}

// 表格与花朵的默认外观，与既有促销模板保持一致。
var (
	defaultBorderColor = Color{R: 0, G: 0, B: 0}
	defaultHeaderFill  = Color{R: 255, G: 215, B: 0} // #FFD700
	defaultBodyFills   = []Color{
		{R: 230, G: 230, B: 250}, // #E6E6FA
		{R: 152, G: 251, B: 152}, // #98FB98
	}
	defaultTextColor   = Color{R: 0, G: 0, B: 0}
	defaultPetalColor  = Color{R: 255, G: 192, B: 203}
	defaultCenterColor = Color{R: 255, G: 255, B: 0}
)

const (
	defaultRowHeight = 40
	defaultFontSize  = 16
	defaultCellInset = 10
	defaultQRSize    = 120
	defaultPetals    = 5
)

// Build 根据场景 AST 与外部数据生成可交给渲染器的合成描述。
// Layers 按场景中出现的顺序收集，顺序即合成顺序。
func Build(scene *dsl.Scene, data any, opts BuildOptions) (*Composition, error) {
	if scene == nil {
		return nil, fmt.Errorf("场景为空")
	}

	res, err := collectResources(scene)
	if err != nil {
		return nil, err
	}
	meta := collectMeta(scene)

	canvasSection := firstCanvas(scene)
	if canvasSection == nil {
		return nil, fmt.Errorf("场景中缺少 canvas 段落")
	}
	canvas, err := buildCanvas(canvasSection, res, opts)
	if err != nil {
		return nil, err
	}

	var layers []Layer
	var tables []TableBox
	for _, section := range scene.Sections {
		switch {
		case section.Layers != nil:
			built, err := buildLayers(section.Layers, res, data, opts)
			if err != nil {
				return nil, err
			}
			layers = append(layers, built...)
		case section.Table != nil:
			table, err := buildTable(section.Table, res, data, opts)
			if err != nil {
				return nil, err
			}
			tables = append(tables, table)
		}
	}

	return &Composition{
		Canvas:    canvas,
		Layers:    layers,
		Tables:    tables,
		Resources: res,
		Meta:      meta,
	}, nil
}

func buildCanvas(section *dsl.CanvasSection, res ResourceSet, opts BuildOptions) (CanvasSpec, error) {
	width, height, err := resolveCanvasSize(section.Spec, opts)
	if err != nil {
		return CanvasSpec{}, err
	}

	spec := CanvasSpec{
		Width:  width,
		Height: height,
		// 未声明 gradient 时退化为纯白背景
		Gradient: GradientSpec{
			Start: Color{R: 255, G: 255, B: 255},
			End:   Color{R: 255, G: 255, B: 255},
		},
	}
	if section.Block == nil {
		return spec, nil
	}

	for _, stmt := range section.Block.Statements {
		if stmt.Command == nil {
			continue
		}
		cmd := stmt.Command
		if cmd.Name != "gradient" {
			return CanvasSpec{}, fmt.Errorf("canvas 段落不支持命令：%s (第 %d 行)", cmd.Name, cmd.Pos.Line)
		}
		_, attrs := parseArgs(cmd.Args, false)
		if v := attrs["start"]; v != "" {
			spec.Gradient.Start = resolveColor(v, res)
		}
		if v := attrs["end"]; v != "" {
			spec.Gradient.End = resolveColor(v, res)
		}
		switch strings.ToLower(attrs["dir"]) {
		case "", "vertical", "v":
			spec.Gradient.Horizontal = false
		case "horizontal", "h":
			spec.Gradient.Horizontal = true
		default:
			return CanvasSpec{}, fmt.Errorf("未知渐变方向：%s (第 %d 行)", attrs["dir"], cmd.Pos.Line)
		}
		switch strings.ToLower(attrs["mode"]) {
		case "", "linear":
			spec.Gradient.Mode = ""
		case "mirror":
			spec.Gradient.Mode = "mirror"
		default:
			return CanvasSpec{}, fmt.Errorf("未知渐变模式：%s (第 %d 行)", attrs["mode"], cmd.Pos.Line)
		}
	}
	return spec, nil
}

func resolveCanvasSize(spec dsl.CanvasSpec, opts BuildOptions) (int, int, error) {
	var width, height int
	if base, ok := canvasPresets[strings.ToLower(spec.Preset)]; ok {
		width, height = base[0], base[1]
	} else if !strings.EqualFold(spec.Preset, "custom") {
		return 0, 0, fmt.Errorf("暂不支持的画布预设：%s", spec.Preset)
	}

	_, attrs := parseArgs(spec.Params, false)
	if v := attrs["width"]; v != "" {
		width = parsePx(v, opts.DPI)
	}
	if v := attrs["height"]; v != "" {
		height = parsePx(v, opts.DPI)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("画布尺寸无效：%dx%d", width, height)
	}
	return width, height, nil
}

// buildLayers 依次处理 layers 段落内的命令，支持 image、flower、qr。
func buildLayers(section *dsl.LayersSection, res ResourceSet, data any, opts BuildOptions) ([]Layer, error) {
	if section.Block == nil {
		return nil, nil
	}
	layers := make([]Layer, 0, len(section.Block.Statements))
	for _, stmt := range section.Block.Statements {
		if stmt.Command == nil {
			continue
		}
		cmd := stmt.Command
		switch cmd.Name {
		case "image":
			layer, err := buildImageLayer(cmd, res, opts)
			if err != nil {
				return nil, err
			}
			layers = append(layers, Layer{Kind: LayerImage, Image: layer})
		case "flower":
			layer, err := buildFlowerLayer(cmd, res, opts)
			if err != nil {
				return nil, err
			}
			layers = append(layers, Layer{Kind: LayerFlower, Flower: layer})
		case "qr":
			layer, err := buildQRLayer(cmd, data, opts)
			if err != nil {
				return nil, err
			}
			layers = append(layers, Layer{Kind: LayerQR, QR: layer})
		default:
			return nil, fmt.Errorf("未知图层命令：%s (第 %d 行)", cmd.Name, cmd.Pos.Line)
		}
	}
	return layers, nil
}

func buildImageLayer(cmd *dsl.Command, res ResourceSet, opts BuildOptions) (*ImageLayer, error) {
	name, attrs := parseArgs(cmd.Args, true)
	layer := &ImageLayer{Name: name}
	if name != "" {
		img, ok := res.Images[name]
		if !ok {
			return nil, fmt.Errorf("图片资源 %s 未定义 (第 %d 行)", name, cmd.Pos.Line)
		}
		layer.Src = img.Src
	}
	if v := attrs["src"]; v != "" {
		layer.Src = v
	}
	if layer.Src == "" {
		return nil, fmt.Errorf("image 缺少 src (第 %d 行)", cmd.Pos.Line)
	}

	layer.X = parsePx(attrs["x"], opts.DPI)
	layer.Y = parsePx(attrs["y"], opts.DPI)
	layer.Width = parsePx(attrs["width"], opts.DPI)
	layer.Height = parsePx(attrs["height"], opts.DPI)
	switch strings.ToLower(attrs["fit"]) {
	case "", "stretch":
		layer.Fit = ""
	case "contain":
		layer.Fit = "contain"
	default:
		return nil, fmt.Errorf("未知 fit 模式：%s (第 %d 行)", attrs["fit"], cmd.Pos.Line)
	}
	return layer, nil
}

func buildFlowerLayer(cmd *dsl.Command, res ResourceSet, opts BuildOptions) (*FlowerLayer, error) {
	_, attrs := parseArgs(cmd.Args, false)
	layer := &FlowerLayer{
		X:           parsePx(attrs["x"], opts.DPI),
		Y:           parsePx(attrs["y"], opts.DPI),
		Scale:       1,
		Petals:      defaultPetals,
		PetalColor:  defaultPetalColor,
		CenterColor: defaultCenterColor,
	}
	if v := attrs["scale"]; v != "" {
		layer.Scale = parseScale(v)
		if layer.Scale <= 0 {
			return nil, fmt.Errorf("flower 缩放无效：%s (第 %d 行)", v, cmd.Pos.Line)
		}
	}
	if v := attrs["petals"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("flower 花瓣数无效：%s (第 %d 行)", v, cmd.Pos.Line)
		}
		layer.Petals = n
	}
	if v := attrs["petal-color"]; v != "" {
		layer.PetalColor = resolveColor(v, res)
	}
	if v := attrs["center-color"]; v != "" {
		layer.CenterColor = resolveColor(v, res)
	}
	return layer, nil
}

func buildQRLayer(cmd *dsl.Command, data any, opts BuildOptions) (*QRLayer, error) {
	_, attrs := parseArgs(cmd.Args, false)
	content := attrs["content"]
	if data != nil {
		content = binding.Interpolate(content, data)
	}
	if content == "" {
		return nil, fmt.Errorf("qr 缺少 content (第 %d 行)", cmd.Pos.Line)
	}

	layer := &QRLayer{
		Content: content,
		X:       parsePx(attrs["x"], opts.DPI),
		Y:       parsePx(attrs["y"], opts.DPI),
		Size:    defaultQRSize,
	}
	if v := attrs["size"]; v != "" {
		layer.Size = parsePx(v, opts.DPI)
		if layer.Size <= 0 {
			return nil, fmt.Errorf("qr 尺寸无效：%s (第 %d 行)", v, cmd.Pos.Line)
		}
	}
	return layer, nil
}

// buildTable 解析 table 段落：参数与 style 提供标量样式，块内赋值提供
// 列宽、表头与行数据。行数据可以内联，也可以通过 data.* 路径指向外部 JSON。
func buildTable(section *dsl.TableSection, res ResourceSet, data any, opts BuildOptions) (TableBox, error) {
	styleName, attrs := parseArgs(section.Args, true)
	attrs = mergeStyleAttributes(styleName, attrs, res.Styles)

	box := TableBox{
		RowHeight: defaultRowHeight,
		Style: TableStyle{
			BorderColor: defaultBorderColor,
			HeaderFill:  defaultHeaderFill,
			BodyFills:   append([]Color(nil), defaultBodyFills...),
			TextColor:   defaultTextColor,
			Font:        "Body",
			FontSize:    defaultFontSize,
			Inset:       defaultCellInset,
		},
	}

	rawSize := ""
	for key, val := range attrs {
		if key == "size" {
			rawSize = val
		}
		applyTableAttr(&box, key, val, res, opts.DPI)
	}

	var columns []string
	var rows [][]string
	if section.Block != nil {
		for _, stmt := range section.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			key := stmt.Assignment.Key
			val := stmt.Assignment.Value
			switch key {
			case "widths":
				widths, err := widthsFromValue(val, opts.DPI)
				if err != nil {
					return TableBox{}, err
				}
				box.ColumnWidths = widths
			case "columns":
				columns = cellsFromValue(val)
			case "rows":
				r, c, err := rowsFromValue(val, data)
				if err != nil {
					return TableBox{}, err
				}
				rows = r
				if columns == nil && c != nil {
					columns = c
				}
			case "body-fills":
				box.Style.BodyFills = colorsFromValue(val, res)
			default:
				if key == "size" {
					rawSize = valueToString(val)
				}
				applyTableAttr(&box, key, valueToString(val), res, opts.DPI)
			}
		}
	}

	if len(box.ColumnWidths) == 0 {
		return TableBox{}, fmt.Errorf("表格缺少 widths 定义")
	}
	switch box.Style.Align {
	case "", "left", "center":
	default:
		return TableBox{}, fmt.Errorf("表格对齐方式无效：%s", box.Style.Align)
	}

	// 单元格文本支持 ${} 插值
	if data != nil {
		for i, c := range columns {
			columns[i] = binding.Interpolate(c, data)
		}
		for _, row := range rows {
			for j, cell := range row {
				row[j] = binding.Interpolate(cell, data)
			}
		}
	}

	if len(columns) > 0 {
		box.Rows = append(box.Rows, TableRow{IsHeader: true, Cells: columns})
	}
	for _, r := range rows {
		box.Rows = append(box.Rows, TableRow{Cells: r})
	}

	// 将字体名归一化为实际存在的资源名，渲染阶段直接查表
	font, err := resolveFontResource(box.Style.Font, res)
	if err != nil {
		return TableBox{}, err
	}
	box.Style.Font = font.Name

	if opts.Debug.RawUnits {
		var sizeRaw RawLengthJSON
		szSpec := ParseLengthStr(rawSize) // preserve original unit
		if szSpec.Unit == UnitNone && szSpec.Value <= 0 {
			sizeRaw = RawLengthJSON{Value: defaultFontSize, Unit: "px"}
		} else {
			unit := UnitToString(szSpec.Unit)
			if unit == "" {
				unit = "px"
			}
			sizeRaw = RawLengthJSON{Value: szSpec.Value, Unit: unit}
		}
		box.Debug = &TableDebug{RawUnits: &RawUnits{FontSize: &sizeRaw}}
	}
	return box, nil
}

// applyTableAttr 处理标量属性，参数与块内赋值共用同一套键。
func applyTableAttr(box *TableBox, key, value string, res ResourceSet, dpi float64) {
	if value == "" {
		return
	}
	switch key {
	case "x":
		box.X = parsePx(value, dpi)
	case "y":
		box.Y = parsePx(value, dpi)
	case "row-height":
		box.RowHeight = parsePx(value, dpi)
	case "border":
		box.Style.BorderColor = resolveColor(value, res)
	case "header-fill":
		box.Style.HeaderFill = resolveColor(value, res)
	case "text-color":
		box.Style.TextColor = resolveColor(value, res)
	case "font":
		box.Style.Font = value
	case "size":
		if px := ParseLengthStr(value).ToPx(dpi); px > 0 {
			box.Style.FontSize = px
		}
	case "align":
		box.Style.Align = strings.ToLower(value)
	case "inset":
		box.Style.Inset = parsePx(value, dpi)
	}
}

func widthsFromValue(val *dsl.Value, dpi float64) ([]int, error) {
	if val == nil || val.Array == nil {
		return nil, fmt.Errorf("表格 widths 需要数组，例如 [200, 350]")
	}
	widths := make([]int, 0, len(val.Array.Values))
	for _, item := range val.Array.Values {
		w := parsePx(valueToString(item), dpi)
		if w <= 0 {
			return nil, fmt.Errorf("表格列宽无效：%s", valueToString(item))
		}
		widths = append(widths, w)
	}
	if len(widths) == 0 {
		return nil, fmt.Errorf("表格 widths 不能为空")
	}
	return widths, nil
}

// cellsFromValue 与 valueToStringSlice 不同：保留空字符串单元格。
func cellsFromValue(val *dsl.Value) []string {
	if val == nil || val.Array == nil {
		return nil
	}
	out := make([]string, 0, len(val.Array.Values))
	for _, item := range val.Array.Values {
		out = append(out, valueToString(item))
	}
	return out
}

// rowsFromValue 解析行数据：内联二维数组，或指向外部数据的表达式路径。
// 当外部数据采用 {"columns": ..., "data": ...} 形态时一并返回表头。
func rowsFromValue(val *dsl.Value, data any) ([][]string, []string, error) {
	if val == nil {
		return nil, nil, fmt.Errorf("表格 rows 为空")
	}
	if val.Array != nil {
		rows := make([][]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if item.Array == nil {
				return nil, nil, fmt.Errorf("表格行需要数组，例如 [\"A\", \"B\"]")
			}
			rows = append(rows, cellsFromValue(item))
		}
		return rows, nil, nil
	}
	if val.Expr != nil {
		path := exprPath(val.Expr.Parts)
		// 前缀 data 指数据文档本身
		trimmed := path
		if trimmed == "data" {
			trimmed = ""
		} else if strings.HasPrefix(trimmed, "data.") {
			trimmed = strings.TrimPrefix(trimmed, "data.")
		}
		value, ok := binding.Resolve(data, trimmed)
		if !ok {
			return nil, nil, fmt.Errorf("表格数据路径 %s 不存在", path)
		}
		td, ok := binding.ResolveTable(value)
		if !ok {
			return nil, nil, fmt.Errorf("表格数据路径 %s 的形态无法识别", path)
		}
		return td.Rows, td.Columns, nil
	}
	return nil, nil, fmt.Errorf("表格 rows 需要数组或 data.* 路径")
}

func colorsFromValue(val *dsl.Value, res ResourceSet) []Color {
	if val == nil || val.Array == nil {
		return nil
	}
	out := make([]Color, 0, len(val.Array.Values))
	for _, item := range val.Array.Values {
		out = append(out, resolveColor(valueToString(item), res))
	}
	return out
}

func exprPath(parts []*dsl.Lexeme) string {
	var builder strings.Builder
	for _, part := range parts {
		builder.WriteString(part.Value)
	}
	return builder.String()
}

func collectResources(scene *dsl.Scene) (ResourceSet, error) {
	res := ResourceSet{
		Fonts:  map[string]FontResource{},
		Colors: map[string]Color{},
		Images: map[string]ImageResource{},
		Styles: map[string]Style{},
	}
	rawStyles := map[string]Style{}

	for _, section := range scene.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, stmt := range section.Resources.Block.Statements {
			if stmt.Command == nil {
				continue
			}
			switch stmt.Command.Name {
			case "font":
				font := parseFontResource(stmt.Command)
				if font.Name != "" {
					res.Fonts[font.Name] = font
				}
			case "color":
				name, value := parseColorResource(stmt.Command)
				if name == "" || value == "" {
					continue
				}
				if c, err := parseColor(value); err == nil {
					res.Colors[name] = c
				}
			case "image":
				image := parseImageResource(stmt.Command)
				if image.Name != "" {
					res.Images[image.Name] = image
				}
			case "style":
				style := parseStyleResource(stmt.Command)
				if style.Name != "" {
					rawStyles[style.Name] = style
				}
			}
		}
	}

	if len(res.Fonts) == 0 {
		res.Fonts["Body"] = FontResource{
			Name:      "Body",
			Src:       "builtin:Go-Regular",
			Base:      "Go-Regular",
			Family:    "Body",
			IsBuiltin: true,
		}
	}

	resolvedStyles, err := resolveStyles(rawStyles)
	if err != nil {
		return res, err
	}
	res.Styles = resolvedStyles

	return res, nil
}

func collectMeta(scene *dsl.Scene) SceneMeta {
	meta := SceneMeta{
		Creator: "Fresco",
	}
	for _, section := range scene.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			key := strings.ToLower(stmt.Assignment.Key)
			switch key {
			case "title":
				meta.Title = valueToString(stmt.Assignment.Value)
			case "author":
				meta.Author = valueToString(stmt.Assignment.Value)
			case "subject":
				meta.Subject = valueToString(stmt.Assignment.Value)
			case "creator":
				meta.Creator = valueToString(stmt.Assignment.Value)
			case "keywords":
				meta.Keywords = valueToStringSlice(stmt.Assignment.Value)
			}
		}
	}
	return meta
}

func parseFontResource(cmd *dsl.Command) FontResource {
	if len(cmd.Args) == 0 {
		return FontResource{}
	}
	font := FontResource{
		Name:      cmd.Args[0].Value,
		Family:    cmd.Args[0].Value,
		Base:      cmd.Args[0].Value,
		IsBuiltin: strings.HasPrefix(cmd.Args[0].Value, "builtin:"),
	}

	if cmd.Block == nil {
		return font
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		switch stmt.Assignment.Key {
		case "src":
			if stmt.Assignment.Value.String != nil {
				font.Src = string(*stmt.Assignment.Value.String)
				if strings.HasPrefix(font.Src, "builtin:") {
					font.IsBuiltin = true
					font.Base = strings.TrimPrefix(font.Src, "builtin:")
					if font.Base == "" {
						font.Base = "Go-Regular"
					}
				}
			}
		case "style":
			if stmt.Assignment.Value.String != nil {
				font.Style = string(*stmt.Assignment.Value.String)
			}
		case "fallback":
			if stmt.Assignment.Value.String != nil {
				font.Fallback = string(*stmt.Assignment.Value.String)
			}
		}
	}
	return font
}

func parseImageResource(cmd *dsl.Command) ImageResource {
	if len(cmd.Args) == 0 {
		return ImageResource{}
	}
	image := ImageResource{
		Name: cmd.Args[0].Value,
	}
	if cmd.Block == nil {
		return image
	}

	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		if stmt.Assignment.Key == "src" && stmt.Assignment.Value.String != nil {
			image.Src = string(*stmt.Assignment.Value.String)
		}
	}
	return image
}

func parseStyleResource(cmd *dsl.Command) Style {
	if len(cmd.Args) == 0 {
		return Style{}
	}
	style := Style{
		Name:  cmd.Args[0].Value,
		Props: map[string]string{},
	}
	if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
		style.Extends = cmd.Args[2].Value
	}

	if cmd.Block == nil {
		return style
	}

	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		val := valueToString(stmt.Assignment.Value)
		if val == "" {
			continue
		}
		style.Props[stmt.Assignment.Key] = val
	}
	return style
}

func resolveStyles(styles map[string]Style) (map[string]Style, error) {
	resolved := map[string]Style{}
	visiting := map[string]bool{}

	var dfs func(name string) (Style, error)
	dfs = func(name string) (Style, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return Style{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return Style{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := dfs(style.Extends)
			if err != nil {
				return Style{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		delete(visiting, name)
		return style, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) == 0 {
		return "", ""
	}
	name := cmd.Args[0].Value
	value := ""
	if len(cmd.Args) > 1 {
		value = cmd.Args[len(cmd.Args)-1].Value
	}
	return name, value
}

func firstCanvas(scene *dsl.Scene) *dsl.CanvasSection {
	for _, section := range scene.Sections {
		if section.Canvas != nil {
			return section.Canvas
		}
	}
	return nil
}

// parseArgs 把命令参数整理为 key/value 属性表。
// allowStyle 时，奇数个参数的首个 Ident 视为样式或资源名。
func parseArgs(args []*dsl.Lexeme, allowStyle bool) (string, map[string]string) {
	result := map[string]string{}
	if len(args) == 0 {
		return "", result
	}

	cursor := 0
	var style string
	if allowStyle && args[0].Type == "Ident" && len(args)%2 == 1 {
		style = args[0].Value
		cursor = 1
	}

	for cursor < len(args)-1 {
		key := args[cursor].Value
		val := args[cursor+1].Value
		result[key] = val
		cursor += 2
	}

	return style, result
}

func mergeStyleAttributes(style string, inline map[string]string, styles map[string]Style) map[string]string {
	out := make(map[string]string)
	if style != "" {
		if s, ok := styles[style]; ok {
			for k, v := range s.Props {
				out[k] = v
			}
		}
	}
	for k, v := range inline {
		out[k] = v
	}
	return out
}

func resolveFontResource(name string, res ResourceSet) (FontResource, error) {
	if font, ok := res.Fonts[name]; ok {
		return font, nil
	}
	if font, ok := res.Fonts["Body"]; ok {
		return font, nil
	}
	for _, font := range res.Fonts {
		return font, nil
	}
	return FontResource{}, fmt.Errorf("字体 %s 未定义，且没有可用的默认字体", name)
}

func resolveColor(value string, res ResourceSet) Color {
	if value == "" {
		return Color{}
	}
	if c, ok := res.Colors[value]; ok {
		return c
	}
	if strings.HasPrefix(value, "#") {
		if c, err := parseColor(value); err == nil {
			return c
		}
	}
	return Color{}
}

func parseColor(value string) (Color, error) {
	value = strings.TrimPrefix(value, "#")
	switch len(value) {
	case 3:
		r := strings.Repeat(string(value[0]), 2)
		g := strings.Repeat(string(value[1]), 2)
		b := strings.Repeat(string(value[2]), 2)
		return Color{
			R: mustHex(r),
			G: mustHex(g),
			B: mustHex(b),
		}, nil
	case 6, 8:
		return Color{
			R: mustHex(value[0:2]),
			G: mustHex(value[2:4]),
			B: mustHex(value[4:6]),
		}, nil
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
}

func mustHex(s string) int {
	v, _ := strconv.ParseInt(s, 16, 64)
	return int(v)
}

// parsePx 将长度字符串换算成整数像素，解析失败时返回 0。
func parsePx(value string, dpi float64) int {
	if value == "" {
		return 0
	}
	l := ParseLengthStr(value)
	return int(math.Round(l.ToPx(dpi)))
}

func parseScale(value string) float64 {
	v := strings.TrimSpace(value)
	v = strings.TrimSuffix(v, "x")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}

func valueToString(val *dsl.Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Expr != nil:
		var builder strings.Builder
		for _, part := range val.Expr.Parts {
			builder.WriteString(part.Value)
		}
		return builder.String()
	default:
		return ""
	}
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}
