package layout

// 该文件定义布局结果与资源描述，供布局计算、渲染与调试 JSON 共用。
// 坐标与尺寸统一以像素为单位，原点在画布左上角。

// Composition 保存布局后的画布规格、按顺序排列的图层与资源信息。
// Layers 的先后顺序即合成顺序，渲染器必须严格按序执行。
type Composition struct {
	Canvas    CanvasSpec  `json:"canvas"`
	Layers    []Layer     `json:"layers"`
	Tables    []TableBox  `json:"tables,omitempty"`
	Resources ResourceSet `json:"resources"`
	Meta      SceneMeta   `json:"meta"`
}

// CanvasSpec 描述画布尺寸与背景渐变。
type CanvasSpec struct {
	Width    int          `json:"width"`
	Height   int          `json:"height"`
	Gradient GradientSpec `json:"gradient"`
}

// GradientSpec 记录背景渐变的起止颜色与方向。
// Mode 为 mirror 时使用旧版镜像混合（中点附近达到 End 后回落），
// 默认 linear 为单调线性插值。
type GradientSpec struct {
	Start      Color  `json:"start"`
	End        Color  `json:"end"`
	Horizontal bool   `json:"horizontal,omitempty"`
	Mode       string `json:"mode,omitempty"` // linear(默认)/mirror
}

// 图层种类常量，Layer.Kind 取值。
const (
	LayerImage  = "image"
	LayerFlower = "flower"
	LayerQR     = "qr"
)

// Layer 表示合成队列中的一次操作，根据 Kind 取对应的具体描述。
// 同一时刻只有一个指针字段非空。
type Layer struct {
	Kind   string       `json:"kind"`
	Image  *ImageLayer  `json:"image,omitempty"`
	Flower *FlowerLayer `json:"flower,omitempty"`
	QR     *QRLayer     `json:"qr,omitempty"`
}

// ImageLayer 描述一次图片合成：从 Src 解码，可选缩放后以左上角锚点贴到 (X, Y)。
// 允许部分或完全超出画布，超出部分由渲染器静默裁剪。
type ImageLayer struct {
	Name   string `json:"name,omitempty"`
	Src    string `json:"src"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width,omitempty"`  // 目标宽度，0 表示保持原始尺寸
	Height int    `json:"height,omitempty"` // 目标高度，0 表示保持原始尺寸
	Fit    string `json:"fit,omitempty"`    // stretch(默认)/contain
}

// FlowerLayer 描述程序化生成的花朵图案，(X, Y) 为花心坐标。
type FlowerLayer struct {
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Scale       float64 `json:"scale"`
	Petals      int     `json:"petals"`
	PetalColor  Color   `json:"petalColor"`
	CenterColor Color   `json:"centerColor"`
}

// QRLayer 描述需要生成并合成的二维码图块。
type QRLayer struct {
	Content string `json:"content"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Size    int    `json:"size"`
}

// TableBox 保存表格的绝对位置、列宽与行内容。
// 每行单元格数必须与 ColumnWidths 长度一致，由布局阶段保证。
type TableBox struct {
	X            int         `json:"x"`
	Y            int         `json:"y"`
	ColumnWidths []int       `json:"columnWidths"`
	RowHeight    int         `json:"rowHeight"`
	Rows         []TableRow  `json:"rows"`
	Style        TableStyle  `json:"style"`
	Debug        *TableDebug `json:"debug,omitempty"`
}

// TableDebug holds optional debug info displayed only when enabled by BuildOptions.
type TableDebug struct {
	RawUnits *RawUnits `json:"rawUnits,omitempty"`
}

// RawUnits describes original author-specified units for key fields.
type RawUnits struct {
	FontSize *RawLengthJSON `json:"fontSize,omitempty"`
}

// RawLengthJSON is a JSON-friendly representation of Length.
type RawLengthJSON struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// TableRow 记录一行单元格文本，IsHeader 决定使用表头填充色。
type TableRow struct {
	IsHeader bool     `json:"isHeader"`
	Cells    []string `json:"cells"`
}

// TableStyle 汇总表格的边框、填充与文字样式。
// BodyFills 按列序号轮流使用；为空时正文单元格不填充。
type TableStyle struct {
	BorderColor Color   `json:"borderColor"`
	HeaderFill  Color   `json:"headerFill"`
	BodyFills   []Color `json:"bodyFills,omitempty"`
	TextColor   Color   `json:"textColor"`
	Font        string  `json:"font"`
	FontSize    float64 `json:"fontSize"`
	Align       string  `json:"align,omitempty"` // left(默认)/center
	Inset       int     `json:"inset"`           // 文字距单元格左右边框的内缩
}

// ResourceSet 记录解析出的字体、颜色、图片与样式定义。
type ResourceSet struct {
	Fonts  map[string]FontResource  `json:"fonts"`
	Colors map[string]Color         `json:"colors"`
	Images map[string]ImageResource `json:"images"`
	Styles map[string]Style         `json:"styles"`
}

// FontResource 描述字体资源，src 可以是文件路径或 builtin:* 形式。
type FontResource struct {
	Name      string `json:"name"`
	Src       string `json:"src"`
	Style     string `json:"style"`
	Base      string `json:"base"`      // builtin 模式下记录真实字体名
	Family    string `json:"family"`    // 矢量渲染器使用的 Family 名称
	IsBuiltin bool   `json:"isBuiltin"` // 是否为内建字体
	Fallback  string `json:"fallback"`
}

// ImageResource 记录预先声明的图片资源，图层可按名称引用。
type ImageResource struct {
	Name string `json:"name"`
	Src  string `json:"src"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Style 用于描述可继承的属性集合，供图层与表格命令按名引用。
type Style struct {
	Name    string            `json:"name"`
	Extends string            `json:"extends,omitempty"`
	Props   map[string]string `json:"props"`
}

// SceneMeta 保存场景元信息，矢量输出时写入文档属性。
type SceneMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
