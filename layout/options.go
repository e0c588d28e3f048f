package layout

// BuildOptions 配置布局阶段的行为。
type BuildOptions struct {
	// DPI 用于把场景中带物理单位的长度换算成像素，<=0 时取 DefaultDPI。
	DPI   float64
	Debug DebugOptions
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	RawUnits bool // 在调试 JSON 中输出 debug.rawUnits 影子字段
}
