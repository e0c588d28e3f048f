package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Luo-mary/fresco/dsl"
	"github.com/Luo-mary/fresco/layout"
	"github.com/Luo-mary/fresco/renderer"
	pdfrenderer "github.com/Luo-mary/fresco/renderer/pdf"
	"github.com/Luo-mary/fresco/renderer/raster"
	"github.com/Luo-mary/fresco/server"
)

func main() {
	input := flag.String("in", "examples/promo.fresco", "场景文件路径")
	output := flag.String("out", "", "输出路径，.pdf 后缀走矢量后端，为空或为目录时使用默认 PNG 文件名")
	dataPath := flag.String("data", "", "绑定到场景的 JSON 数据文件路径")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	debugRawUnits := flag.Bool("debug-raw-units", false, "在调试 JSON 中输出 debug.rawUnits 影子字段")
	dpi := flag.Float64("dpi", 0, "物理单位换算 DPI，<=0 时取 72")
	serve := flag.String("serve", "", "启动预览服务并监听该地址，如 :8080")
	flag.Parse()

	opts := layout.BuildOptions{
		DPI:   *dpi,
		Debug: layout.DebugOptions{RawUnits: *debugRawUnits},
	}
	baseDir := filepath.Dir(*input)

	if *serve != "" {
		srv := server.New(*input, *dataPath, raster.NewRenderer(baseDir), opts)
		if err := srv.Run(*serve); err != nil {
			log.Fatalf("预览服务退出: %v", err)
		}
		return
	}

	data, err := loadData(*dataPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	outPath := *output
	var r renderer.Renderer
	if strings.EqualFold(filepath.Ext(outPath), ".pdf") {
		r = pdfrenderer.NewRenderer(baseDir)
	} else {
		outPath = raster.ResolveOutputPath(outPath)
		r = raster.NewRenderer(baseDir)
	}

	if err := run(*input, outPath, *debug, data, opts, r); err != nil {
		log.Fatalf("生成失败: %v", err)
	}
	fmt.Printf("已生成：%s\n", outPath)
}

// run 串联解析、布局与渲染。
func run(inputPath, outputPath, debugPath string, data any, opts layout.BuildOptions, r renderer.Renderer) error {
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("无法打开场景文件 %s: %w", inputPath, err)
	}
	defer file.Close()

	scene, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析场景失败: %w", err)
	}

	comp, err := layout.Build(scene, data, opts)
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}

	if debugPath != "" {
		if err := writeDebug(comp, debugPath); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}

	img, err := r.Render(comp)
	if err != nil {
		return fmt.Errorf("渲染失败: %w", err)
	}
	return raster.WriteFile(outputPath, img)
}

// loadData 读取并解析 JSON 数据文件，路径为空时返回 nil。
func loadData(path string) (any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取数据文件 %s 失败: %w", path, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("解析数据文件 %s 失败: %w", path, err)
	}
	return doc, nil
}

func writeDebug(comp *layout.Composition, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(comp, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
