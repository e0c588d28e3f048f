package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/Luo-mary/fresco/dsl"
	"github.com/Luo-mary/fresco/layout"
	"github.com/Luo-mary/fresco/renderer"
)

// Server 提供场景的 HTTP 预览：每次请求重新解析场景并渲染，
// 编辑场景文件后刷新即可看到效果。
type Server struct {
	scenePath string
	dataPath  string
	rend      renderer.Renderer
	opts      layout.BuildOptions
}

// New 构造预览服务。dataPath 可为空，表示场景不绑定外部数据；
// rend 决定预览输出格式，正常情况下注入位图渲染器。
func New(scenePath, dataPath string, rend renderer.Renderer, opts layout.BuildOptions) *Server {
	return &Server{
		scenePath: scenePath,
		dataPath:  dataPath,
		rend:      rend,
		opts:      opts,
	}
}

// Engine 返回注册好路由的 gin 引擎。
func (s *Server) Engine() *gin.Engine {
	r := gin.Default()
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes 挂载预览相关路由。
func (s *Server) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/preview", s.preview)
		api.POST("/preview", s.preview)
	}
}

// Run 在 addr 上启动预览服务，阻塞直至出错。
func (s *Server) Run(addr string) error {
	return s.Engine().Run(addr)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// preview 重新走一遍 解析→布局→渲染 管线并返回 PNG。
// POST 请求可在请求体里带一份 JSON 数据文档，覆盖启动时指定的数据文件。
func (s *Server) preview(c *gin.Context) {
	scene, err := s.loadScene()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	doc, err := s.loadData(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comp, err := layout.Build(scene, doc, s.opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	data, err := s.rend.Render(comp)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

func (s *Server) loadScene() (*dsl.Scene, error) {
	raw, err := os.ReadFile(s.scenePath)
	if err != nil {
		return nil, fmt.Errorf("读取场景文件失败: %w", err)
	}
	scene, err := dsl.ParseString(string(raw))
	if err != nil {
		return nil, fmt.Errorf("解析场景失败: %w", err)
	}
	return scene, nil
}

func (s *Server) loadData(c *gin.Context) (any, error) {
	if c.Request.Method == http.MethodPost && c.Request.ContentLength != 0 {
		var doc any
		if err := c.BindJSON(&doc); err != nil {
			return nil, fmt.Errorf("解析请求数据失败: %w", err)
		}
		return doc, nil
	}
	if s.dataPath == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(s.dataPath)
	if err != nil {
		return nil, fmt.Errorf("读取数据文件失败: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("解析数据文件失败: %w", err)
	}
	return doc, nil
}
