package api

import (
	"time"

	"bongocat/animation"
	"bongocat/frames"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Animator 是 API 需要的控制器能力
type Animator interface {
	Press() error
	Snapshot() animation.Snapshot
}

// Server 本地状态和控制 API
type Server struct {
	animator  Animator
	store     *frames.Store
	preview   frames.PreviewOptions
	startTime time.Time
	version   string
}

// NewServer 创建 API 服务器
func NewServer(animator Animator, store *frames.Store, preview frames.PreviewOptions) *Server {
	return &Server{
		animator:  animator,
		store:     store,
		preview:   preview,
		startTime: time.Now(),
		version:   "1.0.0",
	}
}

// NewEngine 创建带 CORS 的 Gin 引擎并注册路由
func (s *Server) NewEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Length", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	s.SetupRoutes(r)
	return r
}

// SetupRoutes 设置 API 路由
func (s *Server) SetupRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/health", s.handleHealthCheck)     // 健康检查
		api.GET("/status", s.handleGetStatus)       // 动画状态和推送统计
		api.GET("/frames", s.handleGetFrames)       // 帧列表
		api.GET("/frames/:index", s.handleGetFrame) // 帧 PNG 预览
		api.POST("/keypress", s.handleKeyPress)     // 模拟一次按键
	}
}
