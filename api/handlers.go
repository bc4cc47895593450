package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"bongocat/define"
	"bongocat/frames"

	"github.com/gin-gonic/gin"
)

// handleHealthCheck 健康检查
func (s *Server) handleHealthCheck(c *gin.Context) {
	status := "healthy"
	if s.animator == nil || s.store == nil {
		status = "unhealthy"
	}

	httpStatus := http.StatusOK
	if status != "healthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, define.ApiResponse{
		Status: "success",
		Data: HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   s.version,
		},
	})
}

// handleGetStatus 获取动画状态
func (s *Server) handleGetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, define.ApiResponse{
		Status: "success",
		Data: StatusResponse{
			Snapshot: s.animator.Snapshot(),
			Uptime:   time.Since(s.startTime).Round(time.Second).String(),
		},
	})
}

// handleGetFrames 获取帧列表
func (s *Server) handleGetFrames(c *gin.Context) {
	infos := make([]FrameInfo, 0, define.FrameCount)
	for i := define.FRAME_IDLE; i < define.FrameCount; i++ {
		infos = append(infos, FrameInfo{
			Index:   int(i),
			Name:    i.String(),
			Width:   s.store.Width(),
			Height:  s.store.Height(),
			Preview: fmt.Sprintf("/api/frames/%d", i),
		})
	}

	c.JSON(http.StatusOK, define.ApiResponse{
		Status: "success",
		Data:   FrameListResponse{Frames: infos, Total: len(infos)},
	})
}

// handleGetFrame 以 PNG 返回帧预览
func (s *Server) handleGetFrame(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, define.ApiResponse{
			Status: "error",
			Error:  "无效的帧编号：" + c.Param("index"),
		})
		return
	}

	frame, err := s.store.Get(define.FrameIndex(index))
	if err != nil {
		c.JSON(http.StatusBadRequest, define.ApiResponse{
			Status: "error",
			Error:  err.Error(),
		})
		return
	}

	var buf bytes.Buffer
	if err := frames.Preview(&buf, frame, s.preview); err != nil {
		c.JSON(http.StatusInternalServerError, define.ApiResponse{
			Status: "error",
			Error:  "生成预览失败：" + err.Error(),
		})
		return
	}

	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// handleKeyPress 向控制器注入一次按键
func (s *Server) handleKeyPress(c *gin.Context) {
	if err := s.animator.Press(); err != nil {
		c.JSON(http.StatusServiceUnavailable, define.ApiResponse{
			Status: "error",
			Error:  "按键提交失败：" + err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, define.ApiResponse{
		Status:  "success",
		Message: "按键已提交",
	})
}
