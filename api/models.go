package api

import (
	"time"

	"bongocat/animation"
)

// StatusResponse 状态响应
type StatusResponse struct {
	animation.Snapshot
	Uptime string `json:"uptime"`
}

// FrameInfo 帧信息
type FrameInfo struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Preview string `json:"preview"`
}

// FrameListResponse 帧列表响应
type FrameListResponse struct {
	Frames []FrameInfo `json:"frames"`
	Total  int         `json:"total"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}
