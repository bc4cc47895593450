package gamesense

import (
	"context"

	"bongocat/define"
	"bongocat/frames"
)

// ScreenDisplay 通过屏幕事件把帧推送到带屏设备
type ScreenDisplay struct {
	session Session
	event   string
	dataKey string
}

func NewScreenDisplay(session Session, event string, width, height int) *ScreenDisplay {
	return &ScreenDisplay{
		session: session,
		event:   event,
		dataKey: ImageDataKey(width, height),
	}
}

// ShowFrame 发送 {value: 帧编号, frame: {image-data-WxH: 位图}}
func (d *ScreenDisplay) ShowFrame(ctx context.Context, index define.FrameIndex, frame *frames.Frame) error {
	return d.session.SendGameEventUpdate(ctx, Event{
		Name:  d.event,
		Value: int(index),
		Frame: map[string]ImageData{d.dataKey: frame.Bytes()},
	})
}
