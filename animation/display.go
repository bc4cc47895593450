package animation

import (
	"context"
	"log"
	"time"

	"bongocat/define"
	"bongocat/frames"
)

// defaultMirrorTimeout 单次镜像发布的超时时间
const defaultMirrorTimeout = 2 * time.Second

// Display 是帧推送的目标
type Display interface {
	ShowFrame(ctx context.Context, index define.FrameIndex, frame *frames.Frame) error
}

// MultiDisplay 把帧推送到主屏幕，同时镜像到其他目标
// 只有主屏幕的结果会返回给控制器；镜像在独立协程和独立超时中发布，失败只记录日志
type MultiDisplay struct {
	Primary       Display
	Mirrors       []Display
	MirrorTimeout time.Duration
}

func (m *MultiDisplay) ShowFrame(ctx context.Context, index define.FrameIndex, frame *frames.Frame) error {
	err := m.Primary.ShowFrame(ctx, index, frame)

	timeout := m.MirrorTimeout
	if timeout <= 0 {
		timeout = defaultMirrorTimeout
	}
	for _, mirror := range m.Mirrors {
		go func(mirror Display) {
			mirrorCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			if err := mirror.ShowFrame(mirrorCtx, index, frame); err != nil {
				log.Printf("⚠️ 镜像帧 %s 失败: %v", index, err)
			}
		}(mirror)
	}

	return err
}
