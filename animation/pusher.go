package animation

import (
	"context"
	"log"
	"sync"
	"time"

	"bongocat/define"
	"bongocat/frames"
)

// defaultPushTimeout 单次推送的超时时间
const defaultPushTimeout = 5 * time.Second

type push struct {
	index define.FrameIndex
	frame *frames.Frame
}

// pusher 按提交顺序依次把帧推送到显示目标，不阻塞事件循环
type pusher struct {
	display Display
	timeout time.Duration
	onDone  func(index define.FrameIndex, err error)

	mutex  sync.Mutex
	queue  []push
	notify chan struct{}
}

func newPusher(display Display, timeout time.Duration, onDone func(define.FrameIndex, error)) *pusher {
	if timeout <= 0 {
		timeout = defaultPushTimeout
	}
	return &pusher{
		display: display,
		timeout: timeout,
		onDone:  onDone,
		notify:  make(chan struct{}, 1),
	}
}

// enqueue 只追加队列并唤醒工作协程，立即返回
func (p *pusher) enqueue(index define.FrameIndex, frame *frames.Frame) {
	p.mutex.Lock()
	p.queue = append(p.queue, push{index: index, frame: frame})
	p.mutex.Unlock()

	select {
	case p.notify <- struct{}{}:
	default:
	}
}

func (p *pusher) next() (push, bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(p.queue) == 0 {
		return push{}, false
	}
	item := p.queue[0]
	p.queue[0] = push{}
	p.queue = p.queue[1:]
	return item, true
}

// run 在 ctx 取消后退出，不等待队列中剩余的推送
func (p *pusher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.notify:
		}

		for {
			item, ok := p.next()
			if !ok {
				break
			}
			if ctx.Err() != nil {
				return
			}

			pushCtx, cancel := context.WithTimeout(ctx, p.timeout)
			err := p.display.ShowFrame(pushCtx, item.index, item.frame)
			cancel()

			if err != nil {
				log.Printf("❌ 推送帧 %s 失败: %v", item.index, err)
			}
			if p.onDone != nil {
				p.onDone(item.index, err)
			}
		}
	}
}
