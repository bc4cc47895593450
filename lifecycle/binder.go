package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"bongocat/frames"
	"bongocat/gamesense"
)

// defaultShutdownTimeout 关闭流程的上限，保证退出不会卡住
const defaultShutdownTimeout = 3 * time.Second

// ErrClosed 表示关闭流程已经开始，不再允许启动
var ErrClosed = errors.New("会话绑定器已关闭")

// Options 会话绑定参数
type Options struct {
	Event           string
	Zone            string
	Blank           *frames.Frame
	ShutdownTimeout time.Duration
}

// Binder 负责外部会话的注册、绑定、心跳和注销顺序
type Binder struct {
	session gamesense.Session
	opts    Options

	startOnce sync.Once
	startErr  error

	mutex       sync.Mutex
	closed      bool
	cancelStart context.CancelFunc
	starting    sync.WaitGroup

	shutdownOnce sync.Once
	shutdownDone chan struct{}
}

// NewBinder 创建会话绑定器
func NewBinder(session gamesense.Session, opts Options) *Binder {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	return &Binder{
		session:      session,
		opts:         opts,
		shutdownDone: make(chan struct{}),
	}
}

// Start 注册应用、用空白图像绑定屏幕事件并开始心跳
// 返回后才允许启动按键监听。启动过程中调用 Shutdown 会取消启动，
// Shutdown 之后再调用 Start 返回 ErrClosed
func (b *Binder) Start(ctx context.Context) error {
	b.startOnce.Do(func() {
		b.mutex.Lock()
		if b.closed {
			b.mutex.Unlock()
			b.startErr = ErrClosed
			return
		}
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		b.cancelStart = cancel
		b.starting.Add(1)
		defer b.starting.Done()
		b.mutex.Unlock()

		b.startErr = b.start(ctx)
	})
	return b.startErr
}

// Closed 报告关闭流程是否已经开始
func (b *Binder) Closed() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.closed
}

func (b *Binder) start(ctx context.Context) error {
	if err := b.session.RegisterGame(ctx); err != nil {
		return fmt.Errorf("注册应用失败：%w", err)
	}
	log.Printf("✅ 应用已注册")

	blank := b.opts.Blank
	handler := gamesense.NewScreenHandler(blank.Width(), blank.Height(), b.opts.Zone, blank.Bytes())
	if err := b.session.BindEvent(ctx, b.opts.Event, []gamesense.ScreenHandler{handler}); err != nil {
		return fmt.Errorf("绑定屏幕事件 %s 失败：%w", b.opts.Event, err)
	}
	log.Printf("✅ 屏幕事件 %s 已绑定 (%s, 区域: %s)", b.opts.Event, handler.DeviceType, handler.Zone)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("启动已取消：%w", err)
	}
	b.session.StartHeartbeatSending()
	log.Printf("💓 心跳已开始")
	return nil
}

// Shutdown 停止心跳、停止并移除应用；多次或并发调用只执行一次，
// 所有调用者都会等待这一次执行结束。不等待正在进行的帧推送。
func (b *Binder) Shutdown() {
	b.shutdownOnce.Do(func() {
		defer close(b.shutdownDone)
		b.shutdown()
	})
	<-b.shutdownDone
}

// ShutdownDone 在关闭流程结束后关闭
func (b *Binder) ShutdownDone() <-chan struct{} { return b.shutdownDone }

func (b *Binder) shutdown() {
	log.Printf("⏳ 正在关闭...")

	// 先取消进行中的启动并等它返回，注销总在注册之后发生
	b.mutex.Lock()
	b.closed = true
	cancelStart := b.cancelStart
	b.mutex.Unlock()
	if cancelStart != nil {
		cancelStart()
	}
	b.starting.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), b.opts.ShutdownTimeout)
	defer cancel()

	b.session.StopHeartbeatSending()

	if err := b.session.StopGame(ctx); err != nil {
		log.Printf("⚠️ 停止应用失败: %v", err)
	}
	if err := b.session.RemoveGame(ctx); err != nil {
		log.Printf("⚠️ 移除应用失败: %v", err)
		return
	}
	log.Printf("👋 已成功移除应用")
}
