package animation

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"bongocat/define"
	"bongocat/frames"
)

// DefaultIdleTimeout 最后一次按键后回到空闲帧的等待时间
const DefaultIdleTimeout = 1000 * time.Millisecond

// ErrStopped 表示控制器的事件循环已经退出
var ErrStopped = errors.New("动画控制器已停止")

// Snapshot 是控制器状态的只读快照
type Snapshot struct {
	State         define.FrameIndex `json:"state"`
	StateName     string            `json:"stateName"`
	KeyPresses    uint64            `json:"keyPresses"`
	Pushes        uint64            `json:"pushes"`
	PushFailures  uint64            `json:"pushFailures"`
	LastError     string            `json:"lastError,omitempty"`
	LastPushAt    time.Time         `json:"lastPushAt,omitempty"`
	IdleTimeoutMs int64             `json:"idleTimeoutMs"`
}

// Options 控制器的可选参数
type Options struct {
	IdleTimeout time.Duration
	PushTimeout time.Duration
	Clock       Clock
}

// Controller 是单线程的动画状态机：
// 按键在左手和右手之间交替，空闲超时后回到双手抬起
type Controller struct {
	store       *frames.Store
	pusher      *pusher
	clock       Clock
	idleTimeout time.Duration

	keys chan struct{}
	idle chan uint64
	done chan struct{}

	runOnce sync.Once

	// 以下字段只在事件循环中访问
	state    define.FrameIndex
	timer    Timer
	timerGen uint64

	statsMutex sync.RWMutex
	stats      Snapshot
}

// NewController 创建动画控制器，初始状态为空闲
func NewController(store *frames.Store, display Display, opts Options) *Controller {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.Clock == nil {
		opts.Clock = RealClock
	}

	c := &Controller{
		store:       store,
		clock:       opts.Clock,
		idleTimeout: opts.IdleTimeout,
		keys:        make(chan struct{}, 64),
		idle:        make(chan uint64),
		done:        make(chan struct{}),
		state:       define.FRAME_IDLE,
	}
	c.pusher = newPusher(display, opts.PushTimeout, c.recordPush)
	c.stats.State = define.FRAME_IDLE
	c.stats.StateName = define.FRAME_IDLE.String()
	c.stats.IdleTimeoutMs = opts.IdleTimeout.Milliseconds()
	return c
}

// Press 提交一次按键事件，按键内容无关紧要
func (c *Controller) Press() error {
	select {
	case c.keys <- struct{}{}:
		return nil
	case <-c.done:
		return ErrStopped
	}
}

// Run 运行事件循环直到 ctx 取消；只能调用一次
func (c *Controller) Run(ctx context.Context) error {
	started := false
	c.runOnce.Do(func() { started = true })
	if !started {
		return errors.New("动画控制器只能运行一次")
	}

	defer close(c.done)

	pushCtx, cancelPush := context.WithCancel(ctx)
	defer cancelPush()
	go c.pusher.run(pushCtx)

	log.Printf("▶️ 动画控制器已启动 (空闲超时: %s)", c.idleTimeout)

	for {
		select {
		case <-ctx.Done():
			c.cancelIdleTimer()
			log.Printf("🛑 动画控制器已停止")
			return nil
		case <-c.keys:
			c.handleKey()
		case gen := <-c.idle:
			c.onIdle(gen)
		}
	}
}

// onIdle 先处理已经排队的按键；按键会重新安排计时器，使这次超时作废
func (c *Controller) onIdle(gen uint64) {
	select {
	case <-c.keys:
		c.handleKey()
	default:
		c.handleIdle(gen)
	}
}

// Done 在事件循环退出后关闭
func (c *Controller) Done() <-chan struct{} { return c.done }

func (c *Controller) handleKey() {
	next := define.FRAME_LEFT_DOWN
	if c.state == define.FRAME_LEFT_DOWN {
		next = define.FRAME_RIGHT_DOWN
	}

	c.statsMutex.Lock()
	c.stats.KeyPresses++
	c.statsMutex.Unlock()

	// 状态和计时器必须在推送之前同步更新
	c.commit(next)
	c.armIdleTimer()
	c.push(next)
}

func (c *Controller) handleIdle(gen uint64) {
	// 已被新的按键取代的计时器直接丢弃
	if c.timer == nil || gen != c.timerGen {
		return
	}
	c.timer = nil

	c.commit(define.FRAME_IDLE)
	c.push(define.FRAME_IDLE)
}

func (c *Controller) commit(next define.FrameIndex) {
	c.state = next

	c.statsMutex.Lock()
	c.stats.State = next
	c.stats.StateName = next.String()
	c.statsMutex.Unlock()
}

// armIdleTimer 先取消旧计时器再安排新的，任何时候最多一个有效计时器
func (c *Controller) armIdleTimer() {
	c.cancelIdleTimer()

	c.timerGen++
	gen := c.timerGen
	c.timer = c.clock.AfterFunc(c.idleTimeout, func() {
		select {
		case c.idle <- gen:
		case <-c.done:
		}
	})
}

func (c *Controller) cancelIdleTimer() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) push(index define.FrameIndex) {
	frame, err := c.store.Get(index)
	if err != nil {
		log.Printf("❌ 无法获取帧 %d: %v", index, err)
		c.recordPush(index, err)
		return
	}
	c.pusher.enqueue(index, frame)
}

func (c *Controller) recordPush(index define.FrameIndex, err error) {
	c.statsMutex.Lock()
	defer c.statsMutex.Unlock()

	if err != nil {
		c.stats.PushFailures++
		c.stats.LastError = err.Error()
		return
	}
	c.stats.Pushes++
	c.stats.LastPushAt = time.Now()
}

// Snapshot 返回当前状态和推送统计，可在任意协程中调用
func (c *Controller) Snapshot() Snapshot {
	c.statsMutex.RLock()
	defer c.statsMutex.RUnlock()
	return c.stats
}

// State 返回最近一次提交的帧编号
func (c *Controller) State() define.FrameIndex { return c.Snapshot().State }
