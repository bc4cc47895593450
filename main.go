package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"bongocat/animation"
	"bongocat/api"
	"bongocat/cli"
	"bongocat/define"
	"bongocat/frames"
	"bongocat/gamesense"
	"bongocat/input"
	"bongocat/lifecycle"
	"bongocat/mirror"
)

// startupTimeout 注册和绑定的总超时
const startupTimeout = 10 * time.Second

type app struct {
	cfg        *define.Config
	store      *frames.Store
	client     *gamesense.GameClient
	controller *animation.Controller
	binder     *lifecycle.Binder
	publisher  *mirror.Publisher
	web        *http.Server

	// mutex 保护以下字段，信号协程和主流程都会访问
	mutex        sync.Mutex
	closing      bool
	cancel       context.CancelFunc
	restoreTerm  func() error
	shutdownOnce sync.Once
}

func printUsage() {
	fmt.Println("OLED Bongo Cat - 按键驱动 SteelSeries OLED 屏上的邦戈猫")
	fmt.Println("Usage:")
	fmt.Println("  -config string        YAML 或 TOML 配置文件")
	fmt.Println("  -address string       SteelSeries Engine 地址 (默认从 coreProps.json 发现)")
	fmt.Println("  -frames string        帧素材 JSON 文件 (默认使用内置 128x40 素材)")
	fmt.Println("  -idle-timeout dur     最后一次按键后回到空闲帧的时间 (default: 1s)")
	fmt.Println("  -heartbeat dur        心跳间隔 (default: 10s)")
	fmt.Println("  -width int            屏幕宽度 (default: 128)")
	fmt.Println("  -height int           屏幕高度 (default: 40)")
	fmt.Println("  -zone string          屏幕区域 (default: one)")
	fmt.Println("  -port string          本地 API 端口，为空时不启动")
	fmt.Println("  -mqtt-url string      MQTT broker 地址，为空时不镜像")
	fmt.Println("  -mqtt-topic string    MQTT 镜像主题 (default: bongocat/frame)")
	fmt.Println("")
	fmt.Println("Environment Variables:")
	fmt.Println("  BONGO_CONFIG          配置文件路径")
	fmt.Println("  GAMESENSE_ADDRESS     SteelSeries Engine 地址")
	fmt.Println("  BONGO_IDLE_TIMEOUT    空闲超时")
	fmt.Println("  BONGO_FRAMES_FILE     帧素材文件")
	fmt.Println("  WEB_PORT              本地 API 端口")
	fmt.Println("  MQTT_URL              MQTT broker 地址")
	fmt.Println("  MQTT_TOPIC            MQTT 镜像主题")
	fmt.Println("  MQTT_USERNAME         MQTT 用户名")
	fmt.Println("  MQTT_PASSWORD         MQTT 密码")
	fmt.Println("")
	fmt.Println("按 Ctrl+C 退出并从 SteelSeries Engine 中移除应用。")
}

func loadFrames(cfg *define.Config) (*frames.Store, error) {
	if cfg.FramesFile != "" {
		return frames.LoadFile(cfg.FramesFile, cfg.ScreenWidth, cfg.ScreenHeight)
	}
	if cfg.ScreenWidth != frames.DefaultWidth || cfg.ScreenHeight != frames.DefaultHeight {
		return nil, fmt.Errorf("内置素材只支持 %dx%d，请使用 -frames 指定 %dx%d 的素材",
			frames.DefaultWidth, frames.DefaultHeight, cfg.ScreenWidth, cfg.ScreenHeight)
	}
	return frames.LoadDefault()
}

func newApp(cfg *define.Config) (*app, error) {
	a := &app{cfg: cfg}

	store, err := loadFrames(cfg)
	if err != nil {
		return nil, err
	}
	a.store = store
	log.Printf("🖼️ 已加载 %d 帧 (%dx%d)", define.FrameCount, store.Width(), store.Height())

	address := cfg.GameSenseAddress
	if address == "" {
		log.Println("🔍 未指定 Engine 地址，从 coreProps.json 发现...")
		if address, err = gamesense.DiscoverAddress(); err != nil {
			return nil, err
		}
	}
	log.Printf("📡 SteelSeries Engine: %s", address)

	a.client = gamesense.NewGameClient(address, gamesense.Game{
		Name:        cfg.GameName,
		DisplayName: cfg.GameDisplayName,
		Developer:   cfg.Developer,
	}, cfg.HeartbeatInterval.Std())

	display := &animation.MultiDisplay{
		Primary: gamesense.NewScreenDisplay(a.client, cfg.EventName, store.Width(), store.Height()),
	}
	if cfg.Mqtt.URL != "" {
		publisher, err := mirror.Dial(cfg.Mqtt)
		if err != nil {
			return nil, err
		}
		a.publisher = publisher
		display.Mirrors = append(display.Mirrors, publisher)
		log.Printf("🪞 帧镜像到 MQTT 主题: %s", cfg.Mqtt.Topic)
	}

	a.controller = animation.NewController(store, display, animation.Options{
		IdleTimeout: cfg.IdleTimeout.Std(),
	})
	a.binder = lifecycle.NewBinder(a.client, lifecycle.Options{
		Event: cfg.EventName,
		Zone:  cfg.Zone,
		Blank: store.Blank(),
	})

	return a, nil
}

func (a *app) newWebServer() *http.Server {
	server := api.NewServer(a.controller, a.store, frames.PreviewOptions{
		Foreground: a.cfg.PreviewForeground,
		Background: a.cfg.PreviewBackground,
		Scale:      a.cfg.PreviewScale,
	})
	return &http.Server{Addr: ":" + a.cfg.WebPort, Handler: server.NewEngine()}
}

func (a *app) serveAPI() {
	log.Printf("🌐 本地 API 运行在 http://localhost:%s/api/status", a.cfg.WebPort)
	if err := a.web.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("❌ 本地 API 启动失败: %v", err)
	}
}

// gracefulShutdown 只执行一次；不等待正在进行的帧推送，最终总是以 0 退出
func (a *app) gracefulShutdown() {
	a.shutdownOnce.Do(func() {
		log.Println("🛑 Shutting down")

		a.mutex.Lock()
		a.closing = true
		restoreTerm, cancel, web := a.restoreTerm, a.cancel, a.web
		a.mutex.Unlock()

		if restoreTerm != nil {
			if err := restoreTerm(); err != nil {
				log.Printf("⚠️ 恢复终端设置失败: %v", err)
			}
		}
		if cancel != nil {
			cancel()
		}
		if web != nil {
			web.Close()
		}

		// 启动尚未完成时会先取消启动，再注销
		a.binder.Shutdown()

		if a.publisher != nil {
			a.publisher.Close()
		}
	})
	os.Exit(0)
}

// unlessClosing 在关闭流程开始前执行 f；已经在关闭时返回 false
func (a *app) unlessClosing(f func()) bool {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.closing {
		return false
	}
	f()
	return true
}

func (a *app) run() error {
	// 信号处理必须先于注册安装，启动期间的 Ctrl+C 也要走注销流程
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		sig := <-signals
		log.Printf("📥 收到信号 %s", sig)
		a.gracefulShutdown()
	}()

	startCtx, cancelStart := context.WithTimeout(context.Background(), startupTimeout)
	defer cancelStart()

	// 会话必须完全注册并绑定后才能开始监听按键
	if err := a.binder.Start(startCtx); err != nil {
		if a.binder.Closed() {
			a.gracefulShutdown()
		}
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	started := a.unlessClosing(func() {
		a.cancel = cancel
		go func() {
			if err := a.controller.Run(ctx); err != nil {
				log.Printf("❌ 动画控制器退出: %v", err)
			}
		}()

		if a.cfg.WebPort != "" {
			a.web = a.newWebServer()
			go a.serveAPI()
		}

		fd := os.Stdin.Fd()
		if !input.IsTerminal(fd) {
			log.Println("⚠️ 标准输入不是终端，按键将按行送达")
			return
		}
		restore, err := input.MakeRaw(fd)
		if err != nil {
			log.Printf("⚠️ 无法进入原始模式，按键将按行送达: %v", err)
			return
		}
		a.restoreTerm = restore
	})
	if !started {
		cancel()
		a.gracefulShutdown()
	}

	log.Println("⌨️ 开始监听按键，按 Ctrl+C 退出")
	err := input.Listen(ctx, os.Stdin, input.Handlers{
		OnKey:       a.controller.Press,
		OnInterrupt: a.gracefulShutdown,
	})
	if err != nil {
		log.Printf("⚠️ 按键监听结束: %v", err)
	}

	a.gracefulShutdown()
	return nil
}

func main() {
	// 检查是否请求帮助
	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		return
	}

	cfg, err := cli.ParseConfig()
	if err != nil {
		log.Fatalf("❌ 解析配置失败: %v", err)
	}

	log.Printf("🚀 启动 OLED Bongo Cat")
	log.Printf("   - 应用: %s (%s)", cfg.GameName, cfg.GameDisplayName)
	log.Printf("   - 屏幕: %dx%d, 区域: %s", cfg.ScreenWidth, cfg.ScreenHeight, cfg.Zone)
	log.Printf("   - 空闲超时: %s, 心跳: %s", cfg.IdleTimeout, cfg.HeartbeatInterval)

	a, err := newApp(cfg)
	if err != nil {
		log.Fatalf("❌ 初始化失败: %v", err)
	}

	if err := a.run(); err != nil {
		if a.publisher != nil {
			a.publisher.Close()
		}
		log.Fatalf("❌ 启动失败: %v", err)
	}
}
