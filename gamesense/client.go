package gamesense

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// 事件取值范围覆盖全部四帧
const (
	minEventValue = 0
	maxEventValue = 3
)

// DefaultHeartbeatInterval 小于 Engine 默认的 15 秒超时
const DefaultHeartbeatInterval = 10 * time.Second

// Session 定义了与 SteelSeries Engine 会话交互的接口
type Session interface {
	// RegisterGame 注册应用元数据，必须在绑定事件之前成功
	RegisterGame(ctx context.Context) error

	// BindEvent 把命名事件绑定到一组屏幕处理器
	BindEvent(ctx context.Context, event string, handlers []ScreenHandler) error

	// SendGameEventUpdate 推送一次事件更新
	SendGameEventUpdate(ctx context.Context, event Event) error

	// StartHeartbeatSending 开始周期性发送心跳
	StartHeartbeatSending()

	// StopHeartbeatSending 停止心跳，可重复调用
	StopHeartbeatSending()

	// StopGame 通知 Engine 应用已停止
	StopGame(ctx context.Context) error

	// RemoveGame 从 Engine 中移除应用
	RemoveGame(ctx context.Context) error
}

// GameClient 通过 HTTP 与 SteelSeries Engine 通信
type GameClient struct {
	baseURL   string
	game      Game
	client    *http.Client
	heartbeat time.Duration

	hbMutex sync.Mutex
	hbStop  chan struct{}
	hbDone  chan struct{}
}

// NewGameClient 创建 GameSense 客户端，address 形如 "127.0.0.1:51248"
func NewGameClient(address string, game Game, heartbeat time.Duration) *GameClient {
	baseURL := strings.TrimRight(address, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeatInterval
	}

	return &GameClient{
		baseURL:   baseURL,
		game:      game,
		client:    &http.Client{Timeout: 5 * time.Second},
		heartbeat: heartbeat,
	}
}

func (c *GameClient) Game() Game { return c.game }

func (c *GameClient) post(ctx context.Context, endpoint string, payload any) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化 %s 请求失败：%w", endpoint, err)
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("创建 HTTP 请求失败：%w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("发送 %s 请求失败：%w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: string(body)}
	}

	return nil
}

func (c *GameClient) RegisterGame(ctx context.Context) error {
	return c.post(ctx, "game_metadata", gameMetadataRequest{
		Game:            c.game.Name,
		GameDisplayName: c.game.DisplayName,
		Developer:       c.game.Developer,
	})
}

func (c *GameClient) BindEvent(ctx context.Context, event string, handlers []ScreenHandler) error {
	return c.post(ctx, "bind_game_event", bindEventRequest{
		Game:          c.game.Name,
		Event:         event,
		MinValue:      minEventValue,
		MaxValue:      maxEventValue,
		ValueOptional: true,
		Handlers:      handlers,
	})
}

func (c *GameClient) SendGameEventUpdate(ctx context.Context, event Event) error {
	return c.post(ctx, "game_event", gameEventRequest{
		Game:  c.game.Name,
		Event: event.Name,
		Data:  eventData{Value: event.Value, Frame: event.Frame},
	})
}

func (c *GameClient) StopGame(ctx context.Context) error {
	return c.post(ctx, "stop_game", gameRequest{Game: c.game.Name})
}

func (c *GameClient) RemoveGame(ctx context.Context) error {
	return c.post(ctx, "remove_game", gameRequest{Game: c.game.Name})
}

// SendHeartbeat 发送一次心跳
func (c *GameClient) SendHeartbeat(ctx context.Context) error {
	return c.post(ctx, "game_heartbeat", gameRequest{Game: c.game.Name})
}

func (c *GameClient) StartHeartbeatSending() {
	c.hbMutex.Lock()
	defer c.hbMutex.Unlock()

	if c.hbStop != nil {
		return
	}

	c.hbStop = make(chan struct{})
	c.hbDone = make(chan struct{})
	go c.heartbeatLoop(c.hbStop, c.hbDone)
}

func (c *GameClient) StopHeartbeatSending() {
	c.hbMutex.Lock()
	stop, done := c.hbStop, c.hbDone
	c.hbStop, c.hbDone = nil, nil
	c.hbMutex.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (c *GameClient) heartbeatLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), c.heartbeat)
			if err := c.SendHeartbeat(ctx); err != nil {
				log.Printf("⚠️ 发送心跳失败: %v", err)
			}
			cancel()
		}
	}
}
