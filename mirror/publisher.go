package mirror

import (
	"context"
	"fmt"
	"log"
	"time"

	"bongocat/define"
	"bongocat/frames"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/goccy/go-json"
)

// Message 是发布到 MQTT 的帧镜像
type Message struct {
	Value  int    `json:"value"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Frame  []byte `json:"frame"`
}

// Publisher 把每次推送的帧镜像发布到 MQTT 主题
type Publisher struct {
	client mqtt.Client
	topic  string
}

// NewPublisher 使用已有的 MQTT 客户端创建镜像发布者
func NewPublisher(client mqtt.Client, topic string) *Publisher {
	return &Publisher{client: client, topic: topic}
}

// Dial 根据配置连接 MQTT broker
func Dial(cfg define.MqttConfig) (*Publisher, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "bongocat"
	}

	options := mqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(clientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(mqtt.Client) {
			log.Printf("✅ 已连接 MQTT broker: %s", cfg.URL)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Printf("⚠️ MQTT 连接断开: %v", err)
		})
	client := mqtt.NewClient(options)

	if token := client.Connect(); token.WaitTimeout(10*time.Second) && token.Error() != nil {
		return nil, fmt.Errorf("连接 MQTT broker 失败：%w", token.Error())
	} else if !client.IsConnectionOpen() {
		return nil, fmt.Errorf("连接 MQTT broker 超时：%s", cfg.URL)
	}

	return NewPublisher(client, cfg.Topic), nil
}

// ShowFrame 以 QoS 0、非保留消息发布一帧
func (p *Publisher) ShowFrame(ctx context.Context, index define.FrameIndex, frame *frames.Frame) error {
	payload, err := json.Marshal(Message{
		Value:  int(index),
		Name:   index.String(),
		Width:  frame.Width(),
		Height: frame.Height(),
		Frame:  frame.Bytes(),
	})
	if err != nil {
		return fmt.Errorf("序列化镜像消息失败：%w", err)
	}

	token := p.client.Publish(p.topic, 0, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close 断开 MQTT 连接
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
