package cli

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"bongocat/config"
	"bongocat/define"
)

// 解析配置：默认值 < 配置文件 < 命令行参数 < 环境变量
func ParseConfig() (*define.Config, error) {
	return parse(os.Args[1:], os.Getenv, os.Stderr)
}

func parse(args []string, getenv func(string) string, output io.Writer) (*define.Config, error) {
	cfg := config.Default()

	var (
		configPath   string
		address      string
		framesFile   string
		webPort      string
		mqttURL      string
		mqttTopic    string
		zone         string
		idleTimeout  time.Duration
		heartbeat    time.Duration
		screenWidth  int
		screenHeight int
	)

	// 命令行参数
	fs := flag.NewFlagSet("bongocat", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&configPath, "config", "", "YAML 或 TOML 配置文件")
	fs.StringVar(&address, "address", "", "SteelSeries Engine 地址，为空时自动发现")
	fs.StringVar(&framesFile, "frames", "", "帧素材 JSON 文件，为空时使用内置素材")
	fs.StringVar(&webPort, "port", "", "Web 服务的端口，为空时不启动")
	fs.StringVar(&mqttURL, "mqtt-url", "", "MQTT broker 地址，为空时不镜像")
	fs.StringVar(&mqttTopic, "mqtt-topic", cfg.Mqtt.Topic, "MQTT 镜像主题")
	fs.StringVar(&zone, "zone", cfg.Zone, "屏幕区域")
	fs.DurationVar(&idleTimeout, "idle-timeout", cfg.IdleTimeout.Std(), "最后一次按键后回到空闲帧的时间")
	fs.DurationVar(&heartbeat, "heartbeat", cfg.HeartbeatInterval.Std(), "心跳间隔")
	fs.IntVar(&screenWidth, "width", cfg.ScreenWidth, "屏幕宽度")
	fs.IntVar(&screenHeight, "height", cfg.ScreenHeight, "屏幕高度")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// 环境变量可以指定配置文件
	if envConfig := getenv("BONGO_CONFIG"); envConfig != "" && configPath == "" {
		configPath = envConfig
	}
	if configPath != "" {
		if err := config.LoadFile(configPath, cfg); err != nil {
			return nil, err
		}
		log.Printf("📄 已加载配置文件: %s", configPath)
	}

	// 只覆盖显式设置的参数，避免默认值盖掉配置文件
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "address":
			cfg.GameSenseAddress = address
		case "frames":
			cfg.FramesFile = framesFile
		case "port":
			cfg.WebPort = webPort
		case "mqtt-url":
			cfg.Mqtt.URL = mqttURL
		case "mqtt-topic":
			cfg.Mqtt.Topic = mqttTopic
		case "zone":
			cfg.Zone = zone
		case "idle-timeout":
			cfg.IdleTimeout = define.Duration(idleTimeout)
		case "heartbeat":
			cfg.HeartbeatInterval = define.Duration(heartbeat)
		case "width":
			cfg.ScreenWidth = screenWidth
		case "height":
			cfg.ScreenHeight = screenHeight
		}
	})

	// 环境变量覆盖命令行参数
	if envAddress := getenv("GAMESENSE_ADDRESS"); envAddress != "" {
		cfg.GameSenseAddress = envAddress
	}
	if envIdle := getenv("BONGO_IDLE_TIMEOUT"); envIdle != "" {
		if err := cfg.IdleTimeout.UnmarshalText([]byte(envIdle)); err != nil {
			return nil, fmt.Errorf("BONGO_IDLE_TIMEOUT：%w", err)
		}
	}
	if envFrames := getenv("BONGO_FRAMES_FILE"); envFrames != "" {
		cfg.FramesFile = envFrames
	}
	if envPort := getenv("WEB_PORT"); envPort != "" {
		cfg.WebPort = envPort
	}
	if envMqtt := getenv("MQTT_URL"); envMqtt != "" {
		cfg.Mqtt.URL = envMqtt
	}
	if envTopic := getenv("MQTT_TOPIC"); envTopic != "" {
		cfg.Mqtt.Topic = envTopic
	}
	if envUser := getenv("MQTT_USERNAME"); envUser != "" {
		cfg.Mqtt.Username = envUser
	}
	if envPassword := getenv("MQTT_PASSWORD"); envPassword != "" {
		cfg.Mqtt.Password = envPassword
	}

	cfg.GameSenseAddress = strings.TrimSpace(cfg.GameSenseAddress)

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
