package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bongocat/define"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default 返回内置默认配置
func Default() *define.Config {
	return &define.Config{
		GameName:          "OLED_BONGO_CAT",
		GameDisplayName:   "OLED Bongo Cat",
		Developer:         "jgrosjean",
		EventName:         "SCREEN_EVENT",
		Zone:              "one",
		ScreenWidth:       128,
		ScreenHeight:      40,
		IdleTimeout:       define.Duration(1000 * time.Millisecond),
		HeartbeatInterval: define.Duration(10 * time.Second),
		PreviewForeground: "#ffffff",
		PreviewBackground: "#000000",
		PreviewScale:      4,
		Mqtt: define.MqttConfig{
			ClientID: "bongocat",
			Topic:    "bongocat/frame",
		},
	}
}

// LoadFile 把配置文件叠加到 cfg 上，按扩展名选择 YAML 或 TOML
// 文件中未出现的字段保持原值
func LoadFile(path string, cfg *define.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取配置文件失败：%w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("解析 YAML 配置失败：%w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("解析 TOML 配置失败：%w", err)
		}
	default:
		return fmt.Errorf("不支持的配置文件格式：%s", ext)
	}

	return nil
}

// Validate 校验配置
func Validate(cfg *define.Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("配置无效：%w", err)
	}
	if (cfg.ScreenWidth*cfg.ScreenHeight)%8 != 0 {
		return fmt.Errorf("配置无效：屏幕尺寸 %dx%d 无法按字节打包", cfg.ScreenWidth, cfg.ScreenHeight)
	}
	return nil
}
