package define

// 配置结构体
type Config struct {
	// GameSense 会话
	GameSenseAddress string `yaml:"gamesense_address" toml:"gamesense_address"`
	GameName         string `yaml:"game_name" toml:"game_name" validate:"required,uppercase"`
	GameDisplayName  string `yaml:"game_display_name" toml:"game_display_name" validate:"required"`
	Developer        string `yaml:"developer" toml:"developer"`
	EventName        string `yaml:"event_name" toml:"event_name" validate:"required,uppercase"`
	Zone             string `yaml:"zone" toml:"zone" validate:"required"`

	// 屏幕
	ScreenWidth  int `yaml:"screen_width" toml:"screen_width" validate:"gt=0"`
	ScreenHeight int `yaml:"screen_height" toml:"screen_height" validate:"gt=0"`

	// 动画
	IdleTimeout       Duration `yaml:"idle_timeout" toml:"idle_timeout" validate:"gt=0"`
	HeartbeatInterval Duration `yaml:"heartbeat_interval" toml:"heartbeat_interval" validate:"gt=0"`
	FramesFile        string   `yaml:"frames_file" toml:"frames_file"`

	// 预览
	PreviewForeground string `yaml:"preview_foreground" toml:"preview_foreground" validate:"hexcolor"`
	PreviewBackground string `yaml:"preview_background" toml:"preview_background" validate:"hexcolor"`
	PreviewScale      int    `yaml:"preview_scale" toml:"preview_scale" validate:"gte=1,lte=16"`

	// Web API，端口为空时不启动
	WebPort string `yaml:"web_port" toml:"web_port" validate:"omitempty,numeric"`

	// MQTT 镜像，地址为空时不启动
	Mqtt MqttConfig `yaml:"mqtt" toml:"mqtt"`
}

// MQTT 镜像配置
type MqttConfig struct {
	URL      string `yaml:"url" toml:"url" validate:"omitempty,url"`
	ClientID string `yaml:"client_id" toml:"client_id"`
	Username string `yaml:"username" toml:"username"`
	Password string `yaml:"password" toml:"password"`
	Topic    string `yaml:"topic" toml:"topic" validate:"required_with=URL"`
}

// API 响应结构体
type ApiResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}
