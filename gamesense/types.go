package gamesense

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Game 描述在 SteelSeries Engine 中注册的应用
type Game struct {
	Name        string // 只能包含大写字母、数字、连字符和下划线
	DisplayName string
	Developer   string
}

// ImageData 是打包好的单色位图，序列化为数字数组而不是 base64
type ImageData []byte

func (d ImageData) MarshalJSON() ([]byte, error) {
	values := make([]int, len(d))
	for i, b := range d {
		values[i] = int(b)
	}
	return json.Marshal(values)
}

func (d *ImageData) UnmarshalJSON(data []byte) error {
	var values []int
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	out := make(ImageData, len(values))
	for i, v := range values {
		if v < 0 || v > 255 {
			return fmt.Errorf("image-data 第 %d 个字节超出范围：%d", i, v)
		}
		out[i] = byte(v)
	}
	*d = out
	return nil
}

// ScreenData 是屏幕处理器的一帧内容
type ScreenData struct {
	HasText   bool      `json:"has-text"`
	ImageData ImageData `json:"image-data"`
}

// ScreenHandler 把事件绑定到某个带屏设备的区域
type ScreenHandler struct {
	DeviceType string       `json:"device-type"`
	Zone       string       `json:"zone"`
	Mode       string       `json:"mode"`
	Datas      []ScreenData `json:"datas"`
}

// NewScreenHandler 创建屏幕模式的处理器
func NewScreenHandler(width, height int, zone string, initial ImageData) ScreenHandler {
	return ScreenHandler{
		DeviceType: DeviceType(width, height),
		Zone:       zone,
		Mode:       "screen",
		Datas:      []ScreenData{{HasText: false, ImageData: initial}},
	}
}

// Event 是一次屏幕事件更新
type Event struct {
	Name  string
	Value int
	Frame map[string]ImageData
}

// DeviceType 返回指定分辨率的设备类型，例如 "screened-128x40"
func DeviceType(width, height int) string {
	return fmt.Sprintf("screened-%dx%d", width, height)
}

// ImageDataKey 返回事件帧中图像数据的键，例如 "image-data-128x40"
func ImageDataKey(width, height int) string {
	return fmt.Sprintf("image-data-%dx%d", width, height)
}

type gameMetadataRequest struct {
	Game            string `json:"game"`
	GameDisplayName string `json:"game_display_name,omitempty"`
	Developer       string `json:"developer,omitempty"`
}

type bindEventRequest struct {
	Game          string          `json:"game"`
	Event         string          `json:"event"`
	MinValue      int             `json:"min_value"`
	MaxValue      int             `json:"max_value"`
	ValueOptional bool            `json:"value_optional"`
	Handlers      []ScreenHandler `json:"handlers"`
}

type eventData struct {
	Value int                  `json:"value"`
	Frame map[string]ImageData `json:"frame,omitempty"`
}

type gameEventRequest struct {
	Game  string    `json:"game"`
	Event string    `json:"event"`
	Data  eventData `json:"data"`
}

type gameRequest struct {
	Game string `json:"game"`
}

// StatusError 表示 SteelSeries Engine 返回了非 200 响应
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GameSense %s 返回错误：%d, %s", e.Endpoint, e.Code, e.Body)
}
