package frames

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"bongocat/define"

	"github.com/goccy/go-json"
)

// DefaultWidth 和 DefaultHeight 是内置素材对应的屏幕尺寸
const (
	DefaultWidth  = 128
	DefaultHeight = 40
)

//go:embed assets/bongo-cat.json
var defaultAsset []byte

// ErrInvalidFrameIndex 表示帧编号超出 0-3，通常是控制器的 bug
var ErrInvalidFrameIndex = errors.New("无效的帧编号")

// Frame 是一帧不可变的单色位图，每像素 1 位，按行优先打包，高位在前
type Frame struct {
	width  int
	height int
	data   []byte
}

func (f *Frame) Width() int  { return f.width }
func (f *Frame) Height() int { return f.height }

// Bytes 返回打包数据的副本
func (f *Frame) Bytes() []byte { return bytes.Clone(f.data) }

// Pixel 判断 (x, y) 处像素是否点亮
func (f *Frame) Pixel(x, y int) bool {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return false
	}
	bit := y*f.width + x
	return f.data[bit/8]&(0x80>>(bit%8)) != 0
}

// Equal 比较两帧的尺寸和数据
func (f *Frame) Equal(other *Frame) bool {
	return other != nil && f.width == other.width && f.height == other.height && bytes.Equal(f.data, other.data)
}

// BlankImage 创建给定尺寸的全黑帧
func BlankImage(width, height int) *Frame {
	return &Frame{width: width, height: height, data: make([]byte, frameSize(width, height))}
}

func frameSize(width, height int) int { return width * height / 8 }

// Store 持有四帧动画，启动时加载一次之后只读
type Store struct {
	width  int
	height int
	frames [define.FrameCount]*Frame
}

// Load 从 JSON 素材 {"frame0": [...], ..., "frame3": [...]} 加载四帧
func Load(r io.Reader, width, height int) (*Store, error) {
	if width <= 0 || height <= 0 || (width*height)%8 != 0 {
		return nil, fmt.Errorf("屏幕尺寸 %dx%d 无法按字节打包", width, height)
	}

	var raw map[string][]int
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("解析帧素材失败：%w", err)
	}

	s := &Store{width: width, height: height}
	expected := frameSize(width, height)
	for i := define.FRAME_IDLE; i < define.FrameCount; i++ {
		key := fmt.Sprintf("frame%d", i)
		values, ok := raw[key]
		if !ok {
			return nil, fmt.Errorf("帧素材缺少 %s", key)
		}
		if len(values) != expected {
			return nil, fmt.Errorf("帧 %s 长度无效：期望 %d，实际 %d", key, expected, len(values))
		}

		data := make([]byte, expected)
		for j, v := range values {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("帧 %s 第 %d 个字节超出范围：%d", key, j, v)
			}
			data[j] = byte(v)
		}
		s.frames[i] = &Frame{width: width, height: height, data: data}
	}

	return s, nil
}

// LoadFile 从文件加载帧素材
func LoadFile(path string, width, height int) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开帧素材失败：%w", err)
	}
	defer f.Close()

	return Load(f, width, height)
}

// LoadDefault 加载内置的 128x40 素材
func LoadDefault() (*Store, error) {
	return Load(bytes.NewReader(defaultAsset), DefaultWidth, DefaultHeight)
}

// Get 按编号取帧，越界时快速失败
func (s *Store) Get(index define.FrameIndex) (*Frame, error) {
	if !index.Valid() {
		return nil, fmt.Errorf("%w：%d", ErrInvalidFrameIndex, int(index))
	}
	return s.frames[index], nil
}

// Blank 返回与素材尺寸一致的空白帧
func (s *Store) Blank() *Frame { return BlankImage(s.width, s.height) }

func (s *Store) Width() int  { return s.width }
func (s *Store) Height() int { return s.height }
