package frames

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
)

// PreviewOptions 控制 PNG 预览的颜色和放大倍数
type PreviewOptions struct {
	Foreground string
	Background string
	Scale      int
}

// DefaultPreviewOptions 模拟白色像素的 OLED 屏
func DefaultPreviewOptions() PreviewOptions {
	return PreviewOptions{Foreground: "#ffffff", Background: "#000000", Scale: 4}
}

// Image 把一帧转换成双色调色板图像
func (f *Frame) Image(fg, bg color.Color) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, f.width, f.height), color.Palette{bg, fg})
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			if f.Pixel(x, y) {
				img.SetColorIndex(x, y, 1)
			}
		}
	}
	return img
}

// Preview 把一帧按指定颜色放大后编码为 PNG
func Preview(w io.Writer, f *Frame, opts PreviewOptions) error {
	fg, err := colorful.Hex(opts.Foreground)
	if err != nil {
		return fmt.Errorf("无效的前景色 %q：%w", opts.Foreground, err)
	}
	bg, err := colorful.Hex(opts.Background)
	if err != nil {
		return fmt.Errorf("无效的背景色 %q：%w", opts.Background, err)
	}

	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	src := f.Image(fg.Clamped(), bg.Clamped())
	dst := image.NewRGBA(image.Rect(0, 0, f.width*scale, f.height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	if err := png.Encode(w, dst); err != nil {
		return fmt.Errorf("编码 PNG 失败：%w", err)
	}
	return nil
}
