package input

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
)

// CtrlC 在原始模式下表示请求退出，而不是一次按键
const CtrlC = 0x03

// Handlers 是按键监听的回调
type Handlers struct {
	// OnKey 每次按键调用一次，返回错误时停止监听
	OnKey func() error
	// OnInterrupt 收到 Ctrl+C 时调用，之后停止监听
	OnInterrupt func()
}

// Listen 从原始模式的输入流读取按键，每次读取到的数据块算作一次按键
// 在 EOF、Ctrl+C、回调出错或 ctx 取消后返回
func Listen(ctx context.Context, r io.Reader, h Handlers) error {
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		if ctx.Err() != nil {
			return nil
		}

		if n > 0 {
			if bytes.IndexByte(buf[:n], CtrlC) >= 0 {
				if h.OnInterrupt != nil {
					h.OnInterrupt()
				}
				return nil
			}
			if h.OnKey != nil {
				if keyErr := h.OnKey(); keyErr != nil {
					return keyErr
				}
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("读取按键失败：%w", err)
		}
	}
}
