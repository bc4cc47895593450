package input

import (
	"fmt"

	"golang.org/x/sys/windows"
)

func IsTerminal(fd uintptr) bool {
	var mode uint32
	return windows.GetConsoleMode(windows.Handle(fd), &mode) == nil
}

// MakeRaw 关闭控制台的行输入、回显和 Ctrl+C 处理
func MakeRaw(fd uintptr) (func() error, error) {
	var old uint32
	if err := windows.GetConsoleMode(windows.Handle(fd), &old); err != nil {
		return nil, fmt.Errorf("读取控制台模式失败：%w", err)
	}

	raw := old &^ (windows.ENABLE_ECHO_INPUT | windows.ENABLE_PROCESSED_INPUT | windows.ENABLE_LINE_INPUT)
	raw |= windows.ENABLE_VIRTUAL_TERMINAL_INPUT
	if err := windows.SetConsoleMode(windows.Handle(fd), raw); err != nil {
		return nil, fmt.Errorf("设置原始模式失败：%w", err)
	}

	return func() error {
		return windows.SetConsoleMode(windows.Handle(fd), old)
	}, nil
}
