//go:build linux || darwin || freebsd || netbsd || openbsd

package input

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// IsTerminal 判断 fd 是否是终端
func IsTerminal(fd uintptr) bool {
	_, err := unix.IoctlGetTermios(int(fd), ioctlReadTermios)
	return err == nil
}

// MakeRaw 关闭行缓冲、回显和信号字符，使每次按键立即送达；
// 保留输出处理，日志换行不受影响。返回值用于恢复原来的终端设置。
func MakeRaw(fd uintptr) (func() error, error) {
	old, err := unix.IoctlGetTermios(int(fd), ioctlReadTermios)
	if err != nil {
		return nil, fmt.Errorf("读取终端设置失败：%w", err)
	}

	raw := *old
	raw.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	raw.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	raw.Cflag &^= unix.CSIZE | unix.PARENB
	raw.Cflag |= unix.CS8
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(int(fd), ioctlWriteTermios, &raw); err != nil {
		return nil, fmt.Errorf("设置原始模式失败：%w", err)
	}

	return func() error {
		return unix.IoctlSetTermios(int(fd), ioctlWriteTermios, old)
	}, nil
}
