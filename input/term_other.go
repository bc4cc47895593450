//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !windows

package input

import (
	"fmt"
	"runtime"
)

func IsTerminal(fd uintptr) bool { return false }

func MakeRaw(fd uintptr) (func() error, error) {
	return nil, fmt.Errorf("不支持在 %s 上设置原始模式", runtime.GOOS)
}
