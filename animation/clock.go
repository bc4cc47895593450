package animation

import "time"

// Timer 是一个可取消的延迟回调
type Timer interface {
	Stop() bool
}

// Clock 用于调度空闲超时，测试中可以替换为假时钟
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// RealClock 基于 time.AfterFunc
var RealClock Clock = realClock{}
