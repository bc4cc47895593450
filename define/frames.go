package define

// FrameIndex 动画帧编号
type FrameIndex int

const (
	FRAME_IDLE       FrameIndex = 0 // 双手抬起
	FRAME_LEFT_DOWN  FrameIndex = 1 // 左手按下
	FRAME_RIGHT_DOWN FrameIndex = 2 // 右手按下
	FRAME_BOTH_DOWN  FrameIndex = 3 // 双手按下，控制器不会进入该帧

	FrameCount = 4
)

func (fi FrameIndex) Valid() bool { return fi >= FRAME_IDLE && fi < FrameCount }

func (fi FrameIndex) String() string {
	switch fi {
	case FRAME_IDLE:
		return "idle"
	case FRAME_LEFT_DOWN:
		return "left_down"
	case FRAME_RIGHT_DOWN:
		return "right_down"
	case FRAME_BOTH_DOWN:
		return "both_down"
	}
	return "unknown"
}
