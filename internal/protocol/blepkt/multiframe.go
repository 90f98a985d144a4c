package blepkt

// 0xA3 多包协议：把场景动画数据切分为若干20字节包下发。
//
// 包布局：
//   - 首包：  [0xA3, 0x00, count, sceneType, data[0:14]...]
//   - 中间包：[0xA3, index, data[off:off+17]...]，index从1递增
//   - 尾包：  [0xA3, 0xFF, 剩余数据...]（0xFF为保留的终止下标，覆盖顺序下标）
//
// 首包头部的count等于整个序列的包数（含首包）。设备按下标顺序重组，
// 传输层必须保序且不可丢包，重试逻辑不得打乱序列。

// 多包协议常量
const (
	MultiPacketID         = 0xA3 // 多包标识
	MultiPacketFirstIndex = 0x00 // 首包下标
	MultiPacketLastIndex  = 0xFF // 尾包下标（保留值）
)

// 数据区容量：首包头占4字节，中间/尾包头占2字节
const (
	multiFirstDataSize  = 14
	multiMiddleDataSize = 17
)

// BuildMultiFrame 构造0xA3多包序列
// 每个包都经过BuildFrame独立补齐并附带校验和，恒为20字节。
// 空数据也会发出首包+尾包两个包（首包count字段为1，保持原始协议行为）。
func BuildMultiFrame(data []byte, sceneType byte) [][]byte {
	var frames [][]byte

	if len(data) == 0 {
		frames = append(frames, BuildFrame([]byte{MultiPacketID, MultiPacketFirstIndex, 1, sceneType}))
		frames = append(frames, BuildFrame([]byte{MultiPacketID, MultiPacketLastIndex}))
		return frames
	}

	firstChunk := data[:min(len(data), multiFirstDataSize)]
	remaining := data[len(firstChunk):]

	// 先算出总包数，写进首包头部
	total := 2
	if len(remaining) > 0 {
		total = 1 + (len(remaining)-1)/multiMiddleDataSize + 1
	}

	first := make([]byte, 0, 4+len(firstChunk))
	first = append(first, MultiPacketID, MultiPacketFirstIndex, byte(total), sceneType)
	first = append(first, firstChunk...)
	frames = append(frames, BuildFrame(first))

	index := byte(1)
	for offset := 0; offset < len(remaining); offset += multiMiddleDataSize {
		chunk := remaining[offset:min(offset+multiMiddleDataSize, len(remaining))]

		var header []byte
		if offset+multiMiddleDataSize >= len(remaining) {
			header = []byte{MultiPacketID, MultiPacketLastIndex}
		} else {
			header = []byte{MultiPacketID, index}
		}

		frames = append(frames, BuildFrame(append(header, chunk...)))
		index++
	}

	// 数据全部装进首包时补一个空尾包
	if len(remaining) == 0 {
		frames = append(frames, BuildFrame([]byte{MultiPacketID, MultiPacketLastIndex}))
	}

	return frames
}
