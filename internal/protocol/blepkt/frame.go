// Package blepkt 构造Govee设备的20字节BLE本地控制包。
//
// 包通过 AWS IoT 的 ptReal（passthrough real）命令以base64形式透传给设备，
// 用于控制REST API未暴露的功能（DIY速度/样式、音乐模式、场景速度等）。
//
// 包格式：
//   - 字节 0-18：命令数据（不足补0x00）
//   - 字节 19： 字节0-18的XOR校验和
package blepkt

// FrameSize BLE包固定长度（19字节数据 + 1字节校验和）
const FrameSize = 20

// framePayloadSize 数据区长度（不含校验和）
const framePayloadSize = 19

// BuildFrame 构造20字节BLE包
// 数据不足19字节时右侧补0x00；超过19字节时静默截断，超长数据
// 应走0xA3多包流程
// 该函数无失败路径，输出恒为20字节
func BuildFrame(data []byte) []byte {
	frame := make([]byte, FrameSize)
	copy(frame, data[:min(len(data), framePayloadSize)])
	frame[framePayloadSize] = Checksum(frame[:framePayloadSize])
	return frame
}
