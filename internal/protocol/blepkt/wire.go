package blepkt

import "encoding/base64"

// EncodeBase64 把20字节包编码为ptReal传输用的base64字符串
// 20字节输入恒定得到28个ASCII字符（含填充），可逆
func EncodeBase64(frame []byte) string {
	return base64.StdEncoding.EncodeToString(frame)
}

// EncodeFrames 批量编码多包序列，保持原有顺序
func EncodeFrames(frames [][]byte) []string {
	encoded := make([]string, len(frames))
	for i, f := range frames {
		encoded[i] = EncodeBase64(f)
	}
	return encoded
}
