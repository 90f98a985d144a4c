package blepkt

import (
	"bytes"
	"testing"
)

func seqData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 256)
	}
	return data
}

func TestBuildMultiFrameEmpty(t *testing.T) {
	frames := BuildMultiFrame(nil, 2)

	if len(frames) != 2 {
		t.Fatalf("frames = %d, expected 2", len(frames))
	}

	first, last := frames[0], frames[1]
	if first[0] != MultiPacketID || first[1] != MultiPacketFirstIndex {
		t.Errorf("first header = % X, expected A3 00", first[:2])
	}
	if first[2] != 1 {
		t.Errorf("first count = %d, expected 1", first[2])
	}
	if first[3] != 2 {
		t.Errorf("first sceneType = %d, expected 2", first[3])
	}
	if last[0] != MultiPacketID || last[1] != MultiPacketLastIndex {
		t.Errorf("last header = % X, expected A3 FF", last[:2])
	}
}

// TestBuildMultiFrameSmallData 数据装得进首包时仍补一个空尾包
func TestBuildMultiFrameSmallData(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	frames := BuildMultiFrame(data, 2)

	if len(frames) != 2 {
		t.Fatalf("frames = %d, expected 2", len(frames))
	}
	if !bytes.Equal(frames[0][4:9], data) {
		t.Errorf("first data = % X, expected % X", frames[0][4:9], data)
	}
	if frames[0][2] != 2 {
		t.Errorf("count = %d, expected 2", frames[0][2])
	}
	if frames[1][1] != MultiPacketLastIndex {
		t.Errorf("last index = 0x%02X, expected 0xFF", frames[1][1])
	}
}

func TestBuildMultiFrameFirstHeader(t *testing.T) {
	frames := BuildMultiFrame(seqData(20), 2)

	first := frames[0]
	if first[0] != MultiPacketID {
		t.Errorf("byte0 = 0x%02X, expected 0xA3", first[0])
	}
	if first[1] != MultiPacketFirstIndex {
		t.Errorf("byte1 = 0x%02X, expected 0x00", first[1])
	}
	if int(first[2]) != len(frames) {
		t.Errorf("count = %d, expected %d", first[2], len(frames))
	}
	if first[3] != 2 {
		t.Errorf("sceneType = %d, expected 2", first[3])
	}
}

func TestBuildMultiFrameSceneType(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	for _, sceneType := range []byte{1, 2, 3} {
		frames := BuildMultiFrame(data, sceneType)
		if frames[0][3] != sceneType {
			t.Errorf("sceneType = %d, expected %d", frames[0][3], sceneType)
		}
	}
}

// TestBuildMultiFrameInvariants 各种长度下的序列不变量
func TestBuildMultiFrameInvariants(t *testing.T) {
	tests := []struct {
		name string
		size int
		want int // 期望包数
	}{
		{"1字节", 1, 2},
		{"5字节", 5, 2},
		{"恰好装满首包", 14, 2},
		{"首包+1字节", 15, 2},
		{"首包+尾包装满", 31, 2},
		{"首包+中间包边界", 32, 3},
		{"恰好两个中间块", 48, 3},
		{"三包", 50, 4},
		{"大数据", 100, 7}, // 14 + 5*17 = 99, 剩1字节进尾包
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames := BuildMultiFrame(seqData(tt.size), 2)

			if len(frames) != tt.want {
				t.Fatalf("frames = %d, expected %d", len(frames), tt.want)
			}
			if int(frames[0][2]) != len(frames) {
				t.Errorf("embedded count = %d, expected %d", frames[0][2], len(frames))
			}

			last := frames[len(frames)-1]
			if last[1] != MultiPacketLastIndex {
				t.Errorf("last index = 0x%02X, expected 0xFF", last[1])
			}

			// 每个包独立满足20字节+校验和不变量，且中间包下标顺序递增
			for i, f := range frames {
				if len(f) != FrameSize {
					t.Errorf("frame[%d] length = %d, expected %d", i, len(f), FrameSize)
				}
				if f[0] != MultiPacketID {
					t.Errorf("frame[%d] byte0 = 0x%02X, expected 0xA3", i, f[0])
				}
				if f[19] != Checksum(f[:19]) {
					t.Errorf("frame[%d] checksum invalid", i)
				}
				if i > 0 && i < len(frames)-1 && f[1] != byte(i) {
					t.Errorf("frame[%d] index = %d, expected %d", i, f[1], i)
				}
			}
		})
	}
}

// TestBuildMultiFrameReassembly 按协议布局重组后应还原出原始数据
func TestBuildMultiFrameReassembly(t *testing.T) {
	for _, size := range []int{1, 5, 14, 15, 31, 32, 48, 50, 100, 200} {
		data := seqData(size)
		frames := BuildMultiFrame(data, 2)

		var out []byte
		remaining := size
		for i, f := range frames {
			var chunk []byte
			if i == 0 {
				chunk = f[4 : 4+min(remaining, multiFirstDataSize)]
			} else {
				chunk = f[2 : 2+min(remaining, multiMiddleDataSize)]
			}
			out = append(out, chunk...)
			remaining -= len(chunk)
		}

		if !bytes.Equal(out, data) {
			t.Errorf("size=%d: reassembled data mismatch", size)
		}
	}
}
