package blepkt

import "testing"

func TestChecksum(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected byte
	}{
		{
			name:     "空数据",
			data:     []byte{},
			expected: 0x00,
		},
		{
			name:     "单字节",
			data:     []byte{0xA1},
			expected: 0xA1,
		},
		{
			name:     "两字节",
			data:     []byte{0xA1, 0x02},
			expected: 0xA3, // 0xA1 ^ 0x02
		},
		{
			name:     "DIY速度包头",
			data:     []byte{0xA1, 0x02, 0x01, 0x00, 0x00, 0x32},
			expected: 0xA1 ^ 0x02 ^ 0x01 ^ 0x00 ^ 0x00 ^ 0x32,
		},
		{
			name:     "全零",
			data:     []byte{0x00, 0x00, 0x00},
			expected: 0x00,
		},
		{
			name:     "奇数个0xFF",
			data:     []byte{0xFF, 0xFF, 0xFF},
			expected: 0xFF,
		},
		{
			name:     "偶数个0xFF",
			data:     []byte{0xFF, 0xFF},
			expected: 0x00,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Checksum(tt.data)
			if result != tt.expected {
				t.Errorf("Checksum() = 0x%02X, expected 0x%02X", result, tt.expected)
			}
		})
	}
}

// TestChecksumDeterministic 同一输入校验和恒定，且自身异或归零
func TestChecksumDeterministic(t *testing.T) {
	data := []byte{0x33, 0x05, 0x01, 0x01, 0x32, 0x7F, 0x80}

	a := Checksum(data)
	b := Checksum(data)
	if a != b {
		t.Errorf("Checksum() not deterministic: 0x%02X != 0x%02X", a, b)
	}
	if a^b != 0 {
		t.Errorf("Checksum(s) ^ Checksum(s) = 0x%02X, expected 0", a^b)
	}
}
