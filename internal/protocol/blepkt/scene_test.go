package blepkt

import (
	"encoding/base64"
	"errors"
	"testing"
)

func b64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

func TestPatchSceneSpeed(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		speedIndex int
		newSpeed   int
		wantByte   byte
	}{
		{"中间位置", []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x50, 0x07, 0x08}, 5, 75, 75},
		{"首字节", []byte{0x50, 0x02, 0x03}, 0, 25, 25},
		{"末字节", []byte{0x01, 0x02, 0x50}, 2, 99, 99},
		{"下限钳位到1", []byte{0x50}, 0, 0, 1},
		{"负值钳位到1", []byte{0x50}, 0, -20, 1},
		{"上限钳位到100", []byte{0x50}, 0, 150, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			modified, err := PatchSceneSpeed(b64(tt.data), tt.speedIndex, tt.newSpeed)
			if err != nil {
				t.Fatalf("PatchSceneSpeed() error = %v", err)
			}
			if len(modified) != len(tt.data) {
				t.Fatalf("length = %d, expected %d", len(modified), len(tt.data))
			}
			if modified[tt.speedIndex] != tt.wantByte {
				t.Errorf("speed byte = %d, expected %d", modified[tt.speedIndex], tt.wantByte)
			}
			// 其余字节必须原样保留
			for i, b := range tt.data {
				if i != tt.speedIndex && modified[i] != b {
					t.Errorf("byte[%d] = 0x%02X, expected 0x%02X (untouched)", i, modified[i], b)
				}
			}
		})
	}
}

func TestPatchSceneSpeedInvalidBase64(t *testing.T) {
	_, err := PatchSceneSpeed("not-valid-base64!!!", 0, 50)
	if err == nil {
		t.Fatal("PatchSceneSpeed() expected error for invalid base64")
	}
	if !errors.Is(err, ErrInvalidSceneParam) {
		t.Errorf("error = %v, expected ErrInvalidSceneParam", err)
	}
}

func TestPatchSceneSpeedOutOfBounds(t *testing.T) {
	data := b64([]byte{0x01, 0x02, 0x03})

	tests := []struct {
		name       string
		speedIndex int
	}{
		{"负下标", -1},
		{"等于长度", 3},
		{"远超长度", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PatchSceneSpeed(data, tt.speedIndex, 50)
			if !errors.Is(err, ErrSpeedIndexOutOfRange) {
				t.Errorf("error = %v, expected ErrSpeedIndexOutOfRange", err)
			}
		})
	}
}
