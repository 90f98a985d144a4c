package blepkt

import (
	"encoding/base64"
	"errors"
	"fmt"
)

var (
	// ErrInvalidSceneParam scenceParam不是合法的base64
	ErrInvalidSceneParam = errors.New("invalid base64 scenceParam")
	// ErrSpeedIndexOutOfRange speedIndex超出动画数据范围
	ErrSpeedIndexOutOfRange = errors.New("speedIndex out of bounds")
)

// PatchSceneSpeed 修改场景动画数据中的速度字节
//
// scenceParam是灯效库下发的base64动画数据，对编码层完全不透明；speedIndex
// 指出速度字节在解码后数据中的位置。除该字节外其余内容原样保留。
//
// 速度钳位到 [1,100]：与其他命令的下限0不同，普通场景的动画速度硬件下限
// 为1，此处必须保持不一致（两套范围都是协议实测结果，不要统一）。
//
// 这是编码层仅有的两个失败路径：base64解码失败、下标越界。
func PatchSceneSpeed(sceneParamB64 string, speedIndex, newSpeed int) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(sceneParamB64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSceneParam, err)
	}

	if speedIndex < 0 || speedIndex >= len(data) {
		return nil, fmt.Errorf("%w: speedIndex %d, data length %d",
			ErrSpeedIndexOutOfRange, speedIndex, len(data))
	}

	data[speedIndex] = byte(clamp(newSpeed, 1, 100))
	return data, nil
}
