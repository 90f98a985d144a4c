package cloudapi

import "encoding/json"

// Govee OpenAPI v2 请求/响应结构。
// 所有请求遵循 v2 格式：requestId + payload。

// DeviceIdentifier 请求载荷中的设备标识
type DeviceIdentifier struct {
	Sku    string `json:"sku"`    // 产品型号，如 H6160
	Device string `json:"device"` // MAC形式的设备标识
}

// Capability 能力命令（下行控制用）
type Capability struct {
	Type     string `json:"type"`     // 如 devices.capabilities.on_off
	Instance string `json:"instance"` // 如 powerSwitch
	Value    any    `json:"value"`    // 类型随能力而定：int、string或对象
}

// stateRequest 状态查询/场景查询请求体（POST /device/state 等）
type stateRequest struct {
	RequestID string           `json:"requestId"`
	Payload   DeviceIdentifier `json:"payload"`
}

// controlRequest 控制请求体（POST /device/control）
type controlRequest struct {
	RequestID string         `json:"requestId"`
	Payload   controlPayload `json:"payload"`
}

type controlPayload struct {
	Sku        string     `json:"sku"`
	Device     string     `json:"device"`
	Capability Capability `json:"capability"`
}

// Device 设备元信息（GET /user/devices）
type Device struct {
	Sku          string             `json:"sku"`
	Device       string             `json:"device"`
	DeviceName   string             `json:"deviceName"`
	Type         string             `json:"type"`
	Capabilities []DeviceCapability `json:"capabilities"`
}

// DeviceCapability 设备能力描述
type DeviceCapability struct {
	Type       string          `json:"type"`
	Instance   string          `json:"instance"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
}

// CapabilityState 状态查询返回的单项能力状态
type CapabilityState struct {
	Type     string `json:"type"`
	Instance string `json:"instance"`
	State    struct {
		Value any `json:"value"`
	} `json:"state"`
}

// DeviceState 设备状态（POST /device/state 的payload）
type DeviceState struct {
	Sku          string            `json:"sku"`
	Device       string            `json:"device"`
	Capabilities []CapabilityState `json:"capabilities"`
}

// SceneOption 场景选项：动态场景value为对象（含id/paramId），DIY场景value为整数
type SceneOption struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// DIYValue 解析DIY场景的整数value
func (o SceneOption) DIYValue() (int64, bool) {
	var v int64
	if err := json.Unmarshal(o.Value, &v); err != nil {
		return 0, false
	}
	return v, true
}

// DynamicValue 解析动态场景的对象value
func (o SceneOption) DynamicValue() (id int64, paramID int64, ok bool) {
	var v struct {
		ID      int64 `json:"id"`
		ParamID int64 `json:"paramId"`
	}
	if err := json.Unmarshal(o.Value, &v); err != nil {
		return 0, 0, false
	}
	return v.ID, v.ParamID, true
}

// listResponse 设备列表响应
type listResponse struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Data    []Device `json:"data"`
}

// envelopeResponse 通用响应信封（state/control/scenes）
type envelopeResponse struct {
	RequestID string          `json:"requestId"`
	Code      int             `json:"code"`
	Msg       string          `json:"msg"`
	Payload   json.RawMessage `json:"payload"`
}

// sceneListPayload 场景查询payload：能力列表中parameters.options为场景选项
type sceneListPayload struct {
	Sku          string `json:"sku"`
	Device       string `json:"device"`
	Capabilities []struct {
		Type       string `json:"type"`
		Instance   string `json:"instance"`
		Parameters struct {
			Options []SceneOption `json:"options"`
		} `json:"parameters"`
	} `json:"capabilities"`
}
