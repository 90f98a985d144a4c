package cloudapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "github.com/govee-lab/govee-bridge/internal/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(cfgpkg.CloudConfig{
		BaseURL:    srv.URL,
		APIKey:     "test-key",
		RatePerSec: 100,
		Burst:      10,
	}, nil, nil)
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(cfgpkg.CloudConfig{}, nil, nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestListDevices(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/user/devices", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Govee-API-Key"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"code":    200,
			"message": "success",
			"data": []map[string]any{
				{"sku": "H6160", "device": "AA:BB:CC:DD:EE:FF:00:11", "deviceName": "客厅灯带", "type": "devices.types.light"},
			},
		})
	})

	devices, err := c.ListDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "H6160", devices[0].Sku)
	assert.Equal(t, "客厅灯带", devices[0].DeviceName)
}

func TestListDevicesAPIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 401, "message": "invalid key"})
	})

	_, err := c.ListDevices(context.Background())
	assert.ErrorIs(t, err, ErrAPIFailure)
}

func TestControlDevice(t *testing.T) {
	var got controlRequest
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/device/control", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{"requestId": got.RequestID, "code": 200, "msg": "success"})
	})

	err := c.ControlDevice(context.Background(), "H6160", "AA:BB", Capability{
		Type:     "devices.capabilities.on_off",
		Instance: "powerSwitch",
		Value:    1,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, got.RequestID) // requestId 必须存在（uuid）
	assert.Equal(t, "H6160", got.Payload.Sku)
	assert.Equal(t, "powerSwitch", got.Payload.Capability.Instance)
}

func TestGetDeviceState(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/device/state", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"requestId": "rid",
			"code":      200,
			"payload": map[string]any{
				"sku":    "H6160",
				"device": "AA:BB",
				"capabilities": []map[string]any{
					{"type": "devices.capabilities.on_off", "instance": "powerSwitch", "state": map[string]any{"value": 1}},
				},
			},
		})
	})

	state, err := c.GetDeviceState(context.Background(), "H6160", "AA:BB")
	require.NoError(t, err)
	require.Len(t, state.Capabilities, 1)
	assert.Equal(t, "powerSwitch", state.Capabilities[0].Instance)
}

func TestGetDynamicScenes(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/device/scenes", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"requestId": "rid",
			"code":      200,
			"payload": map[string]any{
				"sku":    "H6160",
				"device": "AA:BB",
				"capabilities": []map[string]any{
					{
						"type":     "devices.capabilities.dynamic_scene",
						"instance": "lightScene",
						"parameters": map[string]any{
							"options": []map[string]any{
								{"name": "Sunrise", "value": map[string]any{"id": 3853, "paramId": 4280}},
							},
						},
					},
				},
			},
		})
	})

	scenes, err := c.GetDynamicScenes(context.Background(), "H6160", "AA:BB")
	require.NoError(t, err)
	require.Len(t, scenes, 1)
	assert.Equal(t, "Sunrise", scenes[0].Name)

	id, paramID, ok := scenes[0].DynamicValue()
	require.True(t, ok)
	assert.Equal(t, int64(3853), id)
	assert.Equal(t, int64(4280), paramID)
}

func TestSceneOptionDIYValue(t *testing.T) {
	opt := SceneOption{Name: "我的灯效", Value: json.RawMessage(`8216567`)}
	v, ok := opt.DIYValue()
	require.True(t, ok)
	assert.Equal(t, int64(8216567), v)

	// 动态场景的对象value不能按DIY整数解析
	opt = SceneOption{Value: json.RawMessage(`{"id":1}`)}
	_, ok = opt.DIYValue()
	assert.False(t, ok)
}
