package cloudapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	cfgpkg "github.com/govee-lab/govee-bridge/internal/config"
	"github.com/govee-lab/govee-bridge/internal/metrics"
)

var (
	// ErrMissingAPIKey 未配置API Key
	ErrMissingAPIKey = errors.New("missing govee api key")
	// ErrAPIFailure 云端返回非成功code
	ErrAPIFailure = errors.New("govee api failure")
)

// Client Govee OpenAPI v2 客户端
// 自带令牌桶限流：OpenAPI按天限额，客户端侧先做平滑限速避免被封
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
	metrics *metrics.AppMetrics
}

// NewClient 创建OpenAPI客户端
func NewClient(cfg cfgpkg.CloudConfig, m *metrics.AppMetrics, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		logger:  logger,
		metrics: m,
	}, nil
}

// do 执行一次API调用：限流 → 发请求 → 读响应
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	if c.limiter != nil {
		if !c.limiter.Allow() {
			if c.metrics != nil {
				c.metrics.CloudRateWaits.Inc()
			}
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limit wait: %w", err)
			}
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Govee-API-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.countRequest(path, "error")
		return nil, fmt.Errorf("cloud request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.countRequest(path, "error")
		return nil, fmt.Errorf("read response %s: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.countRequest(path, "error")
		return nil, fmt.Errorf("%w: %s http %d: %s", ErrAPIFailure, path, resp.StatusCode, respBody)
	}

	c.countRequest(path, "ok")
	return respBody, nil
}

func (c *Client) countRequest(path, result string) {
	if c.metrics != nil {
		c.metrics.CloudRequestTotal.WithLabelValues(path, result).Inc()
	}
}

// ListDevices 拉取账号下全部设备
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	body, err := c.do(ctx, http.MethodGet, "/user/devices", nil)
	if err != nil {
		return nil, err
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal device list: %w", err)
	}
	if resp.Code != 200 {
		return nil, fmt.Errorf("%w: code %d: %s", ErrAPIFailure, resp.Code, resp.Message)
	}
	return resp.Data, nil
}

// GetDeviceState 查询设备当前状态
func (c *Client) GetDeviceState(ctx context.Context, sku, device string) (*DeviceState, error) {
	payload, err := c.postEnvelope(ctx, "/device/state", sku, device)
	if err != nil {
		return nil, err
	}

	var state DeviceState
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("unmarshal device state: %w", err)
	}
	return &state, nil
}

// ControlDevice 下发能力控制命令
func (c *Client) ControlDevice(ctx context.Context, sku, device string, capability Capability) error {
	req := controlRequest{
		RequestID: uuid.NewString(),
		Payload:   controlPayload{Sku: sku, Device: device, Capability: capability},
	}

	body, err := c.do(ctx, http.MethodPost, "/device/control", req)
	if err != nil {
		return err
	}

	var resp envelopeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("unmarshal control response: %w", err)
	}
	if resp.Code != 200 {
		return fmt.Errorf("%w: control code %d: %s", ErrAPIFailure, resp.Code, resp.Msg)
	}
	return nil
}

// GetDynamicScenes 查询设备内置动态场景
func (c *Client) GetDynamicScenes(ctx context.Context, sku, device string) ([]SceneOption, error) {
	return c.getScenes(ctx, "/device/scenes", sku, device)
}

// GetDIYScenes 查询用户自建DIY场景
func (c *Client) GetDIYScenes(ctx context.Context, sku, device string) ([]SceneOption, error) {
	return c.getScenes(ctx, "/device/diy-scenes", sku, device)
}

func (c *Client) getScenes(ctx context.Context, path, sku, device string) ([]SceneOption, error) {
	payload, err := c.postEnvelope(ctx, path, sku, device)
	if err != nil {
		return nil, err
	}

	var scenes sceneListPayload
	if err := json.Unmarshal(payload, &scenes); err != nil {
		return nil, fmt.Errorf("unmarshal scenes: %w", err)
	}

	var options []SceneOption
	for _, entry := range scenes.Capabilities {
		options = append(options, entry.Parameters.Options...)
	}
	return options, nil
}

// postEnvelope 发送requestId+payload格式请求并返回信封内payload
func (c *Client) postEnvelope(ctx context.Context, path, sku, device string) (json.RawMessage, error) {
	req := stateRequest{
		RequestID: uuid.NewString(),
		Payload:   DeviceIdentifier{Sku: sku, Device: device},
	}

	body, err := c.do(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, err
	}

	var resp envelopeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if resp.Code != 200 {
		return nil, fmt.Errorf("%w: %s code %d: %s", ErrAPIFailure, path, resp.Code, resp.Msg)
	}
	return resp.Payload, nil
}
