package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/govee-lab/govee-bridge/internal/cloudapi"
	"github.com/govee-lab/govee-bridge/internal/scenes"
)

// CloudGateway 云端设备操作抽象（由cloudapi.Client实现）
type CloudGateway interface {
	ListDevices(ctx context.Context) ([]cloudapi.Device, error)
	GetDeviceState(ctx context.Context, sku, device string) (*cloudapi.DeviceState, error)
	ControlDevice(ctx context.Context, sku, device string, capability cloudapi.Capability) error
}

// DeviceHandler 设备查询与云端控制处理器
type DeviceHandler struct {
	cloud   CloudGateway
	library *scenes.Library
	logger  *zap.Logger
}

// NewDeviceHandler 创建设备处理器
func NewDeviceHandler(cloud CloudGateway, library *scenes.Library, logger *zap.Logger) *DeviceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeviceHandler{cloud: cloud, library: library, logger: logger}
}

// deviceQuery 设备标识统一走query参数（MAC形式device含冒号，不适合放path）
func deviceQuery(c *gin.Context) (sku, device string, ok bool) {
	sku = c.Query("sku")
	device = c.Query("device")
	if sku == "" || device == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sku and device query params required"})
		return "", "", false
	}
	return sku, device, true
}

// ListDevices 查询账号下设备列表
func (h *DeviceHandler) ListDevices(c *gin.Context) {
	devices, err := h.cloud.ListDevices(c.Request.Context())
	if err != nil {
		h.logger.Error("list devices failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if devices == nil {
		devices = []cloudapi.Device{}
	}
	c.JSON(http.StatusOK, gin.H{"devices": devices})
}

// GetDeviceState 查询设备当前状态
func (h *DeviceHandler) GetDeviceState(c *gin.Context) {
	sku, device, ok := deviceQuery(c)
	if !ok {
		return
	}

	state, err := h.cloud.GetDeviceState(c.Request.Context(), sku, device)
	if err != nil {
		h.logger.Error("get device state failed",
			zap.String("sku", sku), zap.String("device", device), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// ListDynamicScenes 查询设备内置动态场景目录（带缓存）
func (h *DeviceHandler) ListDynamicScenes(c *gin.Context) {
	sku, device, ok := deviceQuery(c)
	if !ok {
		return
	}

	options, err := h.library.DynamicScenes(c.Request.Context(), sku, device)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if options == nil {
		options = []cloudapi.SceneOption{}
	}
	c.JSON(http.StatusOK, gin.H{"scenes": options})
}

// ListDIYScenes 查询用户DIY场景目录（带缓存）
func (h *DeviceHandler) ListDIYScenes(c *gin.Context) {
	sku, device, ok := deviceQuery(c)
	if !ok {
		return
	}

	options, err := h.library.DIYScenes(c.Request.Context(), sku, device)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if options == nil {
		options = []cloudapi.SceneOption{}
	}
	c.JSON(http.StatusOK, gin.H{"scenes": options})
}

// controlDeviceRequest 云端能力控制请求
type controlDeviceRequest struct {
	Sku        string              `json:"sku" binding:"required"`
	Device     string              `json:"device" binding:"required"`
	Capability cloudapi.Capability `json:"capability" binding:"required"`
}

// ControlDevice 经OpenAPI下发能力控制命令
func (h *DeviceHandler) ControlDevice(c *gin.Context) {
	var req controlDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.cloud.ControlDevice(c.Request.Context(), req.Sku, req.Device, req.Capability); err != nil {
		h.logger.Error("control device failed",
			zap.String("sku", req.Sku), zap.String("device", req.Device), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// diySceneRequest 按名称激活DIY场景请求
type diySceneRequest struct {
	Sku    string `json:"sku" binding:"required"`
	Device string `json:"device" binding:"required"`
	Name   string `json:"name" binding:"required"`
}

// ActivateDIYScene 按名称查找DIY场景并经云端激活
func (h *DeviceHandler) ActivateDIYScene(c *gin.Context) {
	var req diySceneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	value, err := h.library.FindDIYScene(ctx, req.Sku, req.Device, req.Name)
	if err != nil {
		if errors.Is(err, scenes.ErrSceneNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	capability := cloudapi.Capability{
		Type:     "devices.capabilities.dynamic_scene",
		Instance: "diyScene",
		Value:    value,
	}
	if err := h.cloud.ControlDevice(ctx, req.Sku, req.Device, capability); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "value": value})
}
