package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/govee-lab/govee-bridge/internal/control"
	"github.com/govee-lab/govee-bridge/internal/protocol/blepkt"
	"github.com/govee-lab/govee-bridge/internal/scenes"
)

// ControlHandler 本地BLE透传控制处理器
// 所有命令经AWS IoT MQTT透传到设备，svc为nil表示透传通道未启用
type ControlHandler struct {
	svc    *control.Service
	logger *zap.Logger
}

// NewControlHandler 创建透传控制处理器
func NewControlHandler(svc *control.Service, logger *zap.Logger) *ControlHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ControlHandler{svc: svc, logger: logger}
}

// ensureEnabled 透传通道未启用时统一返回503
func (h *ControlHandler) ensureEnabled(c *gin.Context) bool {
	if h.svc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "iot passthrough channel disabled"})
		return false
	}
	return true
}

// resolveStyle 样式参数既接受显示名（Fade/Jumping/...）也接受数字
func resolveStyle(raw string) (int, error) {
	if s, ok := blepkt.StyleFromName(raw); ok {
		return int(s), nil
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v, nil
	}
	return 0, fmt.Errorf("unknown style %q, expect one of %v or a number", raw, blepkt.StyleNames())
}

// diyStyleRequest DIY样式切换请求
// speed缺省为50（样式切换包必须携带速度字节）
type diyStyleRequest struct {
	Topic string `json:"topic" binding:"required"` // 设备MQTT topic
	Style string `json:"style" binding:"required"`
	Speed *int   `json:"speed"`
}

// SetDIYStyle 切换DIY场景动画样式
func (h *ControlHandler) SetDIYStyle(c *gin.Context) {
	if !h.ensureEnabled(c) {
		return
	}
	var req diyStyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	style, err := resolveStyle(req.Style)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	speed := 50
	if req.Speed != nil {
		speed = *req.Speed
	}

	if err := h.svc.SetDIYStyle(c.Request.Context(), req.Topic, style, speed); err != nil {
		h.publishError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// diySpeedRequest DIY速度调整请求
// activeStyle必须与设备当前激活场景的样式一致，否则设备静默忽略
type diySpeedRequest struct {
	Topic       string `json:"topic" binding:"required"`
	Speed       int    `json:"speed"`
	ActiveStyle string `json:"activeStyle" binding:"required"`
}

// SetDIYSpeed 调整DIY场景播放速度
func (h *ControlHandler) SetDIYSpeed(c *gin.Context) {
	if !h.ensureEnabled(c) {
		return
	}
	var req diySpeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	style, err := resolveStyle(req.ActiveStyle)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.SetDIYSpeed(c.Request.Context(), req.Topic, req.Speed, style); err != nil {
		h.publishError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// musicModeRequest 音乐模式开关请求
// sensitivity缺省为50
type musicModeRequest struct {
	Topic       string `json:"topic" binding:"required"`
	Enabled     *bool  `json:"enabled" binding:"required"`
	Sensitivity *int   `json:"sensitivity"`
}

// SetMusicMode 开关音乐律动模式
func (h *ControlHandler) SetMusicMode(c *gin.Context) {
	if !h.ensureEnabled(c) {
		return
	}
	var req musicModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sensitivity := 50
	if req.Sensitivity != nil {
		sensitivity = *req.Sensitivity
	}

	if err := h.svc.SetMusicMode(c.Request.Context(), req.Topic, *req.Enabled, sensitivity); err != nil {
		h.publishError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// sceneSpeedRequest 普通场景速度请求
type sceneSpeedRequest struct {
	Topic string `json:"topic" binding:"required"`
	Speed int    `json:"speed"`
}

// SetSceneSpeed 调整普通场景播放速度
func (h *ControlHandler) SetSceneSpeed(c *gin.Context) {
	if !h.ensureEnabled(c) {
		return
	}
	var req sceneSpeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.SetSceneSpeed(c.Request.Context(), req.Topic, req.Speed); err != nil {
		h.publishError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// sceneActivateRequest 场景激活请求
type sceneActivateRequest struct {
	Topic     string `json:"topic" binding:"required"`
	SceneCode int    `json:"sceneCode"`
}

// ActivateScene 按场景码激活场景
func (h *ControlHandler) ActivateScene(c *gin.Context) {
	if !h.ensureEnabled(c) {
		return
	}
	var req sceneActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.ActivateScene(c.Request.Context(), req.Topic, req.SceneCode); err != nil {
		h.publishError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// effectSpeedRequest 灯效速度调整请求（多包流程）
type effectSpeedRequest struct {
	Topic  string `json:"topic" binding:"required"`
	Sku    string `json:"sku" binding:"required"`
	Effect string `json:"effect" binding:"required"`
	Speed  int    `json:"speed"`
}

// SetEffectSpeed 调整灯效库场景的播放速度
func (h *ControlHandler) SetEffectSpeed(c *gin.Context) {
	if !h.ensureEnabled(c) {
		return
	}
	var req effectSpeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.svc.SetEffectSpeed(c.Request.Context(), req.Topic, req.Sku, req.Effect, req.Speed)
	if err != nil {
		switch {
		case errors.Is(err, scenes.ErrSceneNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, blepkt.ErrInvalidSceneParam),
			errors.Is(err, blepkt.ErrSpeedIndexOutOfRange):
			// 灯效表数据有问题，不是调用方的错
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			h.publishError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListStyles 列出全部DIY动画样式名
func (h *ControlHandler) ListStyles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"styles": blepkt.StyleNames()})
}

// publishError 透传下发失败统一按网关错误处理
func (h *ControlHandler) publishError(c *gin.Context, err error) {
	h.logger.Error("frame publish failed", zap.Error(err))
	c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
}
