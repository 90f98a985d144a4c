// Package api 对外HTTP接口：设备查询、云端控制与本地BLE透传控制
package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/govee-lab/govee-bridge/internal/api/middleware"
)

// RegisterRoutes 注册全部API路由
func RegisterRoutes(
	r *gin.Engine,
	devices *DeviceHandler,
	ble *ControlHandler,
	authCfg middleware.AuthConfig,
	logger *zap.Logger,
) {
	if r == nil {
		return
	}

	r.Use(middleware.RequestTracing())

	api := r.Group("/api")
	if authCfg.Enabled {
		api.Use(middleware.APIKeyAuth(authCfg, logger))
		logger.Info("api authentication enabled", zap.Int("api_keys_count", len(authCfg.APIKeys)))
	} else {
		logger.Warn("api authentication disabled - only for development!")
	}

	// 设备与场景目录（OpenAPI）
	if devices != nil {
		api.GET("/devices", devices.ListDevices)
		api.GET("/device/state", devices.GetDeviceState)
		api.GET("/device/scenes", devices.ListDynamicScenes)
		api.GET("/device/diy-scenes", devices.ListDIYScenes)
		api.POST("/device/control", devices.ControlDevice)
		api.POST("/device/diy-scene", devices.ActivateDIYScene)
	}

	// 本地BLE透传控制（AWS IoT MQTT）
	if ble != nil {
		api.GET("/ble/styles", ble.ListStyles)
		api.POST("/ble/diy-style", ble.SetDIYStyle)
		api.POST("/ble/diy-speed", ble.SetDIYSpeed)
		api.POST("/ble/music-mode", ble.SetMusicMode)
		api.POST("/ble/scene-speed", ble.SetSceneSpeed)
		api.POST("/ble/scene-activate", ble.ActivateScene)
		api.POST("/ble/effect-speed", ble.SetEffectSpeed)
	}

	logger.Info("api routes registered")
}
