package health

import (
	"context"
	"fmt"
	"time"
)

// Pinger 可探测连通性的缓存后端（由scenes.RedisCache实现）
type Pinger interface {
	Ping(ctx context.Context) error
}

// CacheChecker 场景缓存后端检查器
// 缓存不可用只算降级：目录查询会直接打到云端并消耗限额
type CacheChecker struct {
	pinger Pinger
}

// NewCacheChecker 创建缓存检查器
func NewCacheChecker(pinger Pinger) *CacheChecker {
	return &CacheChecker{pinger: pinger}
}

func (c *CacheChecker) Name() string {
	return "scene_cache"
}

func (c *CacheChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	if err := c.pinger.Ping(ctx); err != nil {
		return CheckResult{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("ping failed: %v", err),
			Latency: time.Since(start),
		}
	}
	return CheckResult{Status: StatusHealthy, Message: "ok", Latency: time.Since(start)}
}

// ConnectionReporter 可报告连接状态的传输通道（由iotmqtt.Publisher实现）
type ConnectionReporter interface {
	Connected() bool
}

// MQTTChecker IoT透传通道检查器
// 通道断开时本地控制全部不可用，视为不健康
type MQTTChecker struct {
	conn ConnectionReporter
}

// NewMQTTChecker 创建MQTT检查器
func NewMQTTChecker(conn ConnectionReporter) *MQTTChecker {
	return &MQTTChecker{conn: conn}
}

func (c *MQTTChecker) Name() string {
	return "iot_mqtt"
}

func (c *MQTTChecker) Check(_ context.Context) CheckResult {
	start := time.Now()
	if !c.conn.Connected() {
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: "mqtt disconnected",
			Latency: time.Since(start),
		}
	}
	return CheckResult{Status: StatusHealthy, Message: "ok", Latency: time.Since(start)}
}
