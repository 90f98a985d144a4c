package control

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/govee-lab/govee-bridge/internal/metrics"
	"github.com/govee-lab/govee-bridge/internal/protocol/blepkt"
	"github.com/govee-lab/govee-bridge/internal/scenes"
)

// FrameSender 透传通道抽象（由iotmqtt.Publisher实现）
// 同一次调用内的包必须按切片顺序送达，不得乱序或丢弃部分包
type FrameSender interface {
	PublishFrames(ctx context.Context, topic string, frames [][]byte) error
}

// Service 本地控制编排：组包 → 透传下发
// 编码层本身纯函数无状态，这里负责把场景查找、打补丁、多包切分
// 和激活串成完整的下发流程
type Service struct {
	sender  FrameSender
	library *scenes.Library
	logger  *zap.Logger
	metrics *metrics.AppMetrics
}

// NewService 创建控制服务
func NewService(sender FrameSender, library *scenes.Library, m *metrics.AppMetrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sender: sender, library: library, logger: logger, metrics: m}
}

// SetDIYStyle 切换DIY场景动画样式
func (s *Service) SetDIYStyle(ctx context.Context, topic string, style, speed int) error {
	s.countFrame("diy")
	return s.send(ctx, topic, blepkt.BuildDIYStyle(style, speed))
}

// SetDIYSpeed 调整DIY场景播放速度
// activeStyle必须是设备当前激活场景的样式，否则设备会静默忽略该命令
func (s *Service) SetDIYSpeed(ctx context.Context, topic string, speed, activeStyle int) error {
	s.countFrame("diy")
	return s.send(ctx, topic, blepkt.BuildDIYSpeed(speed, activeStyle))
}

// SetMusicMode 开关音乐律动模式
func (s *Service) SetMusicMode(ctx context.Context, topic string, enabled bool, sensitivity int) error {
	s.countFrame("music")
	return s.send(ctx, topic, blepkt.BuildMusicMode(enabled, sensitivity))
}

// SetSceneSpeed 调整普通场景播放速度（简单单包版本）
func (s *Service) SetSceneSpeed(ctx context.Context, topic string, speed int) error {
	s.countFrame("scene_speed")
	return s.send(ctx, topic, blepkt.BuildSceneSpeed(speed))
}

// ActivateScene 激活指定场景码的场景
func (s *Service) ActivateScene(ctx context.Context, topic string, sceneCode int) error {
	s.countFrame("scene_activate")
	return s.send(ctx, topic, blepkt.BuildSceneActivation(sceneCode))
}

// SetEffectSpeed 调整灯效库场景的播放速度（多包流程）
// 流程：查本地灯效表 → 修改动画数据中的速度字节 → 0xA3多包切分 →
// 追加激活包 → 整个序列按顺序一次性透传
func (s *Service) SetEffectSpeed(ctx context.Context, topic, sku, effectName string, speed int) error {
	effect, err := s.library.FindEffect(sku, effectName)
	if err != nil {
		return err
	}

	patched, err := blepkt.PatchSceneSpeed(effect.ScenceParam, effect.SpeedIndex, speed)
	if err != nil {
		return fmt.Errorf("patch effect %q: %w", effectName, err)
	}

	frames := blepkt.BuildMultiFrame(patched, byte(effect.SceneType))
	frames = append(frames, blepkt.BuildSceneActivation(effect.SceneCode))

	s.countFrame("multi")
	s.logger.Debug("effect speed sequence built",
		zap.String("effect", effectName),
		zap.Int("speed", speed),
		zap.Int("frames", len(frames)))

	return s.sender.PublishFrames(ctx, topic, frames)
}

func (s *Service) send(ctx context.Context, topic string, frame []byte) error {
	return s.sender.PublishFrames(ctx, topic, [][]byte{frame})
}

func (s *Service) countFrame(dialect string) {
	if s.metrics != nil {
		s.metrics.FrameBuildTotal.WithLabelValues(dialect).Inc()
	}
}
