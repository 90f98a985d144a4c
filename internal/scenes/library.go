package scenes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/govee-lab/govee-bridge/internal/cloudapi"
	"github.com/govee-lab/govee-bridge/internal/metrics"
)

// ErrSceneNotFound 目录中不存在指定场景
var ErrSceneNotFound = errors.New("scene not found")

// Fetcher 场景目录数据源（由cloudapi.Client实现）
type Fetcher interface {
	GetDynamicScenes(ctx context.Context, sku, device string) ([]cloudapi.SceneOption, error)
	GetDIYScenes(ctx context.Context, sku, device string) ([]cloudapi.SceneOption, error)
}

// Library 场景库：云端目录 + TTL缓存 + 本地灯效表
type Library struct {
	fetcher Fetcher
	cache   Cache
	ttl     time.Duration
	effects *EffectCatalog
	logger  *zap.Logger
	metrics *metrics.AppMetrics
}

// NewLibrary 创建场景库
// effects可为nil（无本地灯效表时场景速度调节不可用）
func NewLibrary(fetcher Fetcher, cache Cache, ttl time.Duration, effects *EffectCatalog, m *metrics.AppMetrics, logger *zap.Logger) *Library {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Library{
		fetcher: fetcher,
		cache:   cache,
		ttl:     ttl,
		effects: effects,
		logger:  logger,
		metrics: m,
	}
}

// DynamicScenes 查询设备内置动态场景目录（带缓存）
func (l *Library) DynamicScenes(ctx context.Context, sku, device string) ([]cloudapi.SceneOption, error) {
	return l.cached(ctx, "scenes:dynamic:"+sku+":"+device, func() ([]cloudapi.SceneOption, error) {
		return l.fetcher.GetDynamicScenes(ctx, sku, device)
	})
}

// DIYScenes 查询用户DIY场景目录（带缓存）
func (l *Library) DIYScenes(ctx context.Context, sku, device string) ([]cloudapi.SceneOption, error) {
	return l.cached(ctx, "scenes:diy:"+sku+":"+device, func() ([]cloudapi.SceneOption, error) {
		return l.fetcher.GetDIYScenes(ctx, sku, device)
	})
}

// FindDIYScene 按名称查找DIY场景并返回其整数value
func (l *Library) FindDIYScene(ctx context.Context, sku, device, name string) (int64, error) {
	options, err := l.DIYScenes(ctx, sku, device)
	if err != nil {
		return 0, err
	}
	for _, opt := range options {
		if opt.Name == name {
			if v, ok := opt.DIYValue(); ok {
				return v, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: diy scene %q", ErrSceneNotFound, name)
}

// FindEffect 按名称查找本地灯效（含scenceParam与speedIndex）
func (l *Library) FindEffect(sku, name string) (*Effect, error) {
	if l.effects == nil {
		return nil, fmt.Errorf("%w: no effect catalog loaded", ErrSceneNotFound)
	}
	return l.effects.Find(sku, name)
}

// cached 先查缓存，未命中则拉取并回填
func (l *Library) cached(ctx context.Context, key string, fetch func() ([]cloudapi.SceneOption, error)) ([]cloudapi.SceneOption, error) {
	if data, ok := l.cache.Get(ctx, key); ok {
		var options []cloudapi.SceneOption
		if err := json.Unmarshal(data, &options); err == nil {
			if l.metrics != nil {
				l.metrics.SceneCacheHits.Inc()
			}
			return options, nil
		}
		// 缓存内容损坏：当作未命中重新拉取
		l.logger.Warn("scene cache entry corrupted", zap.String("key", key))
	}

	if l.metrics != nil {
		l.metrics.SceneCacheMisses.Inc()
	}

	options, err := fetch()
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(options); err == nil {
		l.cache.Set(ctx, key, data, l.ttl)
	}
	return options, nil
}
