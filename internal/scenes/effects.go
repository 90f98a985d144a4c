package scenes

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// 本地灯效表：OpenAPI不提供灯效库的scenceParam/speedIndex，
// 这些数据来自App端灯效库的抓包结果，以YAML形式随部署下发。

// Effect 单个灯效条目
type Effect struct {
	Name        string `yaml:"name"`        // 显示名
	SceneCode   int    `yaml:"sceneCode"`   // 16位场景码（激活包用）
	ScenceParam string `yaml:"scenceParam"` // base64动画数据（字段名沿用抓包原文）
	SpeedIndex  int    `yaml:"speedIndex"`  // 速度字节在动画数据中的位置
	SceneType   int    `yaml:"sceneType"`   // 多包首包的场景类型，默认2
}

// EffectCatalog 按SKU组织的灯效表
type EffectCatalog struct {
	Effects map[string][]Effect `yaml:"effects"` // key为SKU
}

// LoadEffectCatalog 从YAML文件加载灯效表
func LoadEffectCatalog(path string) (*EffectCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read effect catalog: %w", err)
	}

	var catalog EffectCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse effect catalog: %w", err)
	}

	// sceneType缺省为2（普通场景）
	for sku, effects := range catalog.Effects {
		for i := range effects {
			if effects[i].SceneType == 0 {
				effects[i].SceneType = 2
			}
		}
		catalog.Effects[sku] = effects
	}
	return &catalog, nil
}

// Find 按SKU+名称查找灯效
func (c *EffectCatalog) Find(sku, name string) (*Effect, error) {
	for _, effect := range c.Effects[sku] {
		if effect.Name == name {
			return &effect, nil
		}
	}
	return nil, fmt.Errorf("%w: effect %q for sku %s", ErrSceneNotFound, name, sku)
}
