// Package config 提供采样器的配置加载与工厂构建（YAML/JSON）。
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/samplekit/sampler"
)

// Config 是采样器配置文件的根结构（支持 YAML/JSON）。
type Config struct {
	Samplers []SamplerConfig `yaml:"samplers" json:"samplers"`
}

// SamplerConfig 是单个采样器的配置。
type SamplerConfig struct {
	Name   string                 `yaml:"name" json:"name"`     // 实例名，供训练侧引用
	Type   string                 `yaml:"type" json:"type"`     // kernel.sphere / kernel.rff / kernel.sphere_appr / kernel.rff_appr
	Config map[string]interface{} `yaml:"config" json:"config"` // 采样器特定配置
}

// LoadFromYAML 从 YAML 文件加载采样器配置。
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	return &cfg, nil
}

// LoadFromJSON 从 JSON 文件加载采样器配置。
func LoadFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	return &cfg, nil
}

// Build 根据配置构建全部采样器实例，按实例名索引。
func (c *Config) Build(factory *Factory) (map[string]sampler.Sampler, error) {
	out := make(map[string]sampler.Sampler, len(c.Samplers))
	for _, sc := range c.Samplers {
		s, err := factory.Build(sc.Type, sc.Config)
		if err != nil {
			return nil, fmt.Errorf("build sampler %s: %w", sc.Name, err)
		}
		name := sc.Name
		if name == "" {
			name = sc.Type
		}
		out[name] = s
	}
	return out, nil
}
