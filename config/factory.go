package config

import (
	"fmt"
	"math/rand"

	"github.com/rushteam/samplekit/core"
	"github.com/rushteam/samplekit/pkg/conv"
	"github.com/rushteam/samplekit/sampler"
)

// Factory 根据类型和配置构建采样器实例。
type Factory struct {
	builders map[string]func(map[string]interface{}) (sampler.Sampler, error)
}

// NewFactory 创建空工厂。
func NewFactory() *Factory {
	return &Factory{
		builders: make(map[string]func(map[string]interface{}) (sampler.Sampler, error)),
	}
}

// Register 注册采样器构建器。
func (f *Factory) Register(samplerType string, builder func(map[string]interface{}) (sampler.Sampler, error)) {
	f.builders[samplerType] = builder
}

// Build 根据类型和配置构建采样器。
func (f *Factory) Build(samplerType string, cfg map[string]interface{}) (sampler.Sampler, error) {
	builder, ok := f.builders[samplerType]
	if !ok {
		return nil, fmt.Errorf("unknown sampler type: %s", samplerType)
	}
	return builder(cfg)
}

// DefaultFactory 返回一个包含全部内置核采样器的默认工厂。
func DefaultFactory() *Factory {
	factory := NewFactory()

	// 稠密核采样器
	factory.Register("kernel.sphere", buildSphere)
	factory.Register("kernel.rff", buildRFF)

	// 近似核采样器
	factory.Register("kernel.sphere_appr", buildSphereAppr)
	factory.Register("kernel.rff_appr", buildRFFAppr)

	return factory
}

// commonOptions 解析各采样器共用的配置项。
//
// 支持的 key：
//   - num_items（必填）：物品目录大小
//   - seed：随机种子；缺省时采样器自建时间种子生成器
//   - num_random_features：RFF 随机特征数 R（默认 32）
//   - scale：RFF 特征生成尺度 ν（默认 4）
//   - temperature：训练侧 softmax 温度 τ（预留透传）
//   - metric：打分器类型 inner_product / cosine（默认 inner_product）
func commonOptions(cfg map[string]interface{}) (int, core.Scorer, []sampler.Option, error) {
	numItems := conv.ConfigGetInt(cfg, "num_items", 0)
	if numItems < 1 {
		return 0, nil, nil, fmt.Errorf("num_items not found or invalid")
	}

	var opts []sampler.Option
	if seed := conv.ConfigGetInt(cfg, "seed", 0); seed != 0 {
		opts = append(opts, sampler.WithRand(rand.New(rand.NewSource(int64(seed)))))
	}
	if r := conv.ConfigGetInt(cfg, "num_random_features", 0); r > 0 {
		opts = append(opts, sampler.WithNumRandomFeatures(r))
	}
	if scale := conv.ConfigGetFloat64(cfg, "scale", 0); scale > 0 {
		opts = append(opts, sampler.WithScale(scale))
	}
	if tau := conv.ConfigGetFloat64(cfg, "temperature", 0); tau > 0 {
		opts = append(opts, sampler.WithTemperature(tau))
	}

	var scorer core.Scorer
	switch metric := conv.ConfigGet(cfg, "metric", "inner_product"); metric {
	case "inner_product":
		scorer = core.NewInnerProductScorer()
	case "cosine":
		scorer = core.NewCosineScorer()
	default:
		return 0, nil, nil, fmt.Errorf("unknown metric: %s", metric)
	}

	return numItems, scorer, opts, nil
}

func buildSphere(cfg map[string]interface{}) (sampler.Sampler, error) {
	numItems, scorer, opts, err := commonOptions(cfg)
	if err != nil {
		return nil, err
	}
	return sampler.NewSphereSampler(numItems, scorer, opts...)
}

func buildRFF(cfg map[string]interface{}) (sampler.Sampler, error) {
	numItems, scorer, opts, err := commonOptions(cfg)
	if err != nil {
		return nil, err
	}
	return sampler.NewRFFSampler(numItems, scorer, opts...)
}

func buildSphereAppr(cfg map[string]interface{}) (sampler.Sampler, error) {
	numItems, scorer, opts, err := commonOptions(cfg)
	if err != nil {
		return nil, err
	}
	return sampler.NewSphereSamplerAppr(numItems, scorer, opts...)
}

func buildRFFAppr(cfg map[string]interface{}) (sampler.Sampler, error) {
	numItems, scorer, opts, err := commonOptions(cfg)
	if err != nil {
		return nil, err
	}
	return sampler.NewRFFSamplerAppr(numItems, scorer, opts...)
}
