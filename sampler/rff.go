package sampler

import (
	"github.com/rushteam/samplekit/core"
)

// NewRFFSampler 创建稠密 Random-Fourier-Feature 核采样器。
//
// Update 时物品表整体过一次 KernelVec（尺度用 ν，见 WithScale，默认 4）；
// Forward 时 query 过同参数的 KernelVec，logits = 特征空间内积。
//
// 历史注记：早期版本把 softmax 温度 τ 同时用作特征尺度；修正后的设计
// 用更小的 ν 做特征生成，τ 只作为训练侧温度另行透传（WithTemperature），
// 两个参数不要混用。
//
// RFF 每次变换都重抽投影：同一 rng 流下两次 Forward 的投影不同，
// 需要完全可复现时在每次调用前用相同种子重置 rng。
func NewRFFSampler(numItems int, scorer core.Scorer, opts ...Option) (*KernelSampler, error) {
	if err := checkNumItems(numItems); err != nil {
		return nil, err
	}
	if err := checkScorer(scorer); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	rng := o.rng
	if rng == nil {
		rng = newDefaultRand()
	}

	s := &KernelSampler{
		name:        "kernel.rff",
		numItems:    numItems,
		scorer:      scorer,
		rng:         rng,
		temperature: o.temperature,
	}
	s.itemTransform = func(vecs [][]float64) ([][]float64, error) {
		return KernelVec(vecs, o.scale, o.numFeatures, rng)
	}
	s.logits = func(query [][]float64) ([][]float64, error) {
		kq, err := KernelVec(query, o.scale, o.numFeatures, rng)
		if err != nil {
			return nil, err
		}
		return s.scorer.Score(kq, s.itemTable.Rows())
	}
	return s, nil
}
