package sampler

import (
	"github.com/rushteam/samplekit/core"
)

// 平方核（sphere kernel）的 proposal 权重：w = alpha * sim^2 + beta。
// beta=1 的加性下界保证权重严格为正：近正交/负相似的 pair 平方相似度
// 可能处处接近 0，没有下界会饿死多项式分布，也会让 log 权重落到 log(0)。
const (
	sphereAlpha = 100.0
	sphereBeta  = 1.0
)

// NewSphereSampler 创建稠密平方核采样器。
//
// 物品侧不做向量变换（恒等），核化发生在 logits 阶段：
// logits = 100 * similarity(query, item)^2 + 1，保证全矩阵严格为正。
// scorer 必须是内积型打分器，否则返回 INVALID_SCORER。
func NewSphereSampler(numItems int, scorer core.Scorer, opts ...Option) (*KernelSampler, error) {
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
		name:        "kernel.sphere",
		numItems:    numItems,
		scorer:      scorer,
		rng:         rng,
		temperature: o.temperature,
	}
	s.itemTransform = func(vecs [][]float64) ([][]float64, error) {
		return vecs, nil
	}
	s.logits = func(query [][]float64) ([][]float64, error) {
		sims, err := s.scorer.Score(query, s.itemTable.Rows())
		if err != nil {
			return nil, err
		}
		for i := range sims {
			for j, v := range sims[i] {
				sims[i][j] = sphereAlpha*v*v + sphereBeta
			}
		}
		return sims, nil
	}
	return s, nil
}

var _ Sampler = (*KernelSampler)(nil)
