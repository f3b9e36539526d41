package sampler

import (
	"math/rand"
	"sort"
)

// sampleMultinomial 按权重从一行 proposal 分布中有放回地抽取 k 个下标。
// weights 不要求归一化，但应全为正（核方法的 logits 在结构上保证这一点，
// 这里不做额外防护；NaN/Inf 会按原样传播到采样结果）。
// 返回抽到的下标和权重总和（供重要性权重计算复用）。
func sampleMultinomial(rng *rand.Rand, weights []float64, k int) ([]int, float64) {
	cum := make([]float64, len(weights))
	var total float64
	for i, w := range weights {
		total += w
		cum[i] = total
	}

	idx := make([]int, k)
	for j := 0; j < k; j++ {
		u := rng.Float64() * total
		i := sort.SearchFloat64s(cum, u)
		// u == 某个前缀和时 SearchFloat64s 命中该下标本身，仍在分布支持内；
		// 浮点误差导致的越界收回到最后一个下标
		if i >= len(weights) {
			i = len(weights) - 1
		}
		idx[j] = i
	}
	return idx, total
}
