// Package sampler 实现大词表 softmax 训练的负采样策略。
//
// 核心思想：
//   - 精确 softmax 需要对全量物品目录归一化，单步训练代价过高
//   - 用一个可采样的 proposal 分布近似 softmax 分母，每个 query 只采 num_neg 个负例
//   - 对每个负例返回 log 重要性权重，供下游损失做无偏校正
//
// 采样器家族（均为核方法 proposal）：
//   - SphereSampler / RFFSampler：稠密路径，update 时预计算物品侧核向量，
//     forward 时构造全量 query x item logits 矩阵再做多项式采样
//   - SphereSamplerAppr / RFFSamplerAppr：近似路径，先均匀采样物品下标，
//     只为采样到的 (query, item) pair 逐对打分，避免全量矩阵
//
// 工程特征：
//   - 单线程同步数值计算，无 I/O；同一实例的 Update/Forward 并发不安全，
//     跨 goroutine 共享请用 Pool（每个 worker 独立实例）
//   - 随机数生成器显式传入（WithRand），未提供时默认构造一个时间种子生成器，
//     不依赖进程级全局种子
package sampler

import (
	"math"
	"math/rand"
	"time"

	"github.com/rushteam/samplekit/core"
)

// Sampler 是负采样器的统一抽象。
//
// 生命周期：先 Update（物品向量刷新时调用，如每个 epoch 一次），
// 再反复 Forward（每个训练 batch 一次）。Update 之前调用 Forward
// 返回 PRECONDITION 错误。
type Sampler interface {
	Name() string

	// Update 用最新的物品向量整体替换内部物品表。
	// 行下标 i 对应物品 ID i+1。
	Update(itemEmbs [][]float64) error

	// Forward 为 query 批中的每一行采样 numNeg 个负例。
	// 返回 1-based 物品 ID 和对应的 log 重要性权重；
	// posItems 非空时额外返回同形状的全零正例概率占位。
	Forward(query [][]float64, numNeg int, posItems [][]int64) (*Result, error)

	// ComputeItemP 是参考概率钩子：返回正例物品在 proposal 下的 log 概率。
	// 核方法家族不做特化，走基础实现（均匀 -log(numItems)）。
	ComputeItemP(query [][]float64, posItems [][]int64) ([][]float64, error)

	// NumItems 返回物品目录大小。
	NumItems() int
}

// Result 是一次 Forward 的采样结果，随用随弃，不做持久化。
type Result struct {
	// PosProb 是正例概率占位（全零）。仅当 Forward 传入 posItems 时非 nil。
	// 精确正例概率不在本库计算，由下游自行补齐。
	PosProb [][]float64

	// NegItems 是每个 query 行采样出的负例物品 ID（1-based），形状 Q x numNeg。
	// 有放回采样，允许重复。
	NegItems [][]int64

	// NegLogProb 是与 NegItems 对齐的 log 重要性权重，形状 Q x numNeg。
	NegLogProb [][]float64
}

// newDefaultRand 构造默认随机数生成器（时间种子）。
// 需要可复现时，调用方通过 WithRand 传入固定种子的生成器。
func newDefaultRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// checkQuery 校验 query 批：非空、无空行、各行维度一致。
func checkQuery(query [][]float64) error {
	if len(query) == 0 {
		return core.NewDomainError(core.ModuleSampler, core.ErrorCodeInvalidInput,
			"sampler: empty query batch")
	}
	dim := len(query[0])
	if dim == 0 {
		return core.NewDomainError(core.ModuleSampler, core.ErrorCodeInvalidInput,
			"sampler: zero-width query")
	}
	for i := range query {
		if len(query[i]) != dim {
			return core.NewDomainError(core.ModuleSampler, core.ErrorCodeInvalidInput,
				"sampler: ragged query batch")
		}
	}
	return nil
}

// checkNumNeg 校验负例数量。
func checkNumNeg(numNeg int) error {
	if numNeg < 1 {
		return core.NewDomainError(core.ModuleSampler, core.ErrorCodeInvalidInput,
			"sampler: numNeg must be >= 1")
	}
	return nil
}

// checkNumItems 校验物品目录大小（构造时检查）。
func checkNumItems(numItems int) error {
	if numItems < 1 {
		return core.NewDomainError(core.ModuleSampler, core.ErrorCodeInvalidInput,
			"sampler: numItems must be >= 1")
	}
	return nil
}

// checkScorer 校验打分器的内积能力（构造时检查，违反即失败）。
func checkScorer(scorer core.Scorer) error {
	if scorer == nil {
		return core.NewDomainError(core.ModuleSampler, core.ErrorCodeInvalidScorer,
			"sampler: nil scorer")
	}
	if _, ok := scorer.(core.InnerProductCapable); !ok {
		return core.NewDomainError(core.ModuleSampler, core.ErrorCodeInvalidScorer,
			"sampler: kernel samplers require an inner-product scorer, got "+scorer.Name())
	}
	return nil
}

// zeroPosProb 构造与 posItems 同形状的全零正例概率占位。
func zeroPosProb(posItems [][]int64) [][]float64 {
	out := make([][]float64, len(posItems))
	for i := range posItems {
		out[i] = make([]float64, len(posItems[i]))
	}
	return out
}

// uniformItemP 是 ComputeItemP 的基础实现：均匀 proposal 下每个物品的
// log 概率恒为 -log(numItems)，与 query 无关。
func uniformItemP(numItems int, posItems [][]int64) [][]float64 {
	logp := -math.Log(float64(numItems))
	out := make([][]float64, len(posItems))
	for i := range posItems {
		row := make([]float64, len(posItems[i]))
		for j := range row {
			row[j] = logp
		}
		out[i] = row
	}
	return out
}
