package sampler

import (
	"math"
	"math/rand"

	"github.com/rushteam/samplekit/core"
)

// ApprKernelSampler 是近似核采样器：稠密路径的 O(Q x numItems) logits
// 矩阵在超大目录下不可行，这里把 proposal 简化为均匀分布——
// 先为每个 query 行均匀有放回地抽 numNeg 个物品下标，
// 再只为抽到的 (query, item) pair 逐对打分，全程不落任何全量矩阵。
//
// 重要性权重直接取 logw = log(logit)，不做行归一化：均匀 proposal 的
// 归一化常数与 query 无关，在下游 softmax 比值中相消（或作为常数吸收）。
// 这与稠密路径的自归一化公式是刻意保留的不对称，不要"修复"成一致。
type ApprKernelSampler struct {
	name        string
	numItems    int
	scorer      core.Scorer
	rng         *rand.Rand
	temperature float64

	// itemTable 是 update 后的物品侧（核）向量表；RFF 变体在 update 时
	// 一次性核化并缓存，避免每个 batch 重复变换物品表。
	itemTable *core.ItemVectorTable

	itemTransform func(vecs [][]float64) ([][]float64, error)

	// queryTransform 在每次 Forward 时作用于 query 批
	// （Sphere 为恒等，RFF 为 KernelVec——query 侧不缓存）。
	queryTransform func(query [][]float64) ([][]float64, error)

	// pairLogit 计算单个 (query, item) pair 的 proposal 权重。
	pairLogit func(q, item []float64) (float64, error)
}

func (s *ApprKernelSampler) Name() string { return s.name }

// NumItems 返回物品目录大小。
func (s *ApprKernelSampler) NumItems() int { return s.numItems }

// Temperature 返回随采样器透传的训练侧 softmax 温度 τ（0 表示未设置）。
func (s *ApprKernelSampler) Temperature() float64 { return s.temperature }

// Update 用最新物品向量整体替换物品表。
func (s *ApprKernelSampler) Update(itemEmbs [][]float64) error {
	if len(itemEmbs) != s.numItems {
		return core.NewDomainError(core.ModuleSampler, core.ErrorCodeInvalidInput,
			"sampler: item embedding rows do not match numItems")
	}
	transformed, err := s.itemTransform(itemEmbs)
	if err != nil {
		return err
	}
	table, err := core.NewItemVectorTable(transformed)
	if err != nil {
		return err
	}
	s.itemTable = table
	return nil
}

// Forward 为每个 query 行均匀采样 numNeg 个负例并逐对打分。
//
// 与稠密路径的差异：
//   - 采样先于打分，且与相似度信号无关（牺牲采样质量换内存）
//   - 权重 logw = log(logit)，无行归一化项
//   - 打分次数恰好为 Q x numNeg 次 pair 调用，绝不物化 Q x numItems 矩阵
//
// 若某 pair 的 logit 为 0 或负（RFF 特征内积可能出现），log 会产生
// -Inf/NaN 并按原样传播，调用方据此感知，不做静默钳制。
func (s *ApprKernelSampler) Forward(query [][]float64, numNeg int, posItems [][]int64) (*Result, error) {
	if err := checkNumNeg(numNeg); err != nil {
		return nil, err
	}
	if s.itemTable == nil {
		return nil, core.NewDomainError(core.ModuleSampler, core.ErrorCodePrecondition,
			"sampler: forward before update (no item table)")
	}
	if err := checkQuery(query); err != nil {
		return nil, err
	}

	tq, err := s.queryTransform(query)
	if err != nil {
		return nil, err
	}

	res := &Result{
		NegItems:   make([][]int64, len(tq)),
		NegLogProb: make([][]float64, len(tq)),
	}
	for i := range tq {
		ids := make([]int64, numNeg)
		logw := make([]float64, numNeg)
		for j := 0; j < numNeg; j++ {
			k := s.rng.Intn(s.numItems)
			logit, err := s.pairLogit(tq[i], s.itemTable.Row(k))
			if err != nil {
				return nil, err
			}
			ids[j] = s.itemTable.ItemID(k)
			logw[j] = math.Log(logit)
		}
		res.NegItems[i] = ids
		res.NegLogProb[i] = logw
	}

	if posItems != nil {
		res.PosProb = zeroPosProb(posItems)
	}
	return res, nil
}

// ComputeItemP 走基础实现：核方法家族不特化正例概率。
func (s *ApprKernelSampler) ComputeItemP(query [][]float64, posItems [][]int64) ([][]float64, error) {
	if err := checkQuery(query); err != nil {
		return nil, err
	}
	return uniformItemP(s.numItems, posItems), nil
}

// NewSphereSamplerAppr 创建近似平方核采样器。
// pair 权重沿用稠密版公式：100 * similarity(q, item)^2 + 1。
func NewSphereSamplerAppr(numItems int, scorer core.Scorer, opts ...Option) (*ApprKernelSampler, error) {
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

	s := &ApprKernelSampler{
		name:        "kernel.sphere_appr",
		numItems:    numItems,
		scorer:      scorer,
		rng:         rng,
		temperature: o.temperature,
	}
	s.itemTransform = func(vecs [][]float64) ([][]float64, error) {
		return vecs, nil
	}
	s.queryTransform = func(query [][]float64) ([][]float64, error) {
		return query, nil
	}
	s.pairLogit = func(q, item []float64) (float64, error) {
		sim, err := s.scorer.ScorePair(q, item)
		if err != nil {
			return 0, err
		}
		return sphereAlpha*sim*sim + sphereBeta, nil
	}
	return s, nil
}

// NewRFFSamplerAppr 创建近似 RFF 核采样器。
// 物品表在 Update 时核化一次并缓存；query 每次 Forward 重新核化
// （缓存物品侧、重算 query 侧，是刷新频率差异下的折中）。
func NewRFFSamplerAppr(numItems int, scorer core.Scorer, opts ...Option) (*ApprKernelSampler, error) {
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

	s := &ApprKernelSampler{
		name:        "kernel.rff_appr",
		numItems:    numItems,
		scorer:      scorer,
		rng:         rng,
		temperature: o.temperature,
	}
	s.itemTransform = func(vecs [][]float64) ([][]float64, error) {
		return KernelVec(vecs, o.scale, o.numFeatures, rng)
	}
	s.queryTransform = func(query [][]float64) ([][]float64, error) {
		return KernelVec(query, o.scale, o.numFeatures, rng)
	}
	s.pairLogit = func(q, item []float64) (float64, error) {
		return s.scorer.ScorePair(q, item)
	}
	return s, nil
}

var _ Sampler = (*ApprKernelSampler)(nil)
