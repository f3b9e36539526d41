package sampler

import (
	"math"
	"math/rand"

	"github.com/rushteam/samplekit/core"
)

// Random-Fourier-Feature 变换默认参数。
const (
	// DefaultNumRandomFeatures 是随机特征数 R 的默认值。
	DefaultNumRandomFeatures = 32

	// DefaultRFFScale 是特征生成的尺度参数 ν 的默认值（文献推荐 ν=4，
	// 配合 softmax 温度 τ 取 [5,30]）。
	// 注意 ν 与 τ 是两个参数：ν 决定随机投影的方差 N(0, 1/ν)，
	// τ 是训练侧的 softmax 温度，本库预留但不参与特征生成。
	DefaultRFFScale = 4.0
)

// KernelVec 是 Random-Fourier-Feature 变换：把宽度 D 的一批原始向量映射到
// 宽度 2R 的核特征空间，使特征空间内积近似目标核。
//
// 步骤：
//  1. 逐行 L2 归一化（核近似要求 ||v||=1；未归一化输入不会报错，
//     只会悄悄降低近似质量，因此这里无条件归一化）
//  2. 为每一行独立抽取 R x D 随机投影，元素 ~ N(0, 1/scale)。
//     投影矩阵每次调用都重新抽取、不缓存——这是方差换内存的既定设计，
//     需要可复现的调用方自行在每次调用前重置 rng 种子
//  3. 原始投影分数 = 输入与各投影向量的内积
//  4. 输出 = (1/sqrt(R)) * concat(cos(分数), sin(分数))，宽度恒为 2R
//
// 物品侧与 query 侧必须用同一组 (R, scale) 参数变换，
// 否则特征空间内积不再近似同一个核。
func KernelVec(vecs [][]float64, scale float64, numFeatures int, rng *rand.Rand) ([][]float64, error) {
	if numFeatures < 1 {
		return nil, core.NewDomainError(core.ModuleSampler, core.ErrorCodeInvalidInput,
			"kernel: numFeatures must be >= 1")
	}
	if scale <= 0 {
		return nil, core.NewDomainError(core.ModuleSampler, core.ErrorCodeInvalidInput,
			"kernel: scale must be > 0")
	}
	if rng == nil {
		rng = newDefaultRand()
	}

	std := math.Sqrt(1 / scale)
	invSqrtR := 1 / math.Sqrt(float64(numFeatures))

	out := make([][]float64, len(vecs))
	for i, v := range vecs {
		nv := l2Normalize(v)
		row := make([]float64, 2*numFeatures)
		for j := 0; j < numFeatures; j++ {
			var raw float64
			for d := range nv {
				raw += nv[d] * rng.NormFloat64() * std
			}
			row[j] = invSqrtR * math.Cos(raw)
			row[numFeatures+j] = invSqrtR * math.Sin(raw)
		}
		out[i] = row
	}
	return out, nil
}

// l2Normalize 返回单位化副本；零向量原样返回（零范数不可归一化）。
func l2Normalize(v []float64) []float64 {
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	out := make([]float64, len(v))
	if norm == 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

// KernelSampler 是稠密核采样器：update 时一次性构建物品侧核向量表，
// forward 时计算全量 query x item logits 矩阵，再按行做有放回多项式采样。
//
// 变体（Sphere / RFF）不用继承表达，而是在构造时装配一对策略函数：
//   - itemTransform：update 时的物品侧变换（Sphere 为恒等，RFF 为 KernelVec）
//   - logits：forward 时的 proposal 权重矩阵计算
//
// 两种变体的 logits 在结构上均严格为正（平方核 +1 下界、RFF 的 2R 维
// 特征内积配合归一化），多项式采样不会饿死。
type KernelSampler struct {
	name        string
	numItems    int
	scorer      core.Scorer
	rng         *rand.Rand
	temperature float64

	// itemTable 是 update 后的物品侧（核）向量表；每次 Update 整体替换。
	itemTable *core.ItemVectorTable

	itemTransform func(vecs [][]float64) ([][]float64, error)
	logits        func(query [][]float64) ([][]float64, error)
}

// Option 配置核采样器。
type Option func(*samplerOptions)

type samplerOptions struct {
	rng         *rand.Rand
	numFeatures int
	scale       float64
	temperature float64
}

func defaultOptions() *samplerOptions {
	return &samplerOptions{
		numFeatures: DefaultNumRandomFeatures,
		scale:       DefaultRFFScale,
	}
}

// WithRand 指定随机数生成器（投影抽取与多项式/均匀采样共用）。
// 不指定时默认构造一个时间种子生成器。
func WithRand(rng *rand.Rand) Option {
	return func(o *samplerOptions) { o.rng = rng }
}

// WithNumRandomFeatures 指定 RFF 随机特征数 R（输出宽度为 2R）。
func WithNumRandomFeatures(r int) Option {
	return func(o *samplerOptions) { o.numFeatures = r }
}

// WithScale 指定 RFF 特征生成尺度 ν。
func WithScale(scale float64) Option {
	return func(o *samplerOptions) { o.scale = scale }
}

// WithTemperature 记录训练侧 softmax 温度 τ。
// 预留参数：不参与特征生成（特征尺度用 ν，见 WithScale），
// 仅随采样器透传给下游训练代码。
func WithTemperature(tau float64) Option {
	return func(o *samplerOptions) { o.temperature = tau }
}

func (s *KernelSampler) Name() string { return s.name }

// NumItems 返回物品目录大小。
func (s *KernelSampler) NumItems() int { return s.numItems }

// Temperature 返回随采样器透传的训练侧 softmax 温度 τ（0 表示未设置）。
// 仅供下游损失读取，不参与本库任何计算。
func (s *KernelSampler) Temperature() float64 { return s.temperature }

// Update 用最新物品向量整体替换物品表。
// 行数必须等于构造时的 numItems；RFF 变体在此处完成一次性的物品侧核变换。
func (s *KernelSampler) Update(itemEmbs [][]float64) error {
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

// GetLogits 计算全量 query x item 的 proposal 权重矩阵。
// Update 之前调用返回 PRECONDITION 错误。
func (s *KernelSampler) GetLogits(query [][]float64) ([][]float64, error) {
	if s.itemTable == nil {
		return nil, core.NewDomainError(core.ModuleSampler, core.ErrorCodePrecondition,
			"sampler: forward before update (no item table)")
	}
	if err := checkQuery(query); err != nil {
		return nil, err
	}
	return s.logits(query)
}

// Forward 为每个 query 行采样 numNeg 个负例。
//
// 采样流程：
//  1. 计算 Q x numItems 的 logits 矩阵
//  2. 每行按权重有放回地抽 numNeg 个下标（numNeg 可超过高权重物品数，
//     重复是重要性采样的正常结果）
//  3. 重要性权重 logw = log(w_i * numNeg) - log(行权重和)，
//     即自归一化重要性采样校正
//  4. 下标 +1 映射为 1-based 物品 ID
//
// 采样决策本身不参与梯度传播；下游损失只使用返回物品的真实打分。
func (s *KernelSampler) Forward(query [][]float64, numNeg int, posItems [][]int64) (*Result, error) {
	if err := checkNumNeg(numNeg); err != nil {
		return nil, err
	}
	logits, err := s.GetLogits(query)
	if err != nil {
		return nil, err
	}

	res := &Result{
		NegItems:   make([][]int64, len(logits)),
		NegLogProb: make([][]float64, len(logits)),
	}
	logK := math.Log(float64(numNeg))
	for i, row := range logits {
		idx, total := sampleMultinomial(s.rng, row, numNeg)
		logTotal := math.Log(total)

		ids := make([]int64, numNeg)
		logw := make([]float64, numNeg)
		for j, k := range idx {
			ids[j] = s.itemTable.ItemID(k)
			logw[j] = math.Log(row[k]) + logK - logTotal
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
func (s *KernelSampler) ComputeItemP(query [][]float64, posItems [][]int64) ([][]float64, error) {
	if err := checkQuery(query); err != nil {
		return nil, err
	}
	return uniformItemP(s.numItems, posItems), nil
}
