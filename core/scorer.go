package core

import (
	"fmt"
	"math"
)

// Scorer 是两批向量之间的两两相似度打分器。
//
// 核心思想：
//   - Score 对行向量做全量两两打分，返回 len(a) x len(b) 矩阵
//   - ScorePair 只计算一对向量，供稀疏路径（仅对采样到的 pair 打分）使用
//
// 使用场景：
//   - 稠密核采样：query 批 x 全量物品表 的 logits 矩阵
//   - 近似核采样：只为 (query, 采样物品) pair 逐对打分，避免全量矩阵
type Scorer interface {
	Name() string

	// Score 计算 a、b 两批向量的两两相似度矩阵。
	// 返回矩阵的第 i 行第 j 列为 a[i] 与 b[j] 的相似度。
	Score(a, b [][]float64) ([][]float64, error)

	// ScorePair 计算单对向量的相似度。
	ScorePair(a, b []float64) (float64, error)
}

// InnerProductCapable 是内积能力标记接口。
//
// 核方法采样器依赖"相似度即内积"的前提（平方核、RFF 核的线性化都建立在
// 内积之上），因此构造时会检查打分器是否实现了该标记；
// 学习型/距离型打分器不应实现它。
type InnerProductCapable interface {
	InnerProduct()
}

// InnerProductScorer 是内积打分器。
type InnerProductScorer struct{}

// NewInnerProductScorer 创建内积打分器。
func NewInnerProductScorer() *InnerProductScorer {
	return &InnerProductScorer{}
}

func (s *InnerProductScorer) Name() string { return "scorer.inner_product" }

// InnerProduct 实现 InnerProductCapable 标记。
func (s *InnerProductScorer) InnerProduct() {}

func (s *InnerProductScorer) ScorePair(a, b []float64) (float64, error) {
	return dotProduct(a, b)
}

func (s *InnerProductScorer) Score(a, b [][]float64) ([][]float64, error) {
	return pairwise(s, a, b)
}

// CosineScorer 是余弦相似度打分器（归一化内积）。
type CosineScorer struct{}

// NewCosineScorer 创建余弦相似度打分器。
func NewCosineScorer() *CosineScorer {
	return &CosineScorer{}
}

func (s *CosineScorer) Name() string { return "scorer.cosine" }

// InnerProduct 实现 InnerProductCapable 标记：余弦即单位向量上的内积。
func (s *CosineScorer) InnerProduct() {}

func (s *CosineScorer) ScorePair(a, b []float64) (float64, error) {
	dot, err := dotProduct(a, b)
	if err != nil {
		return 0, err
	}
	var na, nb float64
	for i := range a {
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

func (s *CosineScorer) Score(a, b [][]float64) ([][]float64, error) {
	return pairwise(s, a, b)
}

// EuclideanScorer 是欧氏距离打分器（取负距离作为相似度）。
// 它不是内积型打分器，不实现 InnerProductCapable，核采样器会在构造时拒绝它。
type EuclideanScorer struct{}

// NewEuclideanScorer 创建欧氏距离打分器。
func NewEuclideanScorer() *EuclideanScorer {
	return &EuclideanScorer{}
}

func (s *EuclideanScorer) Name() string { return "scorer.euclidean" }

func (s *EuclideanScorer) ScorePair(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, NewDomainError(ModuleScorer, ErrorCodeInvalidInput,
			fmt.Sprintf("scorer: dimension mismatch: %d vs %d", len(a), len(b)))
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return -math.Sqrt(sum), nil
}

func (s *EuclideanScorer) Score(a, b [][]float64) ([][]float64, error) {
	return pairwise(s, a, b)
}

// pairwise 用 ScorePair 展开成全量两两打分矩阵。
func pairwise(s Scorer, a, b [][]float64) ([][]float64, error) {
	out := make([][]float64, len(a))
	for i := range a {
		row := make([]float64, len(b))
		for j := range b {
			v, err := s.ScorePair(a[i], b[j])
			if err != nil {
				return nil, err
			}
			row[j] = v
		}
		out[i] = row
	}
	return out, nil
}

// dotProduct 计算向量内积。
func dotProduct(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, NewDomainError(ModuleScorer, ErrorCodeInvalidInput,
			fmt.Sprintf("scorer: dimension mismatch: %d vs %d", len(a), len(b)))
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum, nil
}
