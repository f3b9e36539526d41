package sampler

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/samplekit/core"
)

// Pool 是采样器的并发封装：每个 worker 持有独立的采样器实例，
// Forward 时把 query 批按行切片分发给各 worker 并发采样，再合并结果。
//
// 单个采样器实例的 Update/Forward 不是并发安全的（Update 整表替换
// 内部状态），跨 goroutine 共享的正确姿势是"一个 worker 一个实例"，
// Pool 把这条外部同步约定固化成结构。
//
// 注意：各 worker 的 rng 相互独立，Pool 的输出即使逐实例播种也不保证
// 与单实例顺序采样逐位一致（分片边界不同即流不同）。
type Pool struct {
	workers []Sampler
}

// NewPool 用 build 工厂构造 numWorkers 个独立采样器实例。
// build 每次调用都应返回全新实例（含独立的 rng），实例间不得共享可变状态。
func NewPool(numWorkers int, build func() (Sampler, error)) (*Pool, error) {
	if numWorkers < 1 {
		return nil, core.NewDomainError(core.ModuleSampler, core.ErrorCodeInvalidInput,
			"pool: numWorkers must be >= 1")
	}
	if build == nil {
		return nil, core.NewDomainError(core.ModuleSampler, core.ErrorCodeInvalidInput,
			"pool: nil build func")
	}
	workers := make([]Sampler, numWorkers)
	for i := range workers {
		s, err := build()
		if err != nil {
			return nil, err
		}
		workers[i] = s
	}
	return &Pool{workers: workers}, nil
}

// NumWorkers 返回 worker 数量。
func (p *Pool) NumWorkers() int { return len(p.workers) }

// Update 把物品向量广播给所有 worker（逐个顺序执行；
// Update 频率低，没必要为它并发）。
func (p *Pool) Update(itemEmbs [][]float64) error {
	for _, w := range p.workers {
		if err := w.Update(itemEmbs); err != nil {
			return err
		}
	}
	return nil
}

// Forward 把 query 批按行切成连续分片，交给各 worker 并发采样。
// 输出顺序与输入行顺序一致；任一 worker 出错或 ctx 取消则整体失败。
func (p *Pool) Forward(ctx context.Context, query [][]float64, numNeg int, posItems [][]int64) (*Result, error) {
	if err := checkNumNeg(numNeg); err != nil {
		return nil, err
	}
	if err := checkQuery(query); err != nil {
		return nil, err
	}
	if posItems != nil && len(posItems) != len(query) {
		return nil, core.NewDomainError(core.ModuleSampler, core.ErrorCodeInvalidInput,
			"pool: posItems rows do not match query rows")
	}

	res := &Result{
		NegItems:   make([][]int64, len(query)),
		NegLogProb: make([][]float64, len(query)),
	}
	if posItems != nil {
		res.PosProb = make([][]float64, len(query))
	}

	eg, ctx := errgroup.WithContext(ctx)
	n := len(p.workers)
	chunk := (len(query) + n - 1) / n

	for w := 0; w < n; w++ {
		lo := w * chunk
		if lo >= len(query) {
			break
		}
		hi := lo + chunk
		if hi > len(query) {
			hi = len(query)
		}
		worker := p.workers[w]

		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			var pos [][]int64
			if posItems != nil {
				pos = posItems[lo:hi]
			}
			part, err := worker.Forward(query[lo:hi], numNeg, pos)
			if err != nil {
				return err
			}
			copy(res.NegItems[lo:hi], part.NegItems)
			copy(res.NegLogProb[lo:hi], part.NegLogProb)
			if posItems != nil {
				copy(res.PosProb[lo:hi], part.PosProb)
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}
