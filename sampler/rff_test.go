package sampler

import (
	"math"
	"math/rand"
	"testing"

	"github.com/rushteam/samplekit/core"
)

func TestNewRFFSampler_InvalidScorer(t *testing.T) {
	if _, err := NewRFFSampler(5, core.NewEuclideanScorer()); !core.IsInvalidScorer(err) {
		t.Fatalf("euclidean scorer err = %v, want INVALID_SCORER", err)
	}
}

func TestRFFSampler_TemperaturePassthrough(t *testing.T) {
	// τ 只透传不参与计算；ν（WithScale）才是特征尺度
	s, err := NewRFFSampler(5, core.NewInnerProductScorer(),
		WithTemperature(25), WithScale(4))
	if err != nil {
		t.Fatalf("NewRFFSampler failed: %v", err)
	}
	if s.Temperature() != 25 {
		t.Fatalf("Temperature() = %v, want 25", s.Temperature())
	}
}

func TestRFFSampler_UpdateKernelizesItemTable(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const r = 16
	s, err := NewRFFSampler(5, core.NewInnerProductScorer(),
		WithRand(rng), WithNumRandomFeatures(r))
	if err != nil {
		t.Fatalf("NewRFFSampler failed: %v", err)
	}
	if err := s.Update(randUnitVecs(rng, 5, 8)); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	// 物品表在 update 时已核化：宽度 2R 而不是原始维度
	if got := s.itemTable.Dim(); got != 2*r {
		t.Fatalf("item table dim = %d, want %d", got, 2*r)
	}
}

func TestRFFSampler_ForwardScenario(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	s, err := NewRFFSampler(5, core.NewInnerProductScorer(), WithRand(rng))
	if err != nil {
		t.Fatalf("NewRFFSampler failed: %v", err)
	}
	if err := s.Update(randUnitVecs(rng, 5, 8)); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	res, err := s.Forward(randUnitVecs(rng, 2, 8), 3, nil)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if len(res.NegItems) != 2 {
		t.Fatalf("rows = %d, want 2", len(res.NegItems))
	}
	for i := range res.NegItems {
		if len(res.NegItems[i]) != 3 {
			t.Fatalf("row %d cols = %d, want 3", i, len(res.NegItems[i]))
		}
		for j, id := range res.NegItems[i] {
			if id < 1 || id > 5 {
				t.Fatalf("neg item id %d out of [1,5]", id)
			}
			if w := res.NegLogProb[i][j]; math.IsNaN(w) {
				t.Fatalf("log weight (%d,%d) is NaN", i, j)
			}
		}
	}
}

func TestRFFSampler_FreshProjectionsPerForward(t *testing.T) {
	// RFF 每次 Forward 重抽投影：同一 rng 流上两次调用结果不同
	rng := rand.New(rand.NewSource(33))
	s, err := NewRFFSampler(8, core.NewInnerProductScorer(), WithRand(rng))
	if err != nil {
		t.Fatalf("NewRFFSampler failed: %v", err)
	}
	items := randUnitVecs(rng, 8, 6)
	if err := s.Update(items); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	query := randUnitVecs(rng, 2, 6)
	a, err := s.Forward(query, 4, nil)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	b, err := s.Forward(query, 4, nil)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	same := true
	for i := range a.NegLogProb {
		for j := range a.NegLogProb[i] {
			if a.NegLogProb[i][j] != b.NegLogProb[i][j] {
				same = false
			}
		}
	}
	if same {
		t.Fatalf("two forwards on one rng stream produced identical weights")
	}
}

func TestRFFSampler_ReseededDeterminism(t *testing.T) {
	items := randUnitVecs(rand.New(rand.NewSource(2)), 6, 8)
	query := randUnitVecs(rand.New(rand.NewSource(3)), 2, 8)

	run := func() *Result {
		s, err := NewRFFSampler(6, core.NewInnerProductScorer(),
			WithRand(rand.New(rand.NewSource(55))))
		if err != nil {
			t.Fatalf("NewRFFSampler failed: %v", err)
		}
		if err := s.Update(items); err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		res, err := s.Forward(query, 3, nil)
		if err != nil {
			t.Fatalf("Forward failed: %v", err)
		}
		return res
	}

	a, b := run(), run()
	for i := range a.NegItems {
		for j := range a.NegItems[i] {
			if a.NegItems[i][j] != b.NegItems[i][j] || a.NegLogProb[i][j] != b.NegLogProb[i][j] {
				t.Fatalf("identical seeds diverged at (%d,%d)", i, j)
			}
		}
	}
}
