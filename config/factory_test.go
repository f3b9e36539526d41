package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultFactory_BuildAllTypes(t *testing.T) {
	factory := DefaultFactory()
	tests := []string{
		"kernel.sphere",
		"kernel.rff",
		"kernel.sphere_appr",
		"kernel.rff_appr",
	}
	for _, typ := range tests {
		t.Run(typ, func(t *testing.T) {
			s, err := factory.Build(typ, map[string]interface{}{
				"num_items": 10,
				"seed":      42,
			})
			if err != nil {
				t.Fatalf("Build(%s) failed: %v", typ, err)
			}
			if s.Name() != typ {
				t.Fatalf("Name() = %s, want %s", s.Name(), typ)
			}
			if s.NumItems() != 10 {
				t.Fatalf("NumItems() = %d, want 10", s.NumItems())
			}
		})
	}
}

func TestFactory_UnknownType(t *testing.T) {
	factory := DefaultFactory()
	if _, err := factory.Build("kernel.unknown", nil); err == nil {
		t.Fatalf("unknown type did not fail")
	}
}

func TestFactory_InvalidConfig(t *testing.T) {
	factory := DefaultFactory()

	// 缺 num_items
	if _, err := factory.Build("kernel.sphere", map[string]interface{}{}); err == nil {
		t.Fatalf("missing num_items did not fail")
	}
	// 未知 metric
	if _, err := factory.Build("kernel.sphere", map[string]interface{}{
		"num_items": 5,
		"metric":    "learned",
	}); err == nil {
		t.Fatalf("unknown metric did not fail")
	}
}

func TestLoadFromYAML_Build(t *testing.T) {
	yamlDoc := `samplers:
  - name: train_neg
    type: kernel.rff
    config:
      num_items: 8
      num_random_features: 16
      scale: 4
      seed: 7
  - name: eval_neg
    type: kernel.sphere_appr
    config:
      num_items: 8
      seed: 7
      metric: cosine
`
	path := filepath.Join(t.TempDir(), "samplers.yaml")
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}

	cfg, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML failed: %v", err)
	}
	if len(cfg.Samplers) != 2 {
		t.Fatalf("samplers = %d, want 2", len(cfg.Samplers))
	}

	built, err := cfg.Build(DefaultFactory())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(built) != 2 {
		t.Fatalf("built = %d, want 2", len(built))
	}

	s, ok := built["train_neg"]
	if !ok {
		t.Fatalf("train_neg not built")
	}

	// 配置出的采样器完整走一遍 update → forward
	items := make([][]float64, 8)
	for i := range items {
		items[i] = []float64{float64(i) + 1, 1, 0, 1}
	}
	if err := s.Update(items); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	res, err := s.Forward([][]float64{{1, 0, 1, 0}}, 4, nil)
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if len(res.NegItems) != 1 || len(res.NegItems[0]) != 4 {
		t.Fatalf("result shape wrong: %v", res.NegItems)
	}
	for _, id := range res.NegItems[0] {
		if id < 1 || id > 8 {
			t.Fatalf("neg item id %d out of [1,8]", id)
		}
	}
}

func TestLoadFromJSON(t *testing.T) {
	jsonDoc := `{"samplers":[{"name":"n1","type":"kernel.sphere","config":{"num_items":4,"seed":1}}]}`
	path := filepath.Join(t.TempDir(), "samplers.json")
	if err := os.WriteFile(path, []byte(jsonDoc), 0o644); err != nil {
		t.Fatalf("write json: %v", err)
	}

	cfg, err := LoadFromJSON(path)
	if err != nil {
		t.Fatalf("LoadFromJSON failed: %v", err)
	}
	built, err := cfg.Build(DefaultFactory())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, ok := built["n1"]; !ok {
		t.Fatalf("n1 not built")
	}
}
