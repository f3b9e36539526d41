package core

import "fmt"

// ItemVectorTable 是物品向量表：num_items 行稠密向量的有序序列。
//
// 约定：
//   - 第 i 行对应物品 ID i+1（1-based；ID 0 保留为 padding/无效哨兵）
//   - 每次 update 整表替换（不做增量合并），表在两次 update 之间允许过期
//   - 表构建时深拷贝输入行，之后由表独占持有，外部修改原始切片不影响表
type ItemVectorTable struct {
	vecs [][]float64
	dim  int
}

// NewItemVectorTable 从一批向量构建物品向量表。
// 所有行必须非空且维度一致，否则返回 INVALID_INPUT。
func NewItemVectorTable(vecs [][]float64) (*ItemVectorTable, error) {
	if len(vecs) == 0 {
		return nil, NewDomainError(ModuleSampler, ErrorCodeInvalidInput,
			"item table: empty embedding batch")
	}
	dim := len(vecs[0])
	if dim == 0 {
		return nil, NewDomainError(ModuleSampler, ErrorCodeInvalidInput,
			"item table: zero-width embedding")
	}
	rows := make([][]float64, len(vecs))
	for i, v := range vecs {
		if len(v) != dim {
			return nil, NewDomainError(ModuleSampler, ErrorCodeInvalidInput,
				fmt.Sprintf("item table: ragged row %d: dim %d, want %d", i, len(v), dim))
		}
		row := make([]float64, dim)
		copy(row, v)
		rows[i] = row
	}
	return &ItemVectorTable{vecs: rows, dim: dim}, nil
}

// NumItems 返回表中物品数量。
func (t *ItemVectorTable) NumItems() int { return len(t.vecs) }

// Dim 返回向量维度。
func (t *ItemVectorTable) Dim() int { return t.dim }

// Row 返回第 i 行向量（0-based 内部下标）。
func (t *ItemVectorTable) Row(i int) []float64 { return t.vecs[i] }

// Rows 返回全部行。调用方不得修改返回值。
func (t *ItemVectorTable) Rows() [][]float64 { return t.vecs }

// ItemID 把 0-based 行下标映射为 1-based 物品 ID。
func (t *ItemVectorTable) ItemID(i int) int64 { return int64(i) + 1 }
