// Package samplekit 是大词表 softmax 训练的负采样工具包（Sample Kit）。
//
// 设计要点：
// - Sampler-first: 统一的 update → forward 生命周期，采样器可插拔替换
// - 核方法 proposal: 平方核（sphere）与 Random-Fourier-Feature 核两条线，
//   各有稠密（全量 logits 矩阵）与近似（均匀采样 + 逐 pair 打分）两种实现
// - 重要性权重随采样结果一并返回，下游损失据此做无偏校正
package samplekit

import "github.com/rushteam/samplekit/sampler"

// 轻量 facade：便于用户直接 import "samplekit" 使用核心抽象。
type Sampler = sampler.Sampler
type Result = sampler.Result
