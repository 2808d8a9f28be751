// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sampler 提供整數權重的 O(1) 加權抽樣（Vose Alias Method）。
//
// 轉盤類遊戲以格子權重建表，每局抽一次格子。
// 全程整數運算，避免浮點誤差累積。
package sampler

import (
	"math"
	"math/bits"

	"github.com/zintix-labs/autobet/errs"
	"github.com/zintix-labs/autobet/sdk/core"
)

// AliasTable 整數版 alias table。
//
// Prob[i] 為 scaling 後的機率（權重 * Size），Aliases[i] 為補足機率的別名索引。
// 建表 O(N)，抽樣 O(1)（固定 2 次 IntN）。
type AliasTable struct {
	Prob    []int
	Aliases []int
	Size    int
	Total   int
}

// BuildAliasTable 根據非負整數權重建立 AliasTable。
//
// 權重不需正規化，可為零；全部為零、出現負數或溢位時回傳 KindInvalidConfig。
func BuildAliasTable(weights []int) (*AliasTable, error) {
	n := len(weights)
	if n == 0 {
		return nil, errs.Invalidf("alias table: empty weights")
	}

	total := uint64(0)
	for i, w := range weights {
		if w < 0 {
			return nil, errs.Invalidf("alias table: negative weight at %d", i)
		}
		if total > uint64(math.MaxInt)-uint64(w) {
			return nil, errs.Invalidf("alias table: total weight overflow")
		}
		total += uint64(w)
	}
	if total == 0 {
		return nil, errs.Invalidf("alias table: all weights are zero")
	}
	if !isSafeMultiply(int(total), n) {
		return nil, errs.Invalidf("alias table: weights too large")
	}

	prob := make([]int, n)
	aliases := make([]int, n)
	small := make([]int, 0, n)
	large := make([]int, 0, n)

	for i, w := range weights {
		prob[i] = w * n
		if prob[i] < int(total) {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		aliases[s] = l
		// 維持 sum(prob) = total * n
		prob[l] = prob[l] + prob[s] - int(total)

		if prob[l] < int(total) {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}
	// 殘留者機率視為滿格
	for _, i := range append(small, large...) {
		prob[i] = int(total)
		aliases[i] = i
	}

	return &AliasTable{
		Prob:    prob,
		Aliases: aliases,
		Size:    n,
		Total:   int(total),
	}, nil
}

func isSafeMultiply(a, b int) bool {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	return hi == 0 && (lo <= math.MaxInt64)
}

// Pick 抽取一個索引：先均勻選槽位，再以整數比較決定自己或別名。
func (at *AliasTable) Pick(c *core.Core) int {
	if at.Size == 0 {
		return -1
	}
	idx := c.IntN(at.Size)
	if c.IntN(at.Total) < at.Prob[idx] {
		return idx
	}
	return at.Aliases[idx]
}
