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

package games

import (
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/autobet/errs"
	"github.com/zintix-labs/autobet/sdk/core"
	"github.com/zintix-labs/autobet/sdk/sampler"
	"github.com/zintix-labs/autobet/setting"
)

// 停損指標：wheel 以最近一局輸掉的注額計算。

var wheelEntry = Entry{
	Name:       "wheel",
	LossMetric: setting.LossLastRound,
	Params: map[string]string{
		"risk": "low | medium | high (default low)",
	},
	Build: buildWheel,
}

// segment 轉盤上同倍數的一組格子
type segment struct {
	mult   float64
	weight int
}

var wheelRisk = map[string][]segment{
	"low":    {{0, 4}, {1.2, 14}, {1.5, 2}},
	"medium": {{0, 17}, {1.5, 5}, {2, 4}, {3, 3}, {5, 1}},
	"high":   {{0, 49}, {49.5, 1}},
}

type wheel struct {
	risk  string
	table *sampler.AliasTable
	mults []decimal.Decimal
}

type WheelDetail struct {
	Risk       string          `json:"risk"`
	Segment    int             `json:"segment"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

func buildWheel(p Params) (Logic, error) {
	risk, err := p.String("risk", "low")
	if err != nil {
		return nil, err
	}
	segs, ok := wheelRisk[risk]
	if !ok {
		return nil, errs.Invalidf("wheel risk must be low, medium or high, got %q", risk)
	}
	w := make([]int, len(segs))
	m := make([]decimal.Decimal, len(segs))
	for i, s := range segs {
		w[i] = s.weight
		m[i] = mult(s.mult)
	}
	at, err := sampler.BuildAliasTable(w)
	if err != nil {
		return nil, err
	}
	return &wheel{risk: risk, table: at, mults: m}, nil
}

func (g *wheel) Play(c *core.Core) Result {
	idx := g.table.Pick(c)
	m := g.mults[idx]
	d := WheelDetail{Risk: g.risk, Segment: idx, Multiplier: m}
	if m.IsPositive() {
		return Result{Won: true, Multiplier: m, Detail: d}
	}
	return Result{Detail: d}
}
