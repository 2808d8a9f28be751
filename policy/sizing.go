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

// Package policy 自動下注的純函式：下注金額調整與停止條件。
//
// 兩者皆為無狀態函式，每次呼叫以值接收會話狀態，不保留任何參考。
package policy

import (
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/autobet/sdk/buf"
	"github.com/zintix-labs/autobet/setting"
)

var hundred = decimal.NewFromInt(100)

// NextBet 依上一局結果計算下一局注額。
//
// 優先序：
//  1. 從 current 開始
//  2. 符合 increase 旗標時 current * (1 + IncreasePercent/100)
//  3. 符合 reset 旗標時回到 base（覆蓋第 2 步）
//  4. 夾在 [MinBet, MaxBet]，四捨五入到 Precision 位
func NextBet(base, current decimal.Decimal, outcome buf.RoundOutcome, cfg setting.SessionConfig) decimal.Decimal {
	candidate := current
	if cfg.Sizing.Increase(outcome.Won) {
		candidate = current.Mul(decimal.NewFromInt(1).Add(cfg.IncreasePercent.Div(hundred)))
	}
	if cfg.Sizing.Reset(outcome.Won) {
		candidate = base
	}
	candidate = clamp(candidate, cfg.MinBet, cfg.MaxBet).Round(cfg.Precision)
	// 四捨五入可能越過邊界（邊界本身比 Precision 更細時）
	return clamp(candidate, cfg.MinBet, cfg.MaxBet)
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
