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

package buf

import "github.com/shopspring/decimal"

// RoundOutcome 單局結算結果，由 Round Executor 每局產生一次。
//
// Detail 為遊戲自定義內容（骰點、輪盤格、牌面...），引擎不解讀。
type RoundOutcome struct {
	Round     int             `json:"round"` // 會話內序號（1 起算），由 Session 於通知時填入
	Won       bool            `json:"won"`
	BetAmount decimal.Decimal `json:"bet"`
	Payout    decimal.Decimal `json:"payout"` // 輸局為 0
	Detail    any             `json:"detail,omitempty"`
}

// Profit 本局淨利：贏局 payout - bet，輸局 -bet（忽略輸局回報的 payout）。
func (o RoundOutcome) Profit() decimal.Decimal {
	if o.Won {
		return o.Payout.Sub(o.BetAmount)
	}
	return o.BetAmount.Neg()
}

// Lost 輸局時回傳輸掉的注額，贏局為 0。
func (o RoundOutcome) Lost() decimal.Decimal {
	if o.Won {
		return decimal.Zero
	}
	return o.BetAmount
}
