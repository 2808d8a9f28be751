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

package policy

import (
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/autobet/sdk/buf"
	"github.com/zintix-labs/autobet/setting"
	"github.com/zintix-labs/autobet/stats"
)

// ShouldStop 以已更新的統計與最新一局結果判斷是否停止。
//
// 依序檢查，第一個成立者勝出：
//  1. StopOnWin 且 TotalProfit >= WinProfitTarget
//  2. StopOnLoss 且 損失指標 >= LossAmountTarget（指標由遊戲轉接層宣告）
//  3. RoundsCompleted >= TargetRoundCount
func ShouldStop(cfg setting.SessionConfig, metric setting.LossMetric, st stats.SessionStats, outcome buf.RoundOutcome) (bool, stats.StopReason) {
	if cfg.StopOnWin && st.TotalProfit.GreaterThanOrEqual(cfg.WinProfitTarget) {
		return true, stats.ReasonWinTarget
	}
	if cfg.StopOnLoss && LossOf(metric, st, outcome).GreaterThanOrEqual(cfg.LossAmountTarget) {
		return true, stats.ReasonLossTarget
	}
	if st.RoundsCompleted >= cfg.TargetRoundCount {
		return true, stats.ReasonTargetReached
	}
	return false, stats.ReasonNone
}

// LossOf 回傳指定指標下的損失值（非負）
func LossOf(metric setting.LossMetric, st stats.SessionStats, outcome buf.RoundOutcome) decimal.Decimal {
	switch metric {
	case setting.LossLastRound:
		return outcome.Lost()
	default:
		return st.NetLoss()
	}
}
