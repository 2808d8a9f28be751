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

package stats

import (
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/autobet/sdk/buf"
)

// StopReason 會話結束原因，附在最終統計快照上。
type StopReason string

const (
	ReasonNone                StopReason = ""
	ReasonTargetReached       StopReason = "target_reached"
	ReasonWinTarget           StopReason = "win_target"
	ReasonLossTarget          StopReason = "loss_target"
	ReasonInsufficientBalance StopReason = "insufficient_balance"
	ReasonExecutorFailure     StopReason = "executor_failure"
	ReasonCancelled           StopReason = "cancelled"
)

// Reasons 所有非空結束原因（固定順序，供報表使用）
var Reasons = []StopReason{
	ReasonTargetReached,
	ReasonWinTarget,
	ReasonLossTarget,
	ReasonInsufficientBalance,
	ReasonExecutorFailure,
	ReasonCancelled,
}

// SessionStats 會話累積統計
//
// 不變量：RoundsCompleted = Wins + Losses。
// CurrentStreak 正數為連贏、負數為連輸；BestStreak 為出現過的最大 |CurrentStreak|。
type SessionStats struct {
	RoundsCompleted int             `json:"rounds_completed" yaml:"rounds_completed"`
	Wins            int             `json:"wins"             yaml:"wins"`
	Losses          int             `json:"losses"           yaml:"losses"`
	TotalWagered    decimal.Decimal `json:"total_wagered"    yaml:"total_wagered"`
	TotalProfit     decimal.Decimal `json:"total_profit"     yaml:"total_profit"` // 累積 payout - 累積 wagered
	CurrentStreak   int             `json:"current_streak"   yaml:"current_streak"`
	BestStreak      int             `json:"best_streak"      yaml:"best_streak"`
	BiggestWin      decimal.Decimal `json:"biggest_win"      yaml:"biggest_win"`  // 單局最大淨利
	BiggestLoss     decimal.Decimal `json:"biggest_loss"     yaml:"biggest_loss"` // 單局最大損失（正數）
	StopReason      StopReason      `json:"stop_reason,omitempty" yaml:"stop_reason,omitempty"`
	Err             string          `json:"err,omitempty"         yaml:"err,omitempty"`
}

// Update 以單局結果推進統計，回傳新值；輸入 st 不會被修改。
func Update(st SessionStats, o buf.RoundOutcome) SessionStats {
	next := st
	next.RoundsCompleted++
	next.TotalWagered = st.TotalWagered.Add(o.BetAmount)

	profit := o.Profit()
	next.TotalProfit = st.TotalProfit.Add(profit)

	if o.Won {
		next.Wins++
		if st.CurrentStreak >= 0 {
			next.CurrentStreak = st.CurrentStreak + 1
		} else {
			next.CurrentStreak = 1
		}
		if profit.GreaterThan(st.BiggestWin) {
			next.BiggestWin = profit
		}
	} else {
		next.Losses++
		if st.CurrentStreak <= 0 {
			next.CurrentStreak = st.CurrentStreak - 1
		} else {
			next.CurrentStreak = -1
		}
		if o.BetAmount.GreaterThan(st.BiggestLoss) {
			next.BiggestLoss = o.BetAmount
		}
	}

	next.BestStreak = max(st.BestStreak, abs(next.CurrentStreak))
	return next
}

// NetLoss 會話累積淨損失 max(0, -TotalProfit)
func (s SessionStats) NetLoss() decimal.Decimal {
	if s.TotalProfit.IsNegative() {
		return s.TotalProfit.Neg()
	}
	return decimal.Zero
}

// WinRate 勝率（0 局時回傳 0）
func (s SessionStats) WinRate() float64 {
	if s.RoundsCompleted == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.RoundsCompleted)
}

// Rtp 回傳 (wagered + profit) / wagered
func (s SessionStats) Rtp() float64 {
	if s.TotalWagered.IsZero() {
		return 0
	}
	r, _ := s.TotalWagered.Add(s.TotalProfit).Div(s.TotalWagered).Float64()
	return r
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
