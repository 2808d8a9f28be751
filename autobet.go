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

// Package autobet 提供通用的自動下注排程引擎。
//
// 引擎驅動一個「Round Executor」反覆下注：每局結算後更新統計、檢查停止條件、
// 依下注策略計算下一注，再於結算停頓後發出下一局；任何時刻最多只有一局在進行中，
// 並可隨時取消。
//
// 組成：
//   - Session：單次會話的狀態機（IDLE → ROUND_IN_FLIGHT → SETTLING → SCHEDULING_NEXT → ... → STOPPED）。
//   - Adapter：每款遊戲提供的轉接層（開局、餘額檢查、停損指標）。
//   - Lab：遊戲註冊表 + 預設設定 + 亂數工廠的組裝入口，建立 Adapter 與 Simulator。
//   - Simulator：以多個 worker 平行跑大量獨立會話並產出批次報表。
//
// 典型使用：
//
//	lab, _ := autobet.NewDefaultLab()
//	cfg, _ := lab.Preset("martingale")
//	ad, _ := lab.NewAdapter("dice", games.Params{"multiplier": 2}, w, uid, seed)
//	s, _ := autobet.Start(ctx, cfg, ad, autobet.WithLogger(log))
//	final, _ := s.Wait(ctx)
package autobet

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/autobet/errs"
	"github.com/zintix-labs/autobet/sdk/buf"
	"github.com/zintix-labs/autobet/setting"
)

// Adapter 每款遊戲提供給引擎的邊界合約。
//
//   - ExecuteRound：以指定注額開一局，每次呼叫必須回傳恰好一次。
//     ctx 於會話停止時取消；引擎不設逾時，卡住的 executor 會讓會話停在 ROUND_IN_FLIGHT 直到 Stop。
//     回傳 KindInsufficientBalance 錯誤時以 insufficient_balance 停止，其他錯誤以 executor_failure 停止，兩者皆不計入統計。
//   - HasSufficientBalance：每局發出前同步呼叫，false 即停止。
//   - LossMetric：停損條件使用的損失指標。
type Adapter interface {
	ExecuteRound(ctx context.Context, bet decimal.Decimal) (buf.RoundOutcome, error)
	HasSufficientBalance(bet decimal.Decimal) bool
	LossMetric() setting.LossMetric
}

// State 會話狀態
type State uint8

const (
	StateIdle State = iota
	StateRoundInFlight
	StateSettling
	StateSchedulingNext
	StateStopped
)

var stateMap = map[State]string{
	StateIdle:           "IDLE",
	StateRoundInFlight:  "ROUND_IN_FLIGHT",
	StateSettling:       "SETTLING",
	StateSchedulingNext: "SCHEDULING_NEXT",
	StateStopped:        "STOPPED",
}

func (s State) String() string {
	if str, ok := stateMap[s]; ok {
		return str
	}
	return "UNKNOWN"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for k, v := range stateMap {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return errs.Invalidf("unknown session state: %q", b)
}

// Terminal 是否為終止狀態
func (s State) Terminal() bool { return s == StateStopped }
