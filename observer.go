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

package autobet

import (
	"github.com/zintix-labs/autobet/sdk/buf"
	"github.com/zintix-labs/autobet/stats"
)

// Observer 會話通知（僅供顯示，不影響正確性）。
//
// 通知依發生順序於單一 goroutine 序列送出；observer 內可以呼叫 Session 的任何方法，
// 包含 Stop。observer panic 會被吞掉並記錄。
type Observer interface {
	OnStateChanged(State)
	OnStatsChanged(stats.SessionStats)
}

// RoundObserver 選用：每局結算後收到該局結果（Round 已填入序號）
type RoundObserver interface {
	OnRoundSettled(buf.RoundOutcome)
}

// UnexpectedSettlementObserver 選用：收到不合法的結算回報（例如停止後才回來的局）
type UnexpectedSettlementObserver interface {
	OnUnexpectedSettlement(round int)
}

// ObserverFuncs 以函式組成 Observer，未設定的欄位忽略
type ObserverFuncs struct {
	State func(State)
	Stats func(stats.SessionStats)
	Round func(buf.RoundOutcome)
}

func (f ObserverFuncs) OnStateChanged(s State) {
	if f.State != nil {
		f.State(s)
	}
}

func (f ObserverFuncs) OnStatsChanged(st stats.SessionStats) {
	if f.Stats != nil {
		f.Stats(st)
	}
}

func (f ObserverFuncs) OnRoundSettled(o buf.RoundOutcome) {
	if f.Round != nil {
		f.Round(o)
	}
}

type eventKind uint8

const (
	evState eventKind = iota
	evStats
	evRound
	evUnexpected
	evDone
)

type event struct {
	kind    eventKind
	state   State
	stats   stats.SessionStats
	outcome buf.RoundOutcome
	round   int
}
