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

package dto

import (
	"github.com/zintix-labs/autobet"
	"github.com/zintix-labs/autobet/errs"
	"github.com/zintix-labs/autobet/games"
	"github.com/zintix-labs/autobet/recorder"
	"github.com/zintix-labs/autobet/stats"
)

// SessionView 對外輸出的會話狀態
type SessionView struct {
	autobet.Snapshot
	UID    string                `json:"uid"`
	Game   string                `json:"game"`
	Params games.Params          `json:"params,omitempty"`
	Chart  []recorder.ChartPoint `json:"chart,omitempty"`
}

// HistoryView 會話歷史（最近 N 局 + 摘要）
type HistoryView struct {
	Session string                 `json:"session"`
	Summary *recorder.Summary      `json:"summary,omitempty"`
	Rounds  []recorder.RoundRecord `json:"rounds"`
}

// SimView 批次模擬結果
type SimView struct {
	Report   *stats.BatchReport `json:"report"`
	Seed     int64              `json:"seed"`
	UsedTime int64              `json:"used_ms"`
}

// ErrorBody 錯誤回應
type ErrorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func NewErrorBody(err error) ErrorBody {
	return ErrorBody{Error: err.Error(), Kind: errs.KindOf(err).String()}
}
