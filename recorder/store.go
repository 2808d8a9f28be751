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

// Package recorder 自動下注的局歷史紀錄：收集每局結果與會話摘要並寫入 Store。
package recorder

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/autobet/sdk/buf"
	"github.com/zintix-labs/autobet/stats"
)

// RoundRecord 一局的持久化紀錄
type RoundRecord struct {
	Round  int             `json:"round"`
	Won    bool            `json:"won"`
	Bet    decimal.Decimal `json:"bet"`
	Payout decimal.Decimal `json:"payout"`
	Profit decimal.Decimal `json:"profit"`
	Detail json.RawMessage `json:"detail,omitempty"`
	At     time.Time       `json:"at"`
}

// NewRoundRecord 由結算結果建立紀錄；Detail 無法序列化時略過
func NewRoundRecord(o buf.RoundOutcome, at time.Time) RoundRecord {
	r := RoundRecord{
		Round:  o.Round,
		Won:    o.Won,
		Bet:    o.BetAmount,
		Payout: o.Payout,
		Profit: o.Profit(),
		At:     at,
	}
	if o.Detail != nil {
		if raw, err := json.Marshal(o.Detail); err == nil {
			r.Detail = raw
		}
	}
	return r
}

// Summary 會話摘要
type Summary struct {
	Session   string             `json:"session"`
	Game      string             `json:"game"`
	UID       string             `json:"uid"`
	State     string             `json:"state"`
	Stats     stats.SessionStats `json:"stats"`
	Chart     []ChartPoint       `json:"chart"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Store 局歷史儲存
//
// Rounds 回傳最近 limit 局（舊到新），limit <= 0 表示全部保留的紀錄。
type Store interface {
	AppendRound(ctx context.Context, sid string, r RoundRecord) error
	Rounds(ctx context.Context, sid string, limit int) ([]RoundRecord, error)
	SaveSummary(ctx context.Context, s Summary) error
	Summary(ctx context.Context, sid string) (Summary, error)
	Delete(ctx context.Context, sid string) error
}
