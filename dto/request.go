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
	"encoding/json"
	"io"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/autobet/errs"
	"github.com/zintix-labs/autobet/games"
	"github.com/zintix-labs/autobet/setting"
)

// maxBody POST body 上限（1MiB）
const maxBody = 1 << 20

// StartSessionRequest 啟動一個自動下注會話。
//
// preset 與 config 擇一；兩者都有時 config 優先。
type StartSessionRequest struct {
	UID     string                 `json:"uid"`
	Game    string                 `json:"game"`
	Preset  string                 `json:"preset,omitempty"`
	Config  *setting.SessionConfig `json:"config,omitempty"`
	Params  games.Params           `json:"params,omitempty"`
	Seed    *int64                 `json:"seed,omitempty"`
	DelayMs int64                  `json:"delay_ms,omitempty"` // 模擬遊戲服務延遲
}

// SimRequest 批次模擬
type SimRequest struct {
	Game    string                 `json:"game"`
	Preset  string                 `json:"preset,omitempty"`
	Config  *setting.SessionConfig `json:"config,omitempty"`
	Params  games.Params           `json:"params,omitempty"`
	Players int                    `json:"players"`
	Workers int                    `json:"workers,omitempty"`
	Balance decimal.Decimal        `json:"balance"`
	Seed    *int64                 `json:"seed,omitempty"`
}

// DepositRequest 儲值
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// PresetSource 可依名稱取得預設設定（autobet.Lab 實作）
type PresetSource interface {
	Preset(name string) (setting.SessionConfig, error)
}

// ResolveConfig 依 config / preset 決定會話設定，並做檢查
func ResolveConfig(src PresetSource, preset string, cfg *setting.SessionConfig) (setting.SessionConfig, error) {
	if cfg != nil {
		c := *cfg
		if err := c.Validate(); err != nil {
			return setting.SessionConfig{}, err
		}
		return c, nil
	}
	if preset == "" {
		return setting.SessionConfig{}, errs.Invalidf("preset or config is required")
	}
	return src.Preset(preset)
}

// Validate 基本欄位檢查，遊戲與設定的合法性由上層決定
func (r *StartSessionRequest) Validate() error {
	if r.UID == "" {
		return errs.Invalidf("uid is required")
	}
	if r.Game == "" {
		return errs.Invalidf("game is required")
	}
	if r.DelayMs < 0 || r.DelayMs > 60_000 {
		return errs.Invalidf("delay_ms must be between 0 and 60000")
	}
	return nil
}

func (r *SimRequest) Validate() error {
	if r.Game == "" {
		return errs.Invalidf("game is required")
	}
	if r.Players < 1 || r.Players > 100_000 {
		return errs.Invalidf("players must be between 1 and 100,000")
	}
	if r.Workers < 0 || r.Workers > 64 {
		return errs.Invalidf("workers must be between 0 and 64")
	}
	if !r.Balance.IsPositive() {
		return errs.Invalidf("balance must > 0")
	}
	return nil
}

func (r *DepositRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return errs.Invalidf("amount must > 0")
	}
	return nil
}

// DecodeJSON 解碼 POST body 到 dst。
//
// body 上限 1MiB，未知欄位直接拒絕。錯誤一律為 KindInvalidConfig。
func DecodeJSON(r *http.Request, dst any) error {
	if r == nil || r.Body == nil {
		return errs.Invalidf("empty request body")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if err == io.EOF {
			return errs.Invalidf("empty request body")
		}
		return errs.WrapKind(err, errs.KindInvalidConfig, "invalid json")
	}
	return nil
}
