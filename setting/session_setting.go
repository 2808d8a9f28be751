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

package setting

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/autobet/errs"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPrecision 設定檔未填 precision 時使用的小數位數
	DefaultPrecision int32 = 2
	// maxPrecision 最小貨幣單位的小數位數上限
	maxPrecision int32 = 12
)

// SessionConfig 一次自動下注會話的設定。
//
// 會話建立後即視為唯讀；下注金額的變化以 Session 內部的 currentBet 追蹤，不回寫設定。
type SessionConfig struct {
	Name             string          `yaml:"name"                json:"name,omitempty"`
	TargetRoundCount int             `yaml:"target_round_count"  json:"target_round_count"`
	BaseBetAmount    decimal.Decimal `yaml:"base_bet"            json:"base_bet"`
	MinBet           decimal.Decimal `yaml:"min_bet"             json:"min_bet"`
	MaxBet           decimal.Decimal `yaml:"max_bet"             json:"max_bet"`
	StopOnWin        bool            `yaml:"stop_on_win"         json:"stop_on_win"`
	WinProfitTarget  decimal.Decimal `yaml:"win_profit_target"   json:"win_profit_target"`
	StopOnLoss       bool            `yaml:"stop_on_loss"        json:"stop_on_loss"`
	LossAmountTarget decimal.Decimal `yaml:"loss_amount_target"  json:"loss_amount_target"`
	Sizing           Sizing          `yaml:"sizing"              json:"sizing"`
	IncreasePercent  decimal.Decimal `yaml:"increase_percent"    json:"increase_percent"`
	Precision        int32           `yaml:"precision"           json:"precision"`       // 最小貨幣單位（小數位數）
	SettlePauseMs    int64           `yaml:"settle_pause_ms"     json:"settle_pause_ms"` // 兩局之間的停頓
}

// sessionConfig 無方法的別名，解碼時避免遞迴
type sessionConfig SessionConfig

// UnmarshalJSON 未出現的 precision 以 DefaultPrecision 補上；未知欄位視為錯誤。
func (c *SessionConfig) UnmarshalJSON(b []byte) error {
	raw := sessionConfig{Precision: DefaultPrecision}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	*c = SessionConfig(raw)
	return nil
}

// UnmarshalYAML 同 UnmarshalJSON，未填 precision 時為 DefaultPrecision
func (c *SessionConfig) UnmarshalYAML(n *yaml.Node) error {
	raw := sessionConfig{Precision: DefaultPrecision}
	if err := n.Decode(&raw); err != nil {
		return err
	}
	*c = SessionConfig(raw)
	return nil
}

// Validate 執行會話開始前的檢查，失敗一律回傳 KindInvalidConfig。
func (c *SessionConfig) Validate() error {
	if c.TargetRoundCount < 1 {
		return errs.Invalidf("target_round_count must >= 1, got %d", c.TargetRoundCount)
	}
	if c.MinBet.IsNegative() {
		return errs.Invalidf("min_bet must >= 0, got %s", c.MinBet)
	}
	if c.MinBet.GreaterThan(c.MaxBet) {
		return errs.Invalidf("min_bet %s > max_bet %s", c.MinBet, c.MaxBet)
	}
	if c.BaseBetAmount.LessThan(c.MinBet) || c.BaseBetAmount.GreaterThan(c.MaxBet) {
		return errs.Invalidf("base_bet %s out of [%s, %s]", c.BaseBetAmount, c.MinBet, c.MaxBet)
	}
	if c.WinProfitTarget.IsNegative() {
		return errs.Invalidf("win_profit_target must >= 0")
	}
	if c.LossAmountTarget.IsNegative() {
		return errs.Invalidf("loss_amount_target must >= 0")
	}
	if c.IncreasePercent.IsNegative() {
		return errs.Invalidf("increase_percent must >= 0")
	}
	if c.Precision < 0 || c.Precision > maxPrecision {
		return errs.Invalidf("precision must be in [0, %d], got %d", maxPrecision, c.Precision)
	}
	// base_bet 須落在最小貨幣單位上
	if !c.BaseBetAmount.Equal(c.BaseBetAmount.Round(c.Precision)) {
		return errs.Invalidf("base_bet %s has more than %d decimal places", c.BaseBetAmount, c.Precision)
	}
	if c.SettlePauseMs < 0 {
		return errs.Invalidf("settle_pause_ms must >= 0")
	}
	return nil
}

// SettlePause 兩局之間的停頓時間
func (c *SessionConfig) SettlePause() time.Duration {
	return time.Duration(c.SettlePauseMs) * time.Millisecond
}

// GetSessionConfigByYAML 讀取 YAML 設定並檢查後回傳
func GetSessionConfigByYAML(data []byte) (*SessionConfig, error) {
	c := &SessionConfig{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errs.WrapKind(err, errs.KindInvalidConfig, "failed to unmarshal yaml")
	}
	if err := c.Validate(); err != nil {
		return nil, errs.Wrap(err, "session config: "+c.Name)
	}
	return c, nil
}

// GetSessionConfigByJSON 讀取 JSON 設定並檢查後回傳
func GetSessionConfigByJSON(data []byte) (*SessionConfig, error) {
	c := &SessionConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, errs.WrapKind(err, errs.KindInvalidConfig, "can not unmarshal json byte")
	}
	if err := c.Validate(); err != nil {
		return nil, errs.Wrap(err, "session config: "+c.Name)
	}
	return c, nil
}
