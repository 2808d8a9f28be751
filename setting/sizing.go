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
	"strings"

	"github.com/zintix-labs/autobet/errs"
)

// Sizing 下注金額調整旗標。
//
// 旗標彼此不互斥：同一種結果可以同時設定 increase 與 reset，
// 由 policy.NextBet 以固定優先序處理（先 increase，reset 覆蓋）。
// 全部為 false 即 FLAT。
type Sizing struct {
	IncreaseOnWin  bool `yaml:"increase_on_win"  json:"increase_on_win"`
	IncreaseOnLoss bool `yaml:"increase_on_loss" json:"increase_on_loss"`
	ResetOnWin     bool `yaml:"reset_on_win"     json:"reset_on_win"`
	ResetOnLoss    bool `yaml:"reset_on_loss"    json:"reset_on_loss"`
}

const (
	SizingFlat           = "FLAT"
	SizingIncreaseOnWin  = "INCREASE_ON_WIN"
	SizingIncreaseOnLoss = "INCREASE_ON_LOSS"
	SizingResetOnWin     = "RESET_ON_WIN"
	SizingResetOnLoss    = "RESET_ON_LOSS"
)

// Flat 沒有任何調整
func (s Sizing) Flat() bool {
	return !(s.IncreaseOnWin || s.IncreaseOnLoss || s.ResetOnWin || s.ResetOnLoss)
}

// Increase 回傳該結果是否需要加注
func (s Sizing) Increase(won bool) bool {
	if won {
		return s.IncreaseOnWin
	}
	return s.IncreaseOnLoss
}

// Reset 回傳該結果是否需要回到基本注
func (s Sizing) Reset(won bool) bool {
	if won {
		return s.ResetOnWin
	}
	return s.ResetOnLoss
}

func (s Sizing) String() string {
	if s.Flat() {
		return SizingFlat
	}
	out := make([]string, 0, 4)
	if s.IncreaseOnWin {
		out = append(out, SizingIncreaseOnWin)
	}
	if s.IncreaseOnLoss {
		out = append(out, SizingIncreaseOnLoss)
	}
	if s.ResetOnWin {
		out = append(out, SizingResetOnWin)
	}
	if s.ResetOnLoss {
		out = append(out, SizingResetOnLoss)
	}
	return strings.Join(out, "|")
}

// ParseSizing 解析 "INCREASE_ON_LOSS|RESET_ON_WIN" 形式（亦接受逗號分隔，大小寫不拘）。
func ParseSizing(str string) (Sizing, error) {
	s := Sizing{}
	fields := strings.FieldsFunc(str, func(r rune) bool { return r == '|' || r == ',' || r == ' ' })
	for _, f := range fields {
		switch strings.ToUpper(f) {
		case SizingFlat:
		case SizingIncreaseOnWin:
			s.IncreaseOnWin = true
		case SizingIncreaseOnLoss:
			s.IncreaseOnLoss = true
		case SizingResetOnWin:
			s.ResetOnWin = true
		case SizingResetOnLoss:
			s.ResetOnLoss = true
		default:
			return Sizing{}, errs.Invalidf("unknown sizing %q", f)
		}
	}
	return s, nil
}
