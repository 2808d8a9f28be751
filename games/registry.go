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

// Package games 各小遊戲的機率機制與自動下注轉接層。
//
// 每款遊戲只提供「一局怎麼開」：給定參數與亂數核心，回傳輸贏、倍數與細節。
// 下注、派彩、餘額檢查由 Adapter 統一處理。
package games

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/autobet/errs"
	"github.com/zintix-labs/autobet/sdk/core"
	"github.com/zintix-labs/autobet/setting"
)

// Result 單局開獎結果
type Result struct {
	Won        bool
	Multiplier decimal.Decimal // 派彩倍數（含本金），輸局為 0
	Detail     any
}

// Logic 已綁定參數的遊戲邏輯
type Logic interface {
	Play(c *core.Core) Result
}

// Builder 依參數建立 Logic，參數錯誤回傳 KindInvalidConfig
type Builder func(p Params) (Logic, error)

// Entry 一款遊戲的註冊資訊
type Entry struct {
	Name       string             `json:"name"`
	LossMetric setting.LossMetric `json:"loss_metric"`
	Params     map[string]string  `json:"params"` // 參數名 → 說明
	Build      Builder            `json:"-"`
}

// Registry 遊戲註冊表
type Registry struct {
	entries map[string]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry, 8)}
}

func (r *Registry) Register(e Entry) error {
	name := strings.ToLower(strings.TrimSpace(e.Name))
	if name == "" || e.Build == nil {
		return errs.NewFatal("game name and builder required")
	}
	if _, ok := r.entries[name]; ok {
		return errs.NewFatal(fmt.Sprintf("duplicate game: %s", name))
	}
	e.Name = name
	r.entries[name] = e
	return nil
}

func (r *Registry) Get(name string) (Entry, error) {
	e, ok := r.entries[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Entry{}, errs.NotFoundf("game not found: %s", name)
	}
	return e, nil
}

func (r *Registry) IsExist(name string) bool {
	_, err := r.Get(name)
	return err == nil
}

// Names 排序後的遊戲名稱
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.entries))
	for n := range r.entries {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// All 依名稱排序的全部遊戲
func (r *Registry) All() []Entry {
	names := r.Names()
	out := make([]Entry, 0, len(names))
	for _, n := range names {
		out = append(out, r.entries[n])
	}
	return out
}

// Default 回傳已註冊全部內建遊戲的 Registry
func Default() *Registry {
	r := NewRegistry()
	for _, e := range []Entry{diceEntry, limboEntry, crashEntry, coinflipEntry, wheelEntry, hiloEntry} {
		if err := r.Register(e); err != nil {
			panic(err)
		}
	}
	return r
}

// ============================================================
// ** Params **
// ============================================================

// Params 遊戲參數（來自 JSON/CLI），值可為數字或字串
type Params map[string]any

// Float 讀取數值參數，缺少時回傳 def
func (p Params) Float(key string, def float64) (float64, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(x), 64); err != nil {
			return 0, errs.Invalidf("param %s: not a number: %q", key, x)
		}
	default:
		return 0, errs.Invalidf("param %s: unsupported type %T", key, v)
	}
	// NaN 會通過所有區間比較
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errs.Invalidf("param %s: must be finite, got %v", key, v)
	}
	return f, nil
}

// String 讀取字串參數（轉小寫），缺少時回傳 def
func (p Params) String(key string, def string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", errs.Invalidf("param %s: must be string", key)
	}
	return strings.ToLower(strings.TrimSpace(s)), nil
}

// ParseParams 解析 "k=v,k2=v2" 形式（CLI 使用）
func ParseParams(str string) (Params, error) {
	p := Params{}
	for _, kv := range strings.Split(str, ",") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, errs.Invalidf("bad param %q, want key=value", kv)
		}
		p[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return p, nil
}

// houseEdge 讀取 house_edge 參數，需在 [0, 0.5)
func houseEdge(p Params) (float64, error) {
	e, err := p.Float("house_edge", defaultEdge)
	if err != nil {
		return 0, err
	}
	if e < 0 || e >= 0.5 {
		return 0, errs.Invalidf("house_edge must be in [0, 0.5), got %v", e)
	}
	return e, nil
}

const defaultEdge = 0.01

// mult 把倍數轉為兩位小數 decimal（無條件捨去）
func mult(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).RoundDown(2)
}
