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

package games

import (
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/autobet/errs"
	"github.com/zintix-labs/autobet/sdk/core"
	"github.com/zintix-labs/autobet/setting"
)

// 停損指標：dice / limbo / crash / coinflip 以會話累積淨損計算。

// ============================================================
// ** dice : roll-under **
// ============================================================

var diceEntry = Entry{
	Name:       "dice",
	LossMetric: setting.LossCumulative,
	Params: map[string]string{
		"multiplier": "payout multiplier, > 1 (default 2)",
		"house_edge": "[0, 0.5) (default 0.01)",
	},
	Build: buildDice,
}

type dice struct {
	m      decimal.Decimal
	chance float64 // 以 [0,100) 點數表示的勝率門檻
}

type DiceDetail struct {
	Roll   float64 `json:"roll"`
	Target float64 `json:"target"`
}

func buildDice(p Params) (Logic, error) {
	m, err := p.Float("multiplier", 2)
	if err != nil {
		return nil, err
	}
	if m <= 1 || m > 9900 {
		return nil, errs.Invalidf("dice multiplier must be in (1, 9900], got %v", m)
	}
	edge, err := houseEdge(p)
	if err != nil {
		return nil, err
	}
	return &dice{m: mult(m), chance: 100 * (1 - edge) / m}, nil
}

func (g *dice) Play(c *core.Core) Result {
	roll := c.Roll()
	d := DiceDetail{Roll: roll, Target: g.chance}
	if roll < g.chance {
		return Result{Won: true, Multiplier: g.m, Detail: d}
	}
	return Result{Detail: d}
}

// ============================================================
// ** limbo : 爆點 >= 目標倍數即贏 **
// ============================================================

var limboEntry = Entry{
	Name:       "limbo",
	LossMetric: setting.LossCumulative,
	Params: map[string]string{
		"target":     "target multiplier, >= 1.01 (default 2)",
		"house_edge": "[0, 0.5) (default 0.01)",
	},
	Build: buildLimbo,
}

type limbo struct {
	target decimal.Decimal
	tf     float64
	edge   float64
}

type LimboDetail struct {
	Point  float64 `json:"point"`
	Target float64 `json:"target"`
}

func buildLimbo(p Params) (Logic, error) {
	t, err := p.Float("target", 2)
	if err != nil {
		return nil, err
	}
	if t < 1.01 || t > 1e6 {
		return nil, errs.Invalidf("limbo target must be in [1.01, 1e6], got %v", t)
	}
	edge, err := houseEdge(p)
	if err != nil {
		return nil, err
	}
	return &limbo{target: mult(t), tf: t, edge: edge}, nil
}

func (g *limbo) Play(c *core.Core) Result {
	point := c.CrashPoint(g.edge)
	d := LimboDetail{Point: point, Target: g.tf}
	if point >= g.tf {
		return Result{Won: true, Multiplier: g.target, Detail: d}
	}
	return Result{Detail: d}
}

// ============================================================
// ** crash : 自動兌現 **
// ============================================================

var crashEntry = Entry{
	Name:       "crash",
	LossMetric: setting.LossCumulative,
	Params: map[string]string{
		"cashout":    "auto cash-out multiplier, >= 1.01 (default 1.5)",
		"house_edge": "[0, 0.5) (default 0.01)",
	},
	Build: buildCrash,
}

type crash struct {
	cashout decimal.Decimal
	cf      float64
	edge    float64
}

type CrashDetail struct {
	CrashPoint float64 `json:"crash_point"`
	Cashout    float64 `json:"cashout"`
}

func buildCrash(p Params) (Logic, error) {
	co, err := p.Float("cashout", 1.5)
	if err != nil {
		return nil, err
	}
	if co < 1.01 || co > 1e6 {
		return nil, errs.Invalidf("crash cashout must be in [1.01, 1e6], got %v", co)
	}
	edge, err := houseEdge(p)
	if err != nil {
		return nil, err
	}
	return &crash{cashout: mult(co), cf: co, edge: edge}, nil
}

func (g *crash) Play(c *core.Core) Result {
	point := c.CrashPoint(g.edge)
	d := CrashDetail{CrashPoint: point, Cashout: g.cf}
	// 爆點剛好等於兌現點時來不及兌現
	if point > g.cf {
		return Result{Won: true, Multiplier: g.cashout, Detail: d}
	}
	return Result{Detail: d}
}

// ============================================================
// ** coinflip **
// ============================================================

var coinflipEntry = Entry{
	Name:       "coinflip",
	LossMetric: setting.LossCumulative,
	Params: map[string]string{
		"side":   "heads | tails (default heads)",
		"payout": "payout multiplier (default 1.98)",
	},
	Build: buildCoinflip,
}

type coinflip struct {
	side   string
	payout decimal.Decimal
}

type CoinflipDetail struct {
	Side   string `json:"side"`
	Result string `json:"result"`
}

func buildCoinflip(p Params) (Logic, error) {
	side, err := p.String("side", "heads")
	if err != nil {
		return nil, err
	}
	if side != "heads" && side != "tails" {
		return nil, errs.Invalidf("coinflip side must be heads or tails, got %q", side)
	}
	po, err := p.Float("payout", 1.98)
	if err != nil {
		return nil, err
	}
	if po <= 1 || po > 2 {
		return nil, errs.Invalidf("coinflip payout must be in (1, 2], got %v", po)
	}
	return &coinflip{side: side, payout: mult(po)}, nil
}

func (g *coinflip) Play(c *core.Core) Result {
	res := "heads"
	if c.IntN(2) == 1 {
		res = "tails"
	}
	d := CoinflipDetail{Side: g.side, Result: res}
	if res == g.side {
		return Result{Won: true, Multiplier: g.payout, Detail: d}
	}
	return Result{Detail: d}
}
