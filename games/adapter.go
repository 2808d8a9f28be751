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
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/autobet/errs"
	"github.com/zintix-labs/autobet/sdk/buf"
	"github.com/zintix-labs/autobet/sdk/core"
	"github.com/zintix-labs/autobet/setting"
	"github.com/zintix-labs/autobet/wallet"
)

// Adapter 把一款遊戲、一位玩家的錢包與亂數核心接成自動下注可用的 Round Executor。
//
// ExecuteRound 順序：扣注 → 開獎 → （可選）結算延遲 → 派彩。
// 扣注成功後即使 ctx 取消，本局仍會派彩並回傳結果；取消只縮短延遲。
type Adapter struct {
	mu        sync.Mutex // 保護 rng
	uid       string
	entry     Entry
	params    Params
	logic     Logic
	rng       *core.Core
	wallet    wallet.Wallet
	delay     time.Duration
	precision int32
}

type AdapterOption func(*Adapter)

// WithDelay 每局開獎後的結算延遲（模擬動畫）
func WithDelay(d time.Duration) AdapterOption {
	return func(a *Adapter) { a.delay = max(d, 0) }
}

// WithPrecision 派彩的小數位數（預設 8）
func WithPrecision(p int32) AdapterOption {
	return func(a *Adapter) { a.precision = p }
}

// NewAdapter 依遊戲名稱與參數建立轉接層
func NewAdapter(reg *Registry, game string, p Params, w wallet.Wallet, uid string, prng core.PRNG, opts ...AdapterOption) (*Adapter, error) {
	if w == nil {
		return nil, errs.NewFatal("wallet required")
	}
	if prng == nil {
		return nil, errs.NewFatal("prng required")
	}
	e, err := reg.Get(game)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = Params{}
	}
	logic, err := e.Build(p)
	if err != nil {
		return nil, errs.Wrap(err, "game "+e.Name)
	}
	a := &Adapter{
		uid:       uid,
		entry:     e,
		params:    p,
		logic:     logic,
		rng:       core.New(prng),
		wallet:    w,
		precision: 8,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Adapter) Game() string { return a.entry.Name }

func (a *Adapter) UID() string { return a.uid }

func (a *Adapter) Params() Params { return a.params }

func (a *Adapter) LossMetric() setting.LossMetric { return a.entry.LossMetric }

func (a *Adapter) HasSufficientBalance(bet decimal.Decimal) bool {
	return a.wallet.Balance(a.uid).GreaterThanOrEqual(bet)
}

func (a *Adapter) ExecuteRound(ctx context.Context, bet decimal.Decimal) (buf.RoundOutcome, error) {
	if err := ctx.Err(); err != nil {
		return buf.RoundOutcome{}, errs.WrapKind(err, errs.KindExecutorFailure, "round cancelled before bet")
	}
	if err := a.wallet.Debit(a.uid, bet); err != nil {
		return buf.RoundOutcome{}, err
	}

	a.mu.Lock()
	res := a.logic.Play(a.rng)
	a.mu.Unlock()

	out := buf.RoundOutcome{
		Won:       res.Won,
		BetAmount: bet,
		Payout:    decimal.Zero,
		Detail:    res.Detail,
	}
	if res.Won {
		out.Payout = bet.Mul(res.Multiplier).Round(a.precision)
	}

	if a.delay > 0 {
		t := time.NewTimer(a.delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
		}
	}

	if out.Payout.IsPositive() {
		if err := a.wallet.Credit(a.uid, out.Payout); err != nil {
			return out, errs.WrapKind(err, errs.KindExecutorFailure, "credit payout")
		}
	}
	return out, nil
}
