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
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/autobet/errs"
	"github.com/zintix-labs/autobet/sdk/core"
	"github.com/zintix-labs/autobet/setting"
	"github.com/zintix-labs/autobet/wallet"
)

func TestDefaultRegistry(t *testing.T) {
	reg := Default()
	want := []string{"coinflip", "crash", "dice", "hilo", "limbo", "wheel"}
	got := reg.Names()
	if len(got) != len(want) {
		t.Fatalf("names %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("names %v", got)
		}
	}
	if e, _ := reg.Get("WHEEL"); e.LossMetric != setting.LossLastRound {
		t.Fatalf("wheel must use last round metric")
	}
	if e, _ := reg.Get("dice"); e.LossMetric != setting.LossCumulative {
		t.Fatalf("dice must use cumulative metric")
	}
	if _, err := reg.Get("poker"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := reg.Register(diceEntry); err == nil {
		t.Fatalf("duplicate register must fail")
	}
}

// 每款遊戲的長期回報率應接近 1 - house edge
func TestGamesReturnToPlayer(t *testing.T) {
	reg := Default()
	cases := map[string]Params{
		"dice":     {"multiplier": 2.0},
		"limbo":    {"target": "3"},
		"crash":    {"cashout": 1.5},
		"coinflip": {"side": "tails"},
		"wheel":    {"risk": "medium"},
		"hilo":     {},
	}
	const n = 200000
	for name, p := range cases {
		e, err := reg.Get(name)
		if err != nil {
			t.Fatal(err)
		}
		logic, err := e.Build(p)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		c := core.New(core.Default().New(2025))
		total := 0.0
		for i := 0; i < n; i++ {
			r := logic.Play(c)
			if r.Won != r.Multiplier.IsPositive() {
				t.Fatalf("%s: won=%v multiplier=%s", name, r.Won, r.Multiplier)
			}
			f, _ := r.Multiplier.Float64()
			total += f
		}
		if rtp := total / n; rtp < 0.93 || rtp > 1.01 {
			t.Fatalf("%s: rtp %.4f out of range", name, rtp)
		}
	}
}

func TestBuildRejectsBadParams(t *testing.T) {
	reg := Default()
	bad := map[string]Params{
		"dice":     {"multiplier": 1},
		"limbo":    {"target": "x"},
		"crash":    {"house_edge": 0.6},
		"coinflip": {"side": "edge"},
		"wheel":    {"risk": "extreme"},
		"hilo":     {"guess": 3},
	}
	for name, p := range bad {
		e, _ := reg.Get(name)
		if _, err := e.Build(p); !errors.Is(err, errs.ErrInvalidConfig) {
			t.Fatalf("%s: expected invalid config, got %v", name, err)
		}
	}

	// 非有限值不可讓 Build panic
	nonFinite := []struct {
		game string
		p    Params
	}{
		{"dice", Params{"multiplier": "NaN"}},
		{"limbo", Params{"target": "+Inf"}},
		{"crash", Params{"cashout": "nan"}},
		{"coinflip", Params{"payout": "NaN"}},
		{"dice", Params{"multiplier": math.Inf(1)}},
		{"hilo", Params{"house_edge": math.NaN()}},
	}
	for _, c := range nonFinite {
		e, _ := reg.Get(c.game)
		if _, err := e.Build(c.p); !errors.Is(err, errs.ErrInvalidConfig) {
			t.Fatalf("%s %v: expected invalid config, got %v", c.game, c.p, err)
		}
	}
}

func TestParseParams(t *testing.T) {
	p, err := ParseParams("multiplier=3, house_edge=0.02")
	if err != nil {
		t.Fatal(err)
	}
	if m, _ := p.Float("multiplier", 0); m != 3 {
		t.Fatalf("multiplier %v", m)
	}
	if _, err := ParseParams("oops"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestAdapterSettlesThroughWallet(t *testing.T) {
	w := wallet.NewMemory()
	w.Deposit("u", decimal.NewFromInt(10))
	a, err := NewAdapter(Default(), "coinflip", nil, w, "u", core.Default().New(1))
	if err != nil {
		t.Fatal(err)
	}
	bet := decimal.NewFromInt(2)
	if !a.HasSufficientBalance(bet) {
		t.Fatalf("balance must be sufficient")
	}
	out, err := a.ExecuteRound(context.Background(), bet)
	if err != nil {
		t.Fatal(err)
	}
	want := decimal.NewFromInt(8)
	if out.Won {
		want = want.Add(decimal.RequireFromString("3.96"))
	}
	if got := w.Balance("u"); !got.Equal(want) {
		t.Fatalf("balance %s want %s (won=%v)", got, want, out.Won)
	}
	if _, ok := out.Detail.(CoinflipDetail); !ok {
		t.Fatalf("detail type %T", out.Detail)
	}
}

func TestAdapterInsufficientBalance(t *testing.T) {
	w := wallet.NewMemory()
	w.Deposit("u", decimal.NewFromInt(1))
	a, err := NewAdapter(Default(), "dice", Params{"multiplier": 2}, w, "u", core.Default().New(1))
	if err != nil {
		t.Fatal(err)
	}
	if a.HasSufficientBalance(decimal.NewFromInt(5)) {
		t.Fatalf("veto expected")
	}
	_, err = a.ExecuteRound(context.Background(), decimal.NewFromInt(5))
	if !errors.Is(err, errs.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
}

func TestAdapterDelayCutShortByCancel(t *testing.T) {
	w := wallet.NewMemory()
	w.Deposit("u", decimal.NewFromInt(100))
	a, _ := NewAdapter(Default(), "dice", nil, w, "u", core.Default().New(1), WithDelay(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := a.ExecuteRound(ctx, decimal.NewFromInt(1))
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("settled round must not fail: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("cancel did not cut delay short")
	}

	if _, err := a.ExecuteRound(ctx, decimal.NewFromInt(1)); !errors.Is(err, errs.ErrExecutorFailure) {
		t.Fatalf("cancelled ctx before bet: %v", err)
	}
}
