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

package setting_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/autobet/errs"
	"github.com/zintix-labs/autobet/presets"
	"github.com/zintix-labs/autobet/setting"
)

func validConfig() setting.SessionConfig {
	return setting.SessionConfig{
		TargetRoundCount: 10,
		BaseBetAmount:    decimal.NewFromInt(10),
		MinBet:           decimal.NewFromInt(1),
		MaxBet:           decimal.NewFromInt(100),
		Precision:        2,
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *setting.SessionConfig){
		"rounds":    func(c *setting.SessionConfig) { c.TargetRoundCount = 0 },
		"bounds":    func(c *setting.SessionConfig) { c.MinBet = decimal.NewFromInt(200) },
		"base low":  func(c *setting.SessionConfig) { c.BaseBetAmount = decimal.NewFromFloat(0.5) },
		"base high": func(c *setting.SessionConfig) { c.BaseBetAmount = decimal.NewFromInt(101) },
		"percent":   func(c *setting.SessionConfig) { c.IncreasePercent = decimal.NewFromInt(-1) },
		"precision": func(c *setting.SessionConfig) { c.Precision = -1 },
		"pause":     func(c *setting.SessionConfig) { c.SettlePauseMs = -5 },
	}
	for name, mut := range cases {
		c := validConfig()
		mut(&c)
		err := c.Validate()
		if !errors.Is(err, errs.ErrInvalidConfig) {
			t.Fatalf("%s: expected invalid config, got %v", name, err)
		}
	}
	c := validConfig()
	if err := c.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestParseSizing(t *testing.T) {
	s, err := setting.ParseSizing("increase_on_loss|RESET_ON_WIN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.IncreaseOnLoss || !s.ResetOnWin || s.IncreaseOnWin || s.ResetOnLoss {
		t.Fatalf("unexpected sizing %+v", s)
	}
	if s.String() != "INCREASE_ON_LOSS|RESET_ON_WIN" {
		t.Fatalf("unexpected string %q", s.String())
	}
	flat, _ := setting.ParseSizing("FLAT")
	if !flat.Flat() || flat.String() != setting.SizingFlat {
		t.Fatalf("expected flat")
	}
	if _, err := setting.ParseSizing("DOUBLE"); err == nil {
		t.Fatalf("expected error for unknown sizing")
	}
}

func TestLoadEmbeddedPresets(t *testing.T) {
	pr, err := setting.LoadPresets(presets.FS)
	if err != nil {
		t.Fatalf("load presets: %v", err)
	}
	m, err := pr.Get("martingale")
	if err != nil {
		t.Fatalf("martingale missing: %v", err)
	}
	if !m.Sizing.IncreaseOnLoss || !m.Sizing.ResetOnWin {
		t.Fatalf("unexpected martingale sizing %+v", m.Sizing)
	}
	if !m.BaseBetAmount.Equal(decimal.NewFromInt(1)) || m.Precision != 2 {
		t.Fatalf("unexpected martingale config %+v", m)
	}
	if m.SettlePause().Milliseconds() != 300 {
		t.Fatalf("unexpected pause %v", m.SettlePause())
	}
	if _, err := pr.Get("nope"); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLoadPresetsNameFromFileAndDuplicates(t *testing.T) {
	body := []byte("target_round_count: 3\nbase_bet: 1\nmin_bet: 1\nmax_bet: 2\n")
	pr, err := setting.LoadPresets(fstest.MapFS{"quick.yaml": {Data: body}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if names := pr.Names(); len(names) != 1 || names[0] != "quick" {
		t.Fatalf("unexpected names %v", names)
	}

	dup := []byte("name: a\ntarget_round_count: 3\nbase_bet: 1\nmin_bet: 1\nmax_bet: 2\n")
	_, err = setting.LoadPresets(fstest.MapFS{"a.yaml": {Data: dup}, "b.yaml": {Data: dup}})
	if !errors.Is(err, errs.ErrInvalidConfig) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestLossMetricText(t *testing.T) {
	var m setting.LossMetric
	if err := m.UnmarshalText([]byte("last_round")); err != nil || m != setting.LossLastRound {
		t.Fatalf("unexpected %v %v", m, err)
	}
	if err := m.UnmarshalText([]byte("peak")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDecodeDefaultsPrecision(t *testing.T) {
	j, err := setting.GetSessionConfigByJSON([]byte(`{"target_round_count":3,"base_bet":"0.25","min_bet":"0.01","max_bet":"5"}`))
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	y, err := setting.GetSessionConfigByYAML([]byte("target_round_count: 3\nbase_bet: \"0.25\"\nmin_bet: \"0.01\"\nmax_bet: \"5\"\n"))
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if j.Precision != setting.DefaultPrecision || y.Precision != setting.DefaultPrecision {
		t.Fatalf("precision json=%d yaml=%d", j.Precision, y.Precision)
	}

	// 明確填 0 代表整數單位
	z, err := setting.GetSessionConfigByJSON([]byte(`{"target_round_count":3,"base_bet":"2","min_bet":"1","max_bet":"5","precision":0}`))
	if err != nil || z.Precision != 0 {
		t.Fatalf("explicit zero: %+v %v", z, err)
	}

	if _, err := setting.GetSessionConfigByJSON([]byte(`{"target_round_count":3,"base_bet":"1","min_bet":"1","max_bet":"5","precison":4}`)); !errors.Is(err, errs.ErrInvalidConfig) {
		t.Fatalf("unknown field should be invalid, got %v", err)
	}
}

func TestValidateRejectsOffGridBase(t *testing.T) {
	c := validConfig()
	c.MinBet = decimal.RequireFromString("0.1")
	c.BaseBetAmount = decimal.RequireFromString("0.125")
	if err := c.Validate(); !errors.Is(err, errs.ErrInvalidConfig) {
		t.Fatalf("off-grid base bet should be invalid, got %v", err)
	}
	c.Precision = 3
	if err := c.Validate(); err != nil {
		t.Fatalf("base bet on grid rejected: %v", err)
	}
	c.Precision = 0
	c.BaseBetAmount = decimal.RequireFromString("0.5")
	if err := c.Validate(); !errors.Is(err, errs.ErrInvalidConfig) {
		t.Fatalf("fractional base with precision 0 should be invalid, got %v", err)
	}
}
