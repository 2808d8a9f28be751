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

package stats_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/autobet/sdk/buf"
	"github.com/zintix-labs/autobet/stats"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func lose(bet string) buf.RoundOutcome {
	return buf.RoundOutcome{Won: false, BetAmount: d(bet), Payout: decimal.Zero}
}

func win(bet, payout string) buf.RoundOutcome {
	return buf.RoundOutcome{Won: true, BetAmount: d(bet), Payout: d(payout)}
}

func TestUpdateThreeLosses(t *testing.T) {
	var st stats.SessionStats
	for i := 0; i < 3; i++ {
		st = stats.Update(st, lose("10"))
	}
	if st.RoundsCompleted != 3 || st.Wins != 0 || st.Losses != 3 {
		t.Fatalf("counts: %+v", st)
	}
	if !st.TotalWagered.Equal(d("30")) || !st.TotalProfit.Equal(d("-30")) {
		t.Fatalf("money: wagered=%s profit=%s", st.TotalWagered, st.TotalProfit)
	}
	if st.CurrentStreak != -3 || st.BestStreak != 3 {
		t.Fatalf("streak: cur=%d best=%d", st.CurrentStreak, st.BestStreak)
	}
	if !st.BiggestLoss.Equal(d("10")) {
		t.Fatalf("biggest loss %s", st.BiggestLoss)
	}
	if !st.NetLoss().Equal(d("30")) {
		t.Fatalf("net loss %s", st.NetLoss())
	}
}

func TestUpdateStreakFlipsAndIsPure(t *testing.T) {
	var st stats.SessionStats
	st = stats.Update(st, win("10", "25"))
	st = stats.Update(st, win("10", "20"))
	before := st
	next := stats.Update(st, lose("5"))

	if st != before {
		t.Fatalf("input mutated")
	}
	if next.CurrentStreak != -1 || next.BestStreak != 2 {
		t.Fatalf("streak after flip: cur=%d best=%d", next.CurrentStreak, next.BestStreak)
	}
	next = stats.Update(next, win("5", "10"))
	if next.CurrentStreak != 1 {
		t.Fatalf("streak after second flip: %d", next.CurrentStreak)
	}
	if next.RoundsCompleted != next.Wins+next.Losses {
		t.Fatalf("rounds != wins+losses")
	}
	// 15 + 10 - 5 + 5
	if !next.TotalProfit.Equal(d("25")) {
		t.Fatalf("profit %s", next.TotalProfit)
	}
	if !next.BiggestWin.Equal(d("15")) {
		t.Fatalf("biggest win %s", next.BiggestWin)
	}
	if got := next.WinRate(); got != 0.75 {
		t.Fatalf("win rate %v", got)
	}
}

func batch() []stats.SessionStats {
	out := make([]stats.SessionStats, 0, 40)
	for i := 0; i < 40; i++ {
		st := stats.SessionStats{RoundsCompleted: 10, Wins: 4, Losses: 6}
		if i%4 == 0 {
			st.TotalProfit = d("20")
			st.StopReason = stats.ReasonWinTarget
		} else {
			st.TotalProfit = d("-10")
			st.StopReason = stats.ReasonTargetReached
		}
		out = append(out, st)
	}
	return out
}

func TestEstimateSessions(t *testing.T) {
	e := stats.EstimateSessions(batch())
	if e.Sessions != 40 {
		t.Fatalf("sessions %d", e.Sessions)
	}
	// 10*20 + 30*(-10) = -100 → mean -2.5
	if e.Profit.Mean != -2.5 {
		t.Fatalf("mean %v", e.Profit.Mean)
	}
	if e.Profit.Min != -10 || e.Profit.Max != 20 {
		t.Fatalf("range [%v,%v]", e.Profit.Min, e.Profit.Max)
	}
	w := e.StopReason[stats.ReasonWinTarget]
	if w.Hat != 0.25 || w.CI.Lo >= 0.25 || w.CI.Hi <= 0.25 {
		t.Fatalf("win target rate %+v", w)
	}
	if c := e.StopReason[stats.ReasonCancelled]; c.Hat != 0 || c.CI.Lo != 0 {
		t.Fatalf("cancelled rate %+v", c)
	}
	if e.Winners.Hat != 0.25 {
		t.Fatalf("winners %v", e.Winners.Hat)
	}
	if e.Rounds.Mean != 10 || e.Rounds.WinRate != 0.4 {
		t.Fatalf("rounds %+v", e.Rounds)
	}
}

func TestEstimateEmpty(t *testing.T) {
	e := stats.EstimateSessions(nil)
	if e.Sessions != 0 || e.Profit.Mean != 0 {
		t.Fatalf("empty estimate %+v", e)
	}
}

func TestBatchReportRenders(t *testing.T) {
	r := stats.NewBatchReport("dice", "martingale", batch())

	var tbl bytes.Buffer
	if err := r.WriteWith(&tbl, &stats.TableBatchReportRender{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(tbl.String(), "dice / martingale") || !strings.Contains(tbl.String(), "Stop win_target") {
		t.Fatalf("table missing rows:\n%s", tbl.String())
	}

	var js bytes.Buffer
	if err := r.WriteWith(&js, &stats.JsonBatchReportRender{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(js.String(), `"preset":"martingale"`) {
		t.Fatalf("json: %s", js.String())
	}

	var ym bytes.Buffer
	if err := r.WriteWith(&ym, &stats.YAMLBatchReportRender{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(ym.String(), "game: dice") {
		t.Fatalf("yaml: %s", ym.String())
	}
}

func TestSessionTable(t *testing.T) {
	st := stats.Update(stats.SessionStats{}, lose("10"))
	st.StopReason = stats.ReasonExecutorFailure
	st.Err = "boom"
	out := stats.SessionTable("dice", st)
	for _, want := range []string{"Total Profit", "-10", "executor_failure", "boom"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in\n%s", want, out)
		}
	}
}
