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

package recorder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/autobet"
	"github.com/zintix-labs/autobet/errs"
	"github.com/zintix-labs/autobet/games"
	"github.com/zintix-labs/autobet/sdk/buf"
	"github.com/zintix-labs/autobet/setting"
	"github.com/zintix-labs/autobet/stats"
	"github.com/zintix-labs/autobet/wallet"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return client, mr
}

func outcome(round int, won bool, bet, payout string) buf.RoundOutcome {
	return buf.RoundOutcome{
		Round:     round,
		Won:       won,
		BetAmount: decimal.RequireFromString(bet),
		Payout:    decimal.RequireFromString(payout),
	}
}

func TestChartBufferDecimate(t *testing.T) {
	cb := NewChartBuffer(10)
	for i := 1; i <= 100; i++ {
		cb.Push(ChartPoint{Round: i, Profit: float64(i)})
	}
	pts := cb.Snapshot()
	if len(pts) >= 20 {
		t.Fatalf("chart not decimated: %d points", len(pts))
	}
	if pts[0].Round != 1 {
		t.Fatalf("first point lost: %+v", pts[0])
	}
	if pts[len(pts)-1].Round != 100 {
		t.Fatalf("last point lost: %+v", pts[len(pts)-1])
	}
	for i := 1; i < len(pts); i++ {
		if pts[i].Round <= pts[i-1].Round {
			t.Fatalf("points out of order at %d", i)
		}
	}
	cb.Reset()
	if len(cb.Snapshot()) != 0 {
		t.Fatalf("reset should clear points")
	}
}

func TestRoundRecordDetail(t *testing.T) {
	o := outcome(3, true, "2", "4")
	o.Detail = map[string]any{"roll": 12.5}
	r := NewRoundRecord(o, time.Unix(0, 0))
	if !r.Profit.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("profit = %s", r.Profit)
	}
	if string(r.Detail) != `{"roll":12.5}` {
		t.Fatalf("detail = %s", r.Detail)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore(3)
	for i := 1; i <= 5; i++ {
		if err := st.AppendRound(ctx, "s1", NewRoundRecord(outcome(i, false, "1", "0"), time.Now())); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	got, _ := st.Rounds(ctx, "s1", 0)
	if len(got) != 3 || got[0].Round != 3 || got[2].Round != 5 {
		t.Fatalf("unexpected rounds: %+v", got)
	}
	got, _ = st.Rounds(ctx, "s1", 1)
	if len(got) != 1 || got[0].Round != 5 {
		t.Fatalf("limit not applied: %+v", got)
	}

	if _, err := st.Summary(ctx, "s1"); errs.KindOf(err) != errs.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := st.SaveSummary(ctx, Summary{Session: "s1", Game: "dice"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if s, err := st.Summary(ctx, "s1"); err != nil || s.Game != "dice" {
		t.Fatalf("summary = %+v, %v", s, err)
	}
	_ = st.Delete(ctx, "s1")
	if got, _ := st.Rounds(ctx, "s1", 0); len(got) != 0 {
		t.Fatalf("delete should drop rounds")
	}
}

func TestRedisStoreRounds(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	ctx := context.Background()

	st := NewRedisStore(client, time.Hour, 3)
	for i := 1; i <= 5; i++ {
		if err := st.AppendRound(ctx, "s1", NewRoundRecord(outcome(i, i%2 == 0, "1", "0"), time.Now())); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	got, err := st.Rounds(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("rounds: %v", err)
	}
	if len(got) != 3 || got[0].Round != 3 || got[2].Round != 5 {
		t.Fatalf("unexpected rounds: %+v", got)
	}
	if !got[1].Won {
		t.Fatalf("round 4 should be a win")
	}
	if ttl := mr.TTL("autobet:rounds:s1"); ttl != time.Hour {
		t.Fatalf("ttl = %v", ttl)
	}
	got, _ = st.Rounds(ctx, "s1", 2)
	if len(got) != 2 || got[0].Round != 4 {
		t.Fatalf("limit not applied: %+v", got)
	}
}

func TestRedisStoreSummary(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	ctx := context.Background()
	st := NewRedisStore(client, time.Minute, 0)

	if _, err := st.Summary(ctx, "nope"); errs.KindOf(err) != errs.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	sum := Summary{Session: "s2", Game: "limbo", UID: "u", State: "RUNNING"}
	sum.Stats.RoundsCompleted = 7
	if err := st.SaveSummary(ctx, sum); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := st.Summary(ctx, "s2")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if got.Game != "limbo" || got.Stats.RoundsCompleted != 7 {
		t.Fatalf("unexpected summary: %+v", got)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := st.Summary(ctx, "s2"); errs.KindOf(err) != errs.KindNotFound {
		t.Fatalf("summary should expire, got %v", err)
	}

	_ = st.SaveSummary(ctx, sum)
	if err := st.Delete(ctx, "s2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("autobet:session:s2") {
		t.Fatalf("summary key should be deleted")
	}
}

func TestRedisStoreClosed(t *testing.T) {
	client, mr := setupTestRedis(t)
	mr.Close()
	st := NewRedisStore(client, time.Minute, 0)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := st.AppendRound(ctx, "s", NewRoundRecord(outcome(1, true, "1", "2"), time.Now()))
	if err == nil {
		t.Fatalf("expected error on closed redis")
	}
	if errs.KindOf(err) == errs.KindNotFound {
		t.Fatalf("connection error should not map to not found")
	}
}

func TestConnect(t *testing.T) {
	_, mr := setupTestRedis(t)
	defer mr.Close()
	client, err := Connect(context.Background(), mr.Addr(), "", 0, 1, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Connect(ctx, "127.0.0.1:1", "", 0, 1, nil); err == nil {
		t.Fatalf("expected connect failure")
	}
}

type failingStore struct{ *MemoryStore }

func (f *failingStore) SaveSummary(context.Context, Summary) error { return errors.New("boom") }

func TestRoundRecorderFailureIgnored(t *testing.T) {
	fs := &failingStore{MemoryStore: NewMemoryStore(0)}
	rec := NewRoundRecorder(fs, "s", "dice", "u", nil)
	rec.OnStatsChanged(stats.SessionStats{RoundsCompleted: 1})
	rec.OnStateChanged(autobet.StateStopped)
	if len(rec.Chart()) != 1 {
		t.Fatalf("chart should still advance")
	}
}

func TestRoundRecorderWithSession(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	store := NewRedisStore(client, time.Hour, 0)

	lab, err := autobet.NewDefaultLab()
	if err != nil {
		t.Fatalf("lab: %v", err)
	}
	w := wallet.NewMemory()
	if _, err := w.Deposit("u1", decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	ad, err := lab.NewAdapter("dice", games.Params{"multiplier": "2"}, w, "u1", 7)
	if err != nil {
		t.Fatalf("adapter: %v", err)
	}
	cfg := setting.SessionConfig{
		TargetRoundCount: 20,
		BaseBetAmount:    decimal.NewFromInt(1),
		MinBet:           decimal.NewFromInt(1),
		MaxBet:           decimal.NewFromInt(10),
		Precision:        2,
	}

	rec := NewRoundRecorder(store, "sess-1", "dice", "u1", nil)
	s, err := autobet.Start(context.Background(), cfg, ad, autobet.WithID("sess-1"), autobet.WithObserver(rec))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	final, err := s.Wait(ctx)
	if err != nil {
		t.Fatalf("wait: %v", err)
	}

	rounds, err := store.Rounds(context.Background(), "sess-1", 0)
	if err != nil {
		t.Fatalf("rounds: %v", err)
	}
	if len(rounds) != 20 {
		t.Fatalf("recorded %d rounds, want 20", len(rounds))
	}
	for i, r := range rounds {
		if r.Round != i+1 {
			t.Fatalf("round %d recorded as %d", i+1, r.Round)
		}
	}

	sum, err := store.Summary(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.State != autobet.StateStopped.String() {
		t.Fatalf("summary state = %s", sum.State)
	}
	if sum.Stats.RoundsCompleted != final.RoundsCompleted || !sum.Stats.TotalProfit.Equal(final.TotalProfit) {
		t.Fatalf("summary stats %+v != final %+v", sum.Stats, final)
	}
	if len(sum.Chart) != 20 {
		t.Fatalf("chart points = %d", len(sum.Chart))
	}
}
