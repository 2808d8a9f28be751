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
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/zintix-labs/autobet"
	"github.com/zintix-labs/autobet/sdk/buf"
	"github.com/zintix-labs/autobet/stats"
)

// DefaultChartPoints 曲線保留點數
const DefaultChartPoints = 200

// RoundRecorder 掛在 Session 上的 observer，把每局結果與摘要寫入 Store。
//
// 寫入失敗只記 log，不會影響會話。
type RoundRecorder struct {
	store   Store
	log     *slog.Logger
	timeout time.Duration
	now     func() time.Time

	mu    sync.Mutex
	sid   string
	game  string
	uid   string
	state autobet.State
	stats stats.SessionStats
	chart *ChartBuffer
	// 最後一個進入曲線的局號
	charted int
}

func NewRoundRecorder(store Store, sid, game, uid string, log *slog.Logger) *RoundRecorder {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RoundRecorder{
		store:   store,
		log:     log.With(slog.String("session", sid)),
		timeout: 2 * time.Second,
		now:     time.Now,
		sid:     sid,
		game:    game,
		uid:     uid,
		chart:   NewChartBuffer(DefaultChartPoints),
	}
}

func (r *RoundRecorder) OnStateChanged(st autobet.State) {
	r.mu.Lock()
	r.state = st
	sum := r.summaryLocked()
	r.mu.Unlock()
	if st == autobet.StateStopped {
		r.save(sum)
	}
}

func (r *RoundRecorder) OnStatsChanged(st stats.SessionStats) {
	r.mu.Lock()
	r.stats = st
	if st.RoundsCompleted > r.charted {
		r.charted = st.RoundsCompleted
		r.chart.Push(ChartPoint{
			Round:  st.RoundsCompleted,
			Profit: st.TotalProfit.InexactFloat64(),
			Win:    st.CurrentStreak > 0,
		})
	}
	sum := r.summaryLocked()
	r.mu.Unlock()
	r.save(sum)
}

func (r *RoundRecorder) OnRoundSettled(o buf.RoundOutcome) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.store.AppendRound(ctx, r.sid, NewRoundRecord(o, r.now())); err != nil {
		r.log.Warn("append round failed", slog.Int("round", o.Round), slog.Any("err", err))
	}
}

// Chart 目前的盈虧曲線
func (r *RoundRecorder) Chart() []ChartPoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chart.Snapshot()
}

func (r *RoundRecorder) summaryLocked() Summary {
	return Summary{
		Session:   r.sid,
		Game:      r.game,
		UID:       r.uid,
		State:     r.state.String(),
		Stats:     r.stats,
		Chart:     r.chart.Snapshot(),
		UpdatedAt: r.now(),
	}
}

func (r *RoundRecorder) save(s Summary) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.store.SaveSummary(ctx, s); err != nil {
		r.log.Warn("save summary failed", slog.Any("err", err))
	}
}
