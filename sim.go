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

package autobet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/autobet/errs"
	"github.com/zintix-labs/autobet/games"
	"github.com/zintix-labs/autobet/setting"
	"github.com/zintix-labs/autobet/stats"
	"github.com/zintix-labs/autobet/wallet"
)

// Simulator 以同一款遊戲 + 同一份會話設定，平行跑大量獨立玩家的自動下注會話。
//
// 每位玩家有自己的錢包餘額與派生 seed；結算停頓一律為 0。
type Simulator struct {
	GameName  string
	lab       *Lab
	params    games.Params
	cfg       setting.SessionConfig
	initSeed  int64
	seedmaker *seedMaker
	log       *slog.Logger
}

func newSimulator(lab *Lab, game string, p games.Params, cfg setting.SessionConfig, seed int64) (*Simulator, error) {
	e, err := lab.Game(game)
	if err != nil {
		return nil, err
	}
	// 先建一次確認參數
	if _, err := e.Build(p); err != nil {
		return nil, errs.Wrap(err, "game "+e.Name)
	}
	cfg.SettlePauseMs = 0
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{
		GameName:  e.Name,
		lab:       lab,
		params:    p,
		cfg:       cfg,
		initSeed:  seed,
		seedmaker: newSeedMaker(seed),
		log:       slog.New(slog.DiscardHandler),
	}, nil
}

func (s *Simulator) Seed() int64 { return s.initSeed }

func (s *Simulator) SetLogger(l *slog.Logger) {
	if l != nil {
		s.log = l
	}
}

// SimPlayers 模擬 players 位玩家，各自帶 balance 入場跑一次會話，mp 個 worker 併發。
//
// 結果依玩家順序排列，與 mp 無關（每位玩家的 seed 在派工前就決定）。
// ctx 取消時停止所有進行中的會話，回傳 ctx 錯誤。
func (s *Simulator) SimPlayers(ctx context.Context, mp int, players int, balance decimal.Decimal, showpb bool) (*stats.BatchReport, time.Duration, error) {
	if mp < 1 || players < 1 {
		return nil, 0, errs.Invalidf("workers and players must > 0")
	}
	if !balance.IsPositive() {
		return nil, 0, errs.Invalidf("balance must > 0")
	}

	type job struct {
		idx  int
		seed int64
	}
	results := make([]stats.SessionStats, players)
	w := wallet.NewMemory()
	// 作一個緩衝 channel 使玩家依序處理
	jobs := make(chan job, min(players, 2048))

	var (
		errMu    sync.Mutex
		firstErr error
	)
	wg := new(sync.WaitGroup)
	wg.Add(mp)

	bar := pb.StartNew(players)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < mp; i++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				st, err := s.play(ctx, w, j.idx, j.seed, balance)
				if err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMu.Unlock()
				}
				results[j.idx] = st
				bar.Increment()
			}
		}()
	}

	for i := 0; i < players; i++ {
		jobs <- job{idx: i, seed: s.seedmaker.next()}
	}
	close(jobs)
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	if firstErr != nil {
		return nil, used, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, used, errs.Wrap(err, "simulation cancelled")
	}

	s.log.Info("autobet simulation done",
		slog.String("game", s.GameName),
		slog.String("preset", s.cfg.Name),
		slog.Int("players", players),
		slog.Duration("used", used),
	)
	return stats.NewBatchReport(s.GameName, s.cfg.Name, results), used, nil
}

func (s *Simulator) play(ctx context.Context, w *wallet.Memory, idx int, seed int64, balance decimal.Decimal) (stats.SessionStats, error) {
	uid := fmt.Sprintf("player-%d", idx)
	if _, err := w.Deposit(uid, balance); err != nil {
		return stats.SessionStats{}, err
	}
	ad, err := s.lab.NewAdapter(s.GameName, s.params, w, uid, seed, games.WithPrecision(s.cfg.Precision))
	if err != nil {
		return stats.SessionStats{}, err
	}
	sess, err := Start(ctx, s.cfg, ad, WithID(uid))
	if err != nil {
		return stats.SessionStats{}, err
	}
	<-sess.Done()
	return sess.Stats(), nil
}

// ============================================================
// ** seed 派生 **
// ============================================================

const mask63 = uint64(1<<63) - 1

type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// next 以全週期 LCG 推進 state，再經可逆 mix63 打散；可被多個 goroutine 同時呼叫
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()
		next := (old*6364136223846793005 + 1442695040888963407) & mask63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next))
		}
	}
}

func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
