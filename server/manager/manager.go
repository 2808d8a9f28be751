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

// Package manager 保存服務端所有執行中的自動下注會話。
package manager

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zintix-labs/autobet"
	"github.com/zintix-labs/autobet/dto"
	"github.com/zintix-labs/autobet/errs"
	"github.com/zintix-labs/autobet/games"
	"github.com/zintix-labs/autobet/recorder"
	"github.com/zintix-labs/autobet/sdk/core"
	"github.com/zintix-labs/autobet/server/metrics"
	"github.com/zintix-labs/autobet/wallet"
)

// Config 管理器參數
type Config struct {
	SessionTTL   time.Duration // 已停止的會話保留多久後移除
	MaxSessions  int           // 同時存在的會話上限（含已停止未回收）
	HistoryLimit int           // history API 預設回傳局數
}

func (c *Config) normalize() {
	if c.SessionTTL <= 0 {
		c.SessionTTL = 10 * time.Minute
	}
	if c.MaxSessions <= 0 {
		c.MaxSessions = 1000
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 100
	}
}

type entry struct {
	s      *autobet.Session
	uid    string
	game   string
	params games.Params
	rec    *recorder.RoundRecorder
}

// Manager 會話註冊表。
//
// 會話本身在自己的 goroutine 推進；Manager 只負責建立、查詢、停止與回收。
type Manager struct {
	lab     *autobet.Lab
	wallet  *wallet.Memory
	store   recorder.Store
	metrics *metrics.Metrics
	log     *slog.Logger
	cfg     Config

	base   context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*entry
}

// New metrics 可為 nil
func New(lab *autobet.Lab, w *wallet.Memory, store recorder.Store, m *metrics.Metrics, log *slog.Logger, cfg Config) (*Manager, error) {
	if lab == nil {
		return nil, errs.NewFatal("lab is required")
	}
	if w == nil {
		w = wallet.NewMemory()
	}
	if store == nil {
		store = recorder.NewMemoryStore(0)
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cfg.normalize()
	base, cancel := context.WithCancel(context.Background())
	mgr := &Manager{
		lab:      lab,
		wallet:   w,
		store:    store,
		metrics:  m,
		log:      log,
		cfg:      cfg,
		base:     base,
		cancel:   cancel,
		sessions: make(map[string]*entry),
	}
	if m != nil {
		m.GaugeFunc("registry_sessions", "Sessions held by the server registry.", func() float64 {
			return float64(mgr.Len())
		})
	}
	return mgr, nil
}

func (m *Manager) Lab() *autobet.Lab      { return m.lab }
func (m *Manager) Wallet() *wallet.Memory { return m.wallet }
func (m *Manager) Store() recorder.Store  { return m.store }
func (m *Manager) Config() Config         { return m.cfg }

// Len 目前註冊表內的會話數
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Start 依請求建立並啟動會話
func (m *Manager) Start(req dto.StartSessionRequest) (dto.SessionView, error) {
	if err := req.Validate(); err != nil {
		return dto.SessionView{}, err
	}
	if _, err := m.lab.Game(req.Game); err != nil {
		return dto.SessionView{}, err
	}
	cfg, err := dto.ResolveConfig(m.lab, req.Preset, req.Config)
	if err != nil {
		return dto.SessionView{}, err
	}
	seed := core.NewSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}
	ad, err := m.lab.NewAdapter(req.Game, req.Params, m.wallet, req.UID, seed,
		games.WithDelay(time.Duration(req.DelayMs)*time.Millisecond))
	if err != nil {
		return dto.SessionView{}, err
	}

	id := uuid.NewString()
	rec := recorder.NewRoundRecorder(m.store, id, req.Game, req.UID, m.log)
	opts := []autobet.Option{
		autobet.WithID(id),
		autobet.WithLogger(m.log.With(slog.String("uid", req.UID), slog.String("game", req.Game))),
		autobet.WithObserver(rec),
	}
	if m.metrics != nil {
		opts = append(opts, autobet.WithObserver(m.metrics.Observer(req.Game)))
	}

	e := &entry{uid: req.UID, game: req.Game, params: req.Params, rec: rec}
	// 上限檢查與佔位同一把鎖；佔位讓第一批通知進來時查得到
	m.mu.Lock()
	if len(m.sessions) >= m.cfg.MaxSessions {
		m.mu.Unlock()
		return dto.SessionView{}, errs.NewWarn("too many sessions, retry later")
	}
	m.sessions[id] = e
	m.mu.Unlock()

	s, err := autobet.Start(m.base, cfg, ad, opts...)
	if err != nil {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return dto.SessionView{}, err
	}
	m.mu.Lock()
	e.s = s
	m.mu.Unlock()
	return m.view(e), nil
}

func (m *Manager) lookup(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.sessions[id]
	if !ok || e.s == nil {
		return nil, errs.NotFoundf("session not found: %s", id)
	}
	return e, nil
}

func (m *Manager) view(e *entry) dto.SessionView {
	return dto.SessionView{
		Snapshot: e.s.Snapshot(),
		UID:      e.uid,
		Game:     e.game,
		Params:   e.params,
		Chart:    e.rec.Chart(),
	}
}

// Get 會話目前狀態
func (m *Manager) Get(id string) (dto.SessionView, error) {
	e, err := m.lookup(id)
	if err != nil {
		return dto.SessionView{}, err
	}
	return m.view(e), nil
}

// Stop 停止會話，已停止時直接回傳目前狀態
func (m *Manager) Stop(id string) (dto.SessionView, error) {
	e, err := m.lookup(id)
	if err != nil {
		return dto.SessionView{}, err
	}
	e.s.Stop()
	return m.view(e), nil
}

// Wait 等待會話停止且最終通知（含歷史寫入）送完
func (m *Manager) Wait(ctx context.Context, id string) (dto.SessionView, error) {
	e, err := m.lookup(id)
	if err != nil {
		return dto.SessionView{}, err
	}
	if _, err := e.s.Wait(ctx); err != nil {
		return dto.SessionView{}, err
	}
	return m.view(e), nil
}

// List 依開始時間排序；uid 不為空時只列出該玩家的會話
func (m *Manager) List(uid string) []dto.SessionView {
	m.mu.RLock()
	es := make([]*entry, 0, len(m.sessions))
	for _, e := range m.sessions {
		if e.s == nil || (uid != "" && e.uid != uid) {
			continue
		}
		es = append(es, e)
	}
	m.mu.RUnlock()

	out := make([]dto.SessionView, 0, len(es))
	for _, e := range es {
		out = append(out, m.view(e))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

// History 從 Store 讀取歷史；會話被回收後只要 Store 還保留就查得到
func (m *Manager) History(ctx context.Context, id string, limit int) (dto.HistoryView, error) {
	if limit <= 0 {
		limit = m.cfg.HistoryLimit
	}
	rounds, err := m.store.Rounds(ctx, id, limit)
	if err != nil {
		return dto.HistoryView{}, err
	}
	hv := dto.HistoryView{Session: id, Rounds: rounds}
	sum, err := m.store.Summary(ctx, id)
	switch {
	case err == nil:
		hv.Summary = &sum
	case errs.KindOf(err) == errs.KindNotFound:
		if len(rounds) == 0 {
			return dto.HistoryView{}, errs.NotFoundf("session history not found: %s", id)
		}
	default:
		return dto.HistoryView{}, err
	}
	return hv, nil
}

// Reap 移除停止超過 SessionTTL 的會話，回傳移除數量
func (m *Manager) Reap(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.sessions {
		if e.s == nil {
			continue
		}
		snap := e.s.Snapshot()
		if snap.StoppedAt == nil || now.Sub(*snap.StoppedAt) < m.cfg.SessionTTL {
			continue
		}
		delete(m.sessions, id)
		n++
	}
	if n > 0 {
		m.log.Debug("reaped stopped sessions", slog.Int("count", n))
	}
	return n
}

// Close 停止所有會話並等待最終通知送完（或 ctx 到期）
func (m *Manager) Close(ctx context.Context) error {
	m.cancel()
	m.mu.RLock()
	ss := make([]*autobet.Session, 0, len(m.sessions))
	for _, e := range m.sessions {
		if e.s != nil {
			ss = append(ss, e.s)
		}
	}
	m.mu.RUnlock()
	for _, s := range ss {
		if _, err := s.Wait(ctx); err != nil {
			return errs.Wrap(err, "close session manager")
		}
	}
	return nil
}
