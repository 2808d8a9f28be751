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
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/autobet/errs"
	"github.com/zintix-labs/autobet/policy"
	"github.com/zintix-labs/autobet/sdk/buf"
	"github.com/zintix-labs/autobet/setting"
	"github.com/zintix-labs/autobet/stats"
)

// Session 單次自動下注會話（一次性：STOPPED 後不可重啟）。
//
// 併發模型：
//   - 每局以 ticket（局序號）標記，executor 在獨立 goroutine 執行，回來時帶 ticket 結算。
//     ticket 不符或狀態不是 ROUND_IN_FLIGHT 即為 UnexpectedSettlement，記錄後丟棄。
//   - 結算停頓由單一 timer 排程，Stop 會停掉 timer 並取消進行中那局的 ctx。
//   - 狀態與統計只在 mu 內變動；通知先排入 pending，離開 mu 後依序送出。
type Session struct {
	id        string
	cfg       setting.SessionConfig
	ad        Adapter
	metric    setting.LossMetric
	log       *slog.Logger
	observers []Observer

	base       context.Context // 所有局的 ctx 來源
	cancelBase context.CancelFunc
	stopAfter  func() bool // 解除 parent ctx 的 AfterFunc

	mu          sync.Mutex
	state       State
	st          stats.SessionStats
	currentBet  decimal.Decimal
	ticket      uint64 // 最近一次發出的局序號
	roundCancel context.CancelFunc
	timer       *time.Timer
	unexpected  int
	startedAt   time.Time
	stoppedAt   time.Time
	pending     []event

	emitMu sync.Mutex // 同時只有一個 goroutine 送通知
	done   chan struct{}
}

// Snapshot 會話快照
type Snapshot struct {
	ID                    string                `json:"id"                     yaml:"id"`
	State                 State                 `json:"state"                  yaml:"state"`
	Stats                 stats.SessionStats    `json:"stats"                  yaml:"stats"`
	CurrentBet            decimal.Decimal       `json:"current_bet"            yaml:"current_bet"`
	LossMetric            setting.LossMetric    `json:"loss_metric"            yaml:"loss_metric"`
	Config                setting.SessionConfig `json:"config"                 yaml:"config"`
	UnexpectedSettlements int                   `json:"unexpected_settlements" yaml:"unexpected_settlements"`
	StartedAt             time.Time             `json:"started_at"             yaml:"started_at"`
	StoppedAt             *time.Time            `json:"stopped_at,omitempty"   yaml:"stopped_at,omitempty"`
}

// Start 驗證設定、建立會話並立即發出第一局。
//
// 設定不合法回傳 KindInvalidConfig 且不建立會話。
// 第一局前的餘額檢查失敗不是錯誤：回傳的會話已是 STOPPED（insufficient_balance）。
// ctx 取消等同呼叫 Stop。
func Start(ctx context.Context, cfg setting.SessionConfig, ad Adapter, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ad == nil {
		return nil, errs.Invalidf("round executor required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	s := &Session{
		id:         uuid.NewString(),
		cfg:        cfg,
		ad:         ad,
		metric:     ad.LossMetric(),
		log:        slog.New(slog.DiscardHandler),
		state:      StateIdle,
		currentBet: cfg.BaseBetAmount,
		startedAt:  time.Now(),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(slog.String("session", s.id))
	s.base, s.cancelBase = context.WithCancel(context.WithoutCancel(ctx))

	s.log.Info("autobet session start",
		slog.Int("target_rounds", cfg.TargetRoundCount),
		slog.String("base_bet", cfg.BaseBetAmount.String()),
		slog.String("sizing", cfg.Sizing.String()),
		slog.String("loss_metric", s.metric.String()),
	)

	s.mu.Lock()
	s.stopAfter = context.AfterFunc(ctx, func() { s.halt(stats.ReasonCancelled, nil) })
	s.mu.Unlock()

	s.advance(0)
	return s, nil
}

// ============================================================
// ** 對外方法 **
// ============================================================

func (s *Session) ID() string { return s.id }

func (s *Session) Config() setting.SessionConfig { return s.cfg }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats 統計快照，任何狀態皆可呼叫
func (s *Session) Stats() stats.SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

// CurrentBet 下一局（或進行中那局）的注額
func (s *Session) CurrentBet() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentBet
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:                    s.id,
		State:                 s.state,
		Stats:                 s.st,
		CurrentBet:            s.currentBet,
		LossMetric:            s.metric,
		Config:                s.cfg,
		UnexpectedSettlements: s.unexpected,
		StartedAt:             s.startedAt,
	}
	if s.state == StateStopped {
		t := s.stoppedAt
		snap.StoppedAt = &t
	}
	return snap
}

// Stop 立即停止會話（同步進入 STOPPED），可重複呼叫。
//
// 進行中那局的 ctx 會被取消，但其錢包效果不會回滾；稍後回來的結算一律丟棄。
func (s *Session) Stop() {
	s.halt(stats.ReasonCancelled, nil)
}

// Done 於會話停止且最終通知送出後關閉
func (s *Session) Done() <-chan struct{} { return s.done }

// Wait 等待會話結束並回傳最終統計；ctx 到期時回傳當下統計與 ctx 錯誤（不停止會話）
func (s *Session) Wait(ctx context.Context) (stats.SessionStats, error) {
	select {
	case <-s.done:
		return s.Stats(), nil
	case <-ctx.Done():
		return s.Stats(), ctx.Err()
	}
}

// ============================================================
// ** 狀態機 **
// ============================================================

// advance 發出下一局。after 為觸發本次排程的局序號（Start 時為 0），
// 過期的排程（已停止或已被其他排程推進）直接忽略。
func (s *Session) advance(after uint64) {
	s.mu.Lock()
	if !s.canIssueLocked(after) {
		s.mu.Unlock()
		return
	}
	bet := s.currentBet
	s.mu.Unlock()

	// 呼叫 adapter 時不持有鎖
	ok, err := s.checkBalance(bet)

	s.mu.Lock()
	if !s.canIssueLocked(after) {
		s.mu.Unlock()
		return
	}
	switch {
	case err != nil:
		s.log.Error("autobet executor failure", slog.Uint64("round", after+1), slog.Any("err", err))
		s.haltLocked(stats.ReasonExecutorFailure, err)
	case !ok:
		s.log.Info("autobet insufficient balance", slog.String("bet", bet.String()))
		s.haltLocked(stats.ReasonInsufficientBalance, nil)
	default:
		s.issueLocked(bet)
	}
	s.mu.Unlock()
	s.flush()
}

func (s *Session) canIssueLocked(after uint64) bool {
	if s.ticket != after {
		return false
	}
	return s.state == StateIdle || s.state == StateSchedulingNext
}

// issueLocked 進入 ROUND_IN_FLIGHT 並發出一局；唯一呼叫 executor 的地方
func (s *Session) issueLocked(bet decimal.Decimal) {
	s.timer = nil
	s.ticket++
	ticket := s.ticket
	ctx, cancel := context.WithCancel(s.base)
	s.roundCancel = cancel
	s.setStateLocked(StateRoundInFlight)
	s.log.Debug("autobet round issued", slog.Uint64("round", ticket), slog.String("bet", bet.String()))
	go s.run(ctx, ticket, bet)
}

func (s *Session) run(ctx context.Context, ticket uint64, bet decimal.Decimal) {
	out, err := s.execute(ctx, bet)
	s.onRoundSettled(ticket, out, err)
}

func (s *Session) execute(ctx context.Context, bet decimal.Decimal) (out buf.RoundOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.WrapKind(fmt.Errorf("%v", r), errs.KindExecutorFailure, "round executor panic")
		}
	}()
	return s.ad.ExecuteRound(ctx, bet)
}

func (s *Session) checkBalance(bet decimal.Decimal) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.WrapKind(fmt.Errorf("%v", r), errs.KindExecutorFailure, "balance check panic")
		}
	}()
	return s.ad.HasSufficientBalance(bet), nil
}

// onRoundSettled 處理一局的結算（每局恰好被呼叫一次）
func (s *Session) onRoundSettled(ticket uint64, out buf.RoundOutcome, err error) {
	s.mu.Lock()
	if s.state != StateRoundInFlight || ticket != s.ticket {
		s.unexpected++
		state := s.state
		s.pushLocked(event{kind: evUnexpected, round: int(ticket)})
		s.mu.Unlock()
		s.log.Warn("autobet unexpected settlement",
			slog.Uint64("round", ticket),
			slog.String("state", state.String()),
			slog.Any("err", errs.ErrUnexpectedSettlement),
		)
		s.flush()
		return
	}
	s.roundCancel()
	s.roundCancel = nil

	if err != nil {
		reason := stats.ReasonExecutorFailure
		if errors.Is(err, errs.ErrInsufficientBalance) {
			reason = stats.ReasonInsufficientBalance
		}
		s.haltLocked(reason, err)
		s.mu.Unlock()
		if reason == stats.ReasonExecutorFailure {
			s.log.Error("autobet executor failure", slog.Uint64("round", ticket), slog.Any("err", err))
		} else {
			s.log.Info("autobet insufficient balance", slog.Uint64("round", ticket), slog.Any("err", err))
		}
		s.flush()
		return
	}

	// 1) SETTLING
	s.setStateLocked(StateSettling)
	out.Round = int(ticket)

	// 2) 更新統計
	s.st = stats.Update(s.st, out)
	s.pushLocked(event{kind: evStats, stats: s.st})
	s.pushLocked(event{kind: evRound, outcome: out})

	// 3) 停止條件
	if stop, reason := policy.ShouldStop(s.cfg, s.metric, s.st, out); stop {
		s.haltLocked(reason, nil)
		s.mu.Unlock()
		s.flush()
		return
	}

	// 4) 下一注 + 結算停頓
	s.currentBet = policy.NextBet(s.cfg.BaseBetAmount, s.currentBet, out, s.cfg)
	s.setStateLocked(StateSchedulingNext)
	s.timer = time.AfterFunc(s.cfg.SettlePause(), func() { s.advance(ticket) })
	s.mu.Unlock()
	s.flush()
}

// halt 停止會話（可重複呼叫）
func (s *Session) halt(reason stats.StopReason, cause error) {
	s.mu.Lock()
	s.haltLocked(reason, cause)
	s.mu.Unlock()
	s.flush()
}

// haltLocked 需持有 mu；已停止時不做任何事
func (s *Session) haltLocked(reason stats.StopReason, cause error) {
	if s.state == StateStopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.roundCancel != nil {
		s.roundCancel()
		s.roundCancel = nil
	}
	s.cancelBase()
	if s.stopAfter != nil {
		s.stopAfter()
	}

	s.st.StopReason = reason
	if cause != nil {
		s.st.Err = cause.Error()
	}
	s.stoppedAt = time.Now()
	s.setStateLocked(StateStopped)
	s.pushLocked(event{kind: evStats, stats: s.st})
	s.pushLocked(event{kind: evDone})

	s.log.Info("autobet session stopped",
		slog.String("reason", string(reason)),
		slog.Int("rounds", s.st.RoundsCompleted),
		slog.String("profit", s.st.TotalProfit.String()),
	)
}

func (s *Session) setStateLocked(st State) {
	s.state = st
	s.pushLocked(event{kind: evState, state: st})
}

// ============================================================
// ** 通知 **
// ============================================================

func (s *Session) pushLocked(e event) {
	s.pending = append(s.pending, e)
}

// flush 依序送出 pending 通知。
// 已有其他 goroutine 在送（包含 observer 內重入）時直接返回，由該 goroutine 接手。
func (s *Session) flush() {
	for {
		if !s.emitMu.TryLock() {
			return
		}
		s.mu.Lock()
		evs := s.pending
		s.pending = nil
		s.mu.Unlock()

		for _, e := range evs {
			s.dispatch(e)
		}
		s.emitMu.Unlock()

		s.mu.Lock()
		more := len(s.pending) > 0
		s.mu.Unlock()
		if !more {
			return
		}
	}
}

func (s *Session) dispatch(e event) {
	if e.kind == evDone {
		close(s.done)
		return
	}
	for _, o := range s.observers {
		s.notify(o, e)
	}
}

func (s *Session) notify(o Observer, e event) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("autobet observer panic", slog.Any("panic", r))
		}
	}()
	switch e.kind {
	case evState:
		o.OnStateChanged(e.state)
	case evStats:
		o.OnStatsChanged(e.stats)
	case evRound:
		if ro, ok := o.(RoundObserver); ok {
			ro.OnRoundSettled(e.outcome)
		}
	case evUnexpected:
		if uo, ok := o.(UnexpectedSettlementObserver); ok {
			uo.OnUnexpectedSettlement(e.round)
		}
	}
}
