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

// Package wallet 提供下注邊界所需的錢包介面與記憶體實作。
//
// 正式環境的錢包服務在外部；Memory 供 server 與模擬器使用，只保證單筆操作的原子性，
// 不提供跨操作的交易語意。
package wallet

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zintix-labs/autobet/errs"
)

// Wallet 遊戲轉接層使用的最小錢包介面
type Wallet interface {
	Balance(uid string) decimal.Decimal
	Debit(uid string, amount decimal.Decimal) error
	Credit(uid string, amount decimal.Decimal) error
}

type EntryKind string

const (
	EntryDeposit EntryKind = "deposit"
	EntryDebit   EntryKind = "debit"
	EntryCredit  EntryKind = "credit"
)

// Entry 一筆帳務紀錄
type Entry struct {
	Ref     string          `json:"ref"`
	Kind    EntryKind       `json:"kind"`
	Amount  decimal.Decimal `json:"amount"`
	Balance decimal.Decimal `json:"balance"` // 異動後餘額
	At      time.Time       `json:"at"`
}

// defaultKeep 每位用戶保留的帳務筆數
const defaultKeep = 256

// Memory 以 uid 為鍵的記憶體錢包
type Memory struct {
	mu      sync.Mutex
	balance map[string]decimal.Decimal
	ledger  map[string][]Entry
	keep    int
}

func NewMemory() *Memory {
	return &Memory{
		balance: make(map[string]decimal.Decimal),
		ledger:  make(map[string][]Entry),
		keep:    defaultKeep,
	}
}

func (m *Memory) Balance(uid string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance[uid]
}

// Deposit 入金，amount 必須為正
func (m *Memory) Deposit(uid string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, errs.Invalidf("deposit amount must > 0, got %s", amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.apply(uid, EntryDeposit, amount), nil
}

// Debit 扣款，餘額不足回傳 KindInsufficientBalance
func (m *Memory) Debit(uid string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errs.Invalidf("debit amount must >= 0, got %s", amount)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balance[uid].LessThan(amount) {
		return errs.Insufficientf("uid=%s balance %s < %s", uid, m.balance[uid], amount)
	}
	m.apply(uid, EntryDebit, amount.Neg())
	return nil
}

func (m *Memory) Credit(uid string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return errs.Invalidf("credit amount must >= 0, got %s", amount)
	}
	if amount.IsZero() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apply(uid, EntryCredit, amount)
	return nil
}

// Entries 回傳最近的帳務紀錄（舊到新）
func (m *Memory) Entries(uid string) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	src := m.ledger[uid]
	out := make([]Entry, len(src))
	copy(out, src)
	return out
}

// apply 需持有 mu
func (m *Memory) apply(uid string, kind EntryKind, delta decimal.Decimal) decimal.Decimal {
	bal := m.balance[uid].Add(delta)
	m.balance[uid] = bal

	l := append(m.ledger[uid], Entry{
		Ref:     uuid.NewString(),
		Kind:    kind,
		Amount:  delta.Abs(),
		Balance: bal,
		At:      time.Now(),
	})
	if len(l) > m.keep {
		l = l[len(l)-m.keep:]
	}
	m.ledger[uid] = l
	return bal
}
