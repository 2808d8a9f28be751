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

package wallet

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/zintix-labs/autobet/errs"
)

func TestMemoryDebitCredit(t *testing.T) {
	m := NewMemory()
	if _, err := m.Deposit("u1", decimal.NewFromInt(100)); err != nil {
		t.Fatal(err)
	}
	if err := m.Debit("u1", decimal.NewFromInt(30)); err != nil {
		t.Fatal(err)
	}
	if err := m.Credit("u1", decimal.NewFromInt(5)); err != nil {
		t.Fatal(err)
	}
	if got := m.Balance("u1"); !got.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("balance %s", got)
	}

	err := m.Debit("u1", decimal.NewFromInt(76))
	if !errors.Is(err, errs.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if got := m.Balance("u1"); !got.Equal(decimal.NewFromInt(75)) {
		t.Fatalf("failed debit changed balance: %s", got)
	}

	es := m.Entries("u1")
	if len(es) != 3 || es[0].Kind != EntryDeposit || es[2].Kind != EntryCredit {
		t.Fatalf("entries %+v", es)
	}
	if es[0].Ref == "" || es[0].Ref == es[1].Ref {
		t.Fatalf("entry refs must be unique")
	}
}

func TestMemoryRejectsBadAmounts(t *testing.T) {
	m := NewMemory()
	if _, err := m.Deposit("u", decimal.Zero); !errors.Is(err, errs.ErrInvalidConfig) {
		t.Fatalf("zero deposit: %v", err)
	}
	if err := m.Debit("u", decimal.NewFromInt(-1)); !errors.Is(err, errs.ErrInvalidConfig) {
		t.Fatalf("negative debit: %v", err)
	}
}

func TestMemoryConcurrentDebit(t *testing.T) {
	m := NewMemory()
	m.Deposit("u", decimal.NewFromInt(100))

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Debit("u", decimal.NewFromInt(1)) == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if ok != 100 || !m.Balance("u").IsZero() {
		t.Fatalf("ok=%d balance=%s", ok, m.Balance("u"))
	}
}
