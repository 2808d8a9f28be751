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
	"sync"

	"github.com/zintix-labs/autobet/errs"
)

// DefaultMaxRounds 每個會話保留的局數上限
const DefaultMaxRounds = 1000

// MemoryStore 記憶體版 Store（單機、重啟即失）
type MemoryStore struct {
	mu        sync.RWMutex
	rounds    map[string][]RoundRecord
	summaries map[string]Summary
	maxRounds int
}

func NewMemoryStore(maxRounds int) *MemoryStore {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	return &MemoryStore{
		rounds:    make(map[string][]RoundRecord),
		summaries: make(map[string]Summary),
		maxRounds: maxRounds,
	}
}

func (m *MemoryStore) AppendRound(_ context.Context, sid string, r RoundRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l := append(m.rounds[sid], r)
	if len(l) > m.maxRounds {
		l = l[len(l)-m.maxRounds:]
	}
	m.rounds[sid] = l
	return nil
}

func (m *MemoryStore) Rounds(_ context.Context, sid string, limit int) ([]RoundRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l := m.rounds[sid]
	if limit > 0 && len(l) > limit {
		l = l[len(l)-limit:]
	}
	out := make([]RoundRecord, len(l))
	copy(out, l)
	return out, nil
}

func (m *MemoryStore) SaveSummary(_ context.Context, s Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries[s.Session] = s
	return nil
}

func (m *MemoryStore) Summary(_ context.Context, sid string) (Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.summaries[sid]
	if !ok {
		return Summary{}, errs.NotFoundf("session summary not found: %s", sid)
	}
	return s, nil
}

func (m *MemoryStore) Delete(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rounds, sid)
	delete(m.summaries, sid)
	return nil
}
