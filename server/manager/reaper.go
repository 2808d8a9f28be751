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

package manager

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zintix-labs/autobet/errs"
)

// DefaultReapSpec 每分鐘回收一次
const DefaultReapSpec = "@every 1m"

// Reaper 以 cron 定期呼叫 Manager.Reap，實作 app.Component
type Reaper struct {
	c    *cron.Cron
	log  *slog.Logger
	quit chan struct{}

	mu     sync.Mutex
	closed bool
}

func NewReaper(m *Manager, spec string, log *slog.Logger) (*Reaper, error) {
	if spec == "" {
		spec = DefaultReapSpec
	}
	if log == nil {
		log = m.log
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if n := m.Reap(time.Now()); n > 0 {
			log.Info("session reaper", slog.Int("reaped", n), slog.Int("remaining", m.Len()))
		}
	}); err != nil {
		return nil, errs.WrapKind(err, errs.KindInvalidConfig, "register reaper: "+spec)
	}
	return &Reaper{c: c, log: log, quit: make(chan struct{})}, nil
}

// Run 啟動排程並阻塞直到 Shutdown
func (r *Reaper) Run() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.c.Start()
	r.mu.Unlock()
	r.log.Info("session reaper started")
	<-r.quit
	return nil
}

// Shutdown 停止排程並等待執行中的工作結束
func (r *Reaper) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.quit)
	}
	r.mu.Unlock()
	select {
	case <-r.c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
