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

package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func TestParseLogMode(t *testing.T) {
	for s, want := range map[string]LogMode{"dev": ModeDev, "PROD": ModeProd, " silence ": ModeSilence} {
		got, err := ParseLogMode(s)
		if err != nil || got != want {
			t.Fatalf("ParseLogMode(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseLogMode("loud"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestAsyncDrainOnClose(t *testing.T) {
	buf := &lockedBuffer{}
	log, ah := NewAsyncTo(64, ModeProd, buf)
	for i := 0; i < 10; i++ {
		log.Info("round settled", slog.Int("round", i))
	}
	ah.Close()
	if n := strings.Count(buf.String(), "round settled"); n+int(ah.Dropped()) != 10 {
		t.Fatalf("written %d + dropped %d != 10", n, ah.Dropped())
	}

	log.Info("after close")
	if strings.Contains(buf.String(), "after close") {
		t.Fatalf("closed handler should not write")
	}
	if ah.Dropped() == 0 {
		t.Fatalf("record after close should be counted as dropped")
	}
	ah.Close()
}

func TestAsyncWithAttrsSharesQueue(t *testing.T) {
	buf := &lockedBuffer{}
	log, ah := NewAsyncTo(16, ModeProd, buf)
	log.With(slog.String("session", "s1")).InfoContext(context.Background(), "start")
	ah.Close()
	if !strings.Contains(buf.String(), `"session":"s1"`) {
		t.Fatalf("attrs lost: %s", buf.String())
	}
}

func TestSilenceDisabled(t *testing.T) {
	log := NewDefaultLogger(ModeSilence)
	if log.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("silence mode should disable all levels")
	}
}
